// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package unisynth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/logger"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/sdk/encoder"
	"github.com/zintix-labs/unisynth/stats"
)

// maxCached 快取電路數上限；超過時整批清空
const maxCached = 512

type cacheKey struct {
	strategy string
	n        int
}

// Lab 是合成與驗證的組裝入口：持有策略 registry、logger 與編譯快取。
//
// 可安全併發使用；回傳的電路都是拷貝，呼叫端修改不影響快取。
type Lab struct {
	reg   *encoder.Registry
	log   *slog.Logger
	mu    sync.RWMutex
	cache map[cacheKey]*circuit.Circuit
}

type Option func(*Lab)

// WithLogger 注入 logger（預設靜默）
func WithLogger(l *slog.Logger) Option {
	return func(lab *Lab) {
		if l != nil {
			lab.log = l
		}
	}
}

// WithRegistry 以自訂策略集合取代內建 registry
func WithRegistry(r *encoder.Registry) Option {
	return func(lab *Lab) {
		if r != nil {
			lab.reg = r
		}
	}
}

// New 建立 Lab。
func New(opts ...Option) (*Lab, error) {
	lab := &Lab{
		reg:   encoder.Default(),
		log:   logger.Silent(),
		cache: make(map[cacheKey]*circuit.Circuit),
	}
	for _, o := range opts {
		o(lab)
	}
	if lab.reg == nil || len(lab.reg.Names()) == 0 {
		return nil, errs.NewFatal("lab: empty encoder registry")
	}
	return lab, nil
}

// Strategies 回傳可用的策略名稱（已排序）。
func (l *Lab) Strategies() []string {
	return l.reg.Names()
}

// Logger 回傳 Lab 使用的 logger。
func (l *Lab) Logger() *slog.Logger {
	return l.log
}

// Compile 以指定策略合成 n，結果會被快取。
func (l *Lab) Compile(strategy string, n int) (*circuit.Circuit, error) {
	enc, ok := l.reg.Get(strategy)
	if !ok {
		return nil, errs.Invalidf("unknown strategy %q", strategy)
	}
	key := cacheKey{strategy: enc.Name(), n: n}

	l.mu.RLock()
	c, hit := l.cache[key]
	l.mu.RUnlock()
	if hit {
		return cloneCircuit(c), nil
	}

	c, err := enc.Encode(n)
	if err != nil {
		l.log.Debug("compile failed", "strategy", key.strategy, "n", n, "err", err)
		return nil, err
	}
	ops, unc, maxCtl := c.Ops.Stats()
	l.log.Debug("compiled", "strategy", key.strategy, "n", n, "qubits", c.Qubits, "ops", ops, "unconditional", unc, "max_controls", maxCtl)

	l.mu.Lock()
	if len(l.cache) >= maxCached {
		clear(l.cache)
	}
	l.cache[key] = c
	l.mu.Unlock()
	return cloneCircuit(c), nil
}

// Verify 編譯後交給 ex 取樣 shots 次，回傳與均勻分佈比較的統計報告。
//
// 執行器錯誤包裝為 errs.Executor 類別並保留 cause；次數總和不等於 shots 同樣視為執行器錯誤。
func (l *Lab) Verify(ctx context.Context, strategy string, n int, ex Executor, shots int, confidence float64) (*stats.Report, error) {
	if ex == nil {
		return nil, errs.Invalidf("executor required")
	}
	if shots < 1 {
		return nil, errs.Invalidf("shots must be >= 1, got %d", shots)
	}
	c, err := l.Compile(strategy, n)
	if err != nil {
		return nil, err
	}

	raw, err := ex.Execute(ctx, c.Qubits, c.Ops, shots)
	if err != nil {
		l.log.Warn("executor failed", "strategy", c.Strategy, "n", n, "err", err)
		return nil, errs.WrapExecutor(err, "execute failed")
	}
	counts := make(map[uint64]int, len(raw))
	total := 0
	for state, cnt := range raw {
		total += cnt
		counts[uint64(c.Layout.Outcome(state, c.Qubits))] += cnt
	}
	if total != shots {
		return nil, errs.WrapExecutor(errs.Fatalf("executor returned %d shots, want %d", total, shots), "execute failed")
	}

	sum := stats.Summary{
		Strategy:    c.Strategy,
		N:           c.N,
		Qubits:      c.Qubits,
		Ops:         len(c.Ops),
		Fingerprint: c.Ops.FingerprintHex(),
		Confidence:  confidence,
	}
	if sd, ok := ex.(interface{ Seed() int64 }); ok {
		sum.Seed = sd.Seed()
	}
	rep := stats.NewReport(sum, counts)
	rep.Done()
	l.log.Debug("verified", "strategy", c.Strategy, "n", n, "shots", shots, "leak", rep.Summary.Leak, "p_value", rep.Summary.PValue)
	return rep, nil
}

func cloneCircuit(c *circuit.Circuit) *circuit.Circuit {
	out := *c
	out.Ops = c.Ops.Clone()
	return &out
}
