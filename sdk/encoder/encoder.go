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

// Package encoder 把「均勻分佈 N」編譯為受控旋轉序列。
//
// 所有策略都實作同一個 Encoder 介面，並必須滿足同一個正確性性質：
// 理想執行後，結果 i 的機率在 i < N 時為 1/N，其餘為 0。
// 因此同一套測試可以對每一個策略執行。
//
// 內建策略：
//   - prefix：由上而下的前綴計數（主要策略，log2 N 個變數）。
//   - complement：每層先放 π/2 基準，再以條件修正角補差。
//   - partition：由下而上的遞迴切分（最高位先切，低位區塊整體 π/2）。
//   - unary：N-1 個變數的單鏈（溫度計編碼），作為獨立的正確性對照。
package encoder

import (
	"slices"
	"sort"
	"strings"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/sdk/prefix"
)

// MaxN 單次合成允許的最大 N（前綴樹至多 2N-1 個節點）
const MaxN = 1 << 24

// 策略名稱
const (
	PrefixTree = "prefix"
	Complement = "complement"
	Partition  = "partition"
	UnaryChain = "unary"
)

// Encoder 是合成策略的共同能力。
type Encoder interface {
	// Name 回傳策略名稱（registry key）。
	Name() string
	// Encode 對 n 產生完整電路；n < 1 時回傳 InvalidInput。
	Encode(n int) (*circuit.Circuit, error)
}

// checkN 共同的輸入檢查
func checkN(n int) error {
	if n < 1 {
		return errs.Invalidf("n must be >= 1, got %d", n)
	}
	if n > MaxN {
		return errs.Invalidf("n must be <= %d, got %d", MaxN, n)
	}
	return nil
}

// newCircuit 建立空電路並填入共同欄位
func newCircuit(name string, n int, qubits int, layout circuit.Layout) *circuit.Circuit {
	return &circuit.Circuit{
		Strategy: name,
		N:        n,
		Qubits:   qubits,
		Layout:   layout,
		Ops:      circuit.Sequence{},
	}
}

// qubitsFor 計算二進位佈局所需變數數
func qubitsFor(n int) int {
	return prefix.Qubits(n)
}

// sortByTarget 依 Target 穩定排序。
//
// 同一目標上的操作其控制條件互斥（來自同一棵切分樹的不同分支），
// 因此穩定排序不改變理想執行結果，只讓序列滿足「變數 t 的操作先於 t+1」。
func sortByTarget(ops circuit.Sequence) {
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Target < ops[j].Target })
}

// =========================================================
// Registry
// =========================================================

// Registry 以名稱管理策略。建構後唯讀，可安全併發讀取。
type Registry struct {
	m map[string]Encoder
}

// NewRegistry 建立 registry；重複名稱或空名稱直接回傳錯誤（避免行為不確定）。
func NewRegistry(encs ...Encoder) (*Registry, error) {
	r := &Registry{m: make(map[string]Encoder, len(encs))}
	for _, e := range encs {
		if e == nil {
			return nil, errs.NewFatal("nil encoder")
		}
		name := strings.ToLower(strings.TrimSpace(e.Name()))
		if name == "" {
			return nil, errs.NewFatal("encoder name required")
		}
		if _, dup := r.m[name]; dup {
			return nil, errs.Fatalf("duplicate encoder: %s", name)
		}
		r.m[name] = e
	}
	return r, nil
}

// Default 回傳包含全部內建策略的 registry。
func Default() *Registry {
	r, _ := NewRegistry(NewPrefixTree(), NewComplement(), NewPartition(), NewUnaryChain())
	return r
}

// Get 以名稱取得策略（不分大小寫）。
func (r *Registry) Get(name string) (Encoder, bool) {
	e, ok := r.m[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// Names 回傳排序後的策略名稱。
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Encode 以指定策略合成；找不到策略為 InvalidInput。
func (r *Registry) Encode(name string, n int) (*circuit.Circuit, error) {
	e, ok := r.Get(name)
	if !ok {
		return nil, errs.Invalidf("unknown strategy %q (have %s)", name, strings.Join(r.Names(), ","))
	}
	return e.Encode(n)
}
