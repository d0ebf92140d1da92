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
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/unisynth/corefmt"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/sdk/core"
	"github.com/zintix-labs/unisynth/sdk/sampler"
	"github.com/zintix-labs/unisynth/sdk/statevec"
	"golang.org/x/sync/errgroup"
)

// 每抽 checkEvery 次檢查一次 context 並推進進度條
const checkEvery = 4096

// denseLimit 結果空間不超過此值時以 slice 計數，否則用 map
const denseLimit = 1 << 16

// Simulator 是取樣執行器：理想機率 → alias table → 多 worker 抽樣。
//
// 同一個 Simulator 以相同的 (qubits, ops, shots) 重複執行會得到相同結果：
// 每次 Execute 都從 base seed 重新派生各 worker 的子 seed。
type Simulator struct {
	pf      core.PRNGFactory
	seed    int64
	workers int
	showpb  bool
	pbOut   io.Writer

	mu   sync.Mutex
	last *RunState
}

// RunState 記錄最近一次執行，用於回放。
type RunState struct {
	Seed    int64         `json:"seed"`
	Shots   int           `json:"shots"`
	Used    time.Duration `json:"used"`
	Workers []WorkerState `json:"workers"`
}

// WorkerState 單一 worker 的抽樣數與前後 PRNG 快照（base64url）。
type WorkerState struct {
	Shots     int    `json:"shots"`
	StartB64U string `json:"start_b64u"`
	AfterB64U string `json:"after_b64u"`
}

// NewSimulator 以預設 PCG64 建立。seed == 0 時以 crypto/rand 產生；workers < 1 時使用 NumCPU。
func NewSimulator(seed int64, workers int, showpb bool) *Simulator {
	return NewSimulatorWithFactory(core.Default(), seed, workers, showpb)
}

// NewSimulatorWithFactory 允許注入自訂 PRNG 工廠
func NewSimulatorWithFactory(pf core.PRNGFactory, seed int64, workers int, showpb bool) *Simulator {
	if pf == nil {
		pf = core.Default()
	}
	if seed == 0 {
		seed = randomSeed()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Simulator{pf: pf, seed: seed, workers: workers, showpb: showpb}
}

// Seed 回傳 base seed（報表用）
func (s *Simulator) Seed() int64 { return s.seed }

// Workers 回傳 worker 數
func (s *Simulator) Workers() int { return s.workers }

// SetProgressWriter 指定進度條輸出位置（預設 stderr）
func (s *Simulator) SetProgressWriter(w io.Writer) {
	s.pbOut = w
}

// LastRun 回傳最近一次 Execute 的狀態拷貝；尚未執行時為 nil。
func (s *Simulator) LastRun() *RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	out := *s.last
	out.Workers = append([]WorkerState(nil), s.last.Workers...)
	return &out
}

// Execute 實作 Executor。
func (s *Simulator) Execute(ctx context.Context, qubits int, ops circuit.Sequence, shots int) (map[uint64]int, error) {
	if shots < 1 {
		return nil, errs.Invalidf("shots must be >= 1, got %d", shots)
	}
	at, err := s.table(qubits, ops)
	if err != nil {
		return nil, err
	}

	w := min(s.workers, shots)
	sm := core.NewSeedMaker(s.seed)
	cores := make([]*core.Core, w)
	states := make([]WorkerState, w)
	for i := range cores {
		cores[i] = core.New(s.pf.New(sm.Next()))
		states[i].Shots = shots / w
		if i < shots%w {
			states[i].Shots++
		}
		if states[i].StartB64U, err = corefmt.SnapshotB64U(cores[i]); err != nil {
			return nil, err
		}
	}

	bar := pb.StartNew(shots)
	switch {
	case !s.showpb:
		bar.SetWriter(io.Discard)
	case s.pbOut != nil:
		bar.SetWriter(s.pbOut)
	}

	tallies := make([]tally, w)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w; i++ {
		g.Go(func() error {
			t, err := draw(gctx, at, cores[i], states[i].Shots, bar)
			if err != nil {
				return err
			}
			tallies[i] = t
			states[i].AfterB64U, err = corefmt.SnapshotB64U(cores[i])
			return err
		})
	}
	err = g.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, err
	}

	out := make(map[uint64]int)
	for _, t := range tallies {
		t.mergeInto(out)
	}

	s.mu.Lock()
	s.last = &RunState{Seed: s.seed, Shots: shots, Used: used, Workers: states}
	s.mu.Unlock()
	return out, nil
}

// Replay 從 ws.StartB64U 還原 PRNG，重新抽 ws.Shots 次，得到該 worker 當時的觀測次數。
func (s *Simulator) Replay(ctx context.Context, qubits int, ops circuit.Sequence, ws WorkerState) (map[uint64]int, error) {
	if ws.Shots < 1 {
		return nil, errs.Invalidf("replay shots must be >= 1, got %d", ws.Shots)
	}
	at, err := s.table(qubits, ops)
	if err != nil {
		return nil, err
	}
	c := core.New(s.pf.New(0))
	if err := corefmt.RestoreB64U(c, ws.StartB64U); err != nil {
		return nil, err
	}
	bar := pb.New(ws.Shots)
	bar.SetWriter(io.Discard)
	t, err := draw(ctx, at, c, ws.Shots, bar)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]int)
	t.mergeInto(out)
	return out, nil
}

func (s *Simulator) table(qubits int, ops circuit.Sequence) (*sampler.AliasTable, error) {
	st, err := statevec.Run(qubits, ops)
	if err != nil {
		return nil, err
	}
	return sampler.FromProbabilities(st.Probabilities())
}

func draw(ctx context.Context, at *sampler.AliasTable, c *core.Core, shots int, bar *pb.ProgressBar) (tally, error) {
	t := newTally(at.Size)
	for done := 0; done < shots; {
		if err := ctx.Err(); err != nil {
			return tally{}, err
		}
		batch := min(checkEvery, shots-done)
		for range batch {
			t.add(at.Pick(c))
		}
		done += batch
		bar.Add(batch)
	}
	return t, nil
}

// tally 依結果空間大小選擇 slice 或 map 計數
type tally struct {
	dense  []int
	sparse map[int]int
}

func newTally(size int) tally {
	if size <= denseLimit {
		return tally{dense: make([]int, size)}
	}
	return tally{sparse: make(map[int]int)}
}

func (t *tally) add(i int) {
	if t.dense != nil {
		t.dense[i]++
		return
	}
	t.sparse[i]++
}

func (t tally) mergeInto(out map[uint64]int) {
	for i, c := range t.dense {
		if c > 0 {
			out[uint64(i)] += c
		}
	}
	for i, c := range t.sparse {
		out[uint64(i)] += c
	}
}

func randomSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil || n.Int64() == 0 {
		return time.Now().UnixNano() | 1
	}
	return n.Int64()
}
