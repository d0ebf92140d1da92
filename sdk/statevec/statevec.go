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

// Package statevec 是理想（不抽樣）的振幅層級執行器，用於驗證合成結果。
//
// 每個 Operation 以受控 RY(θ) 套用：|0⟩ → cos(θ/2)|0⟩ + sin(θ/2)|1⟩。
// RY 為實數矩陣，因此振幅以 []float64 儲存即可。
//
// 基底狀態索引採用與合成相同的位元順序（變數 0 = MSB），換算統一透過 circuit.BitOf / circuit.Mask。
package statevec

import (
	"math"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"gonum.org/v1/gonum/floats"
)

// MaxQubits 振幅陣列大小上限 2^22（32 MiB）
const MaxQubits = 22

// State 是 qubits 個變數的實數振幅向量。
type State struct {
	qubits int
	amp    []float64
}

// New 建立全 0 的初始狀態 |0…0⟩。
func New(qubits int) (*State, error) {
	if qubits < 0 || qubits > MaxQubits {
		return nil, errs.Invalidf("statevec: qubits must be in [0,%d], got %d", MaxQubits, qubits)
	}
	amp := make([]float64, 1<<qubits)
	amp[0] = 1
	return &State{qubits: qubits, amp: amp}, nil
}

// Qubits 回傳變數數。
func (s *State) Qubits() int { return s.qubits }

// Amplitudes 回傳振幅的拷貝。
func (s *State) Amplitudes() []float64 {
	out := make([]float64, len(s.amp))
	copy(out, s.amp)
	return out
}

// Apply 套用單一受控旋轉；呼叫端需先以 circuit.Validate 檢查。
func (s *State) Apply(op circuit.Operation) {
	tmask := circuit.Mask(s.qubits, op.Target)
	var cmask, cval uint64
	for _, c := range op.Controls {
		m := circuit.Mask(s.qubits, c.Var)
		cmask |= m
		if c.Bit == 1 {
			cval |= m
		}
	}
	cos, sin := math.Cos(op.Angle/2), math.Sin(op.Angle/2)
	for b := uint64(0); b < uint64(len(s.amp)); b++ {
		if b&tmask != 0 || b&cmask != cval {
			continue
		}
		j := b | tmask
		a0, a1 := s.amp[b], s.amp[j]
		s.amp[b] = cos*a0 - sin*a1
		s.amp[j] = sin*a0 + cos*a1
	}
}

// Norm 回傳 Σ|a|²，理想情況恆為 1。
func (s *State) Norm() float64 {
	return floats.Dot(s.amp, s.amp)
}

// Probabilities 回傳每個基底狀態的機率 |a|²。
func (s *State) Probabilities() []float64 {
	out := make([]float64, len(s.amp))
	floats.MulTo(out, s.amp, s.amp)
	return out
}

// Run 驗證並依序套用 ops，回傳最終狀態。
func Run(qubits int, ops circuit.Sequence) (*State, error) {
	if err := circuit.Validate(qubits, ops); err != nil {
		return nil, err
	}
	s, err := New(qubits)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		s.Apply(op)
	}
	return s, nil
}

// Distribution 執行電路並依佈局彙整成結果分佈（長度 = c.Outcomes()）。
func Distribution(c *circuit.Circuit) ([]float64, error) {
	s, err := Run(c.Qubits, c.Ops)
	if err != nil {
		return nil, err
	}
	probs := s.Probabilities()
	if c.Layout == circuit.Binary {
		return probs, nil
	}
	out := make([]float64, c.Outcomes())
	for b, p := range probs {
		out[c.Layout.Outcome(uint64(b), c.Qubits)] += p
	}
	return out, nil
}

// Uniform 回傳長度 outcomes、前 n 個為 1/n、其餘為 0 的目標分佈。
func Uniform(n int, outcomes int) []float64 {
	out := make([]float64, max(outcomes, n))
	for i := 0; i < n; i++ {
		out[i] = 1 / float64(n)
	}
	return out
}

// MaxDeviation 回傳 got 與 n 的均勻分佈之間最大的逐點誤差。
func MaxDeviation(got []float64, n int) float64 {
	want := Uniform(n, len(got))
	dev := 0.0
	for i := range want {
		g := 0.0
		if i < len(got) {
			g = got[i]
		}
		dev = max(dev, math.Abs(g-want[i]))
	}
	return dev
}

// Leak 回傳落在 [n, len(dist)) 的總機率。
func Leak(dist []float64, n int) float64 {
	if n >= len(dist) {
		return 0
	}
	return floats.Sum(dist[n:])
}
