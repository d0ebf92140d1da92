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

package encoder

import (
	"github.com/zintix-labs/unisynth/sdk/angle"
	"github.com/zintix-labs/unisynth/sdk/circuit"
)

// partition 由下而上的遞迴切分策略
type partition struct{}

// NewPartition 回傳遞迴切分策略。
//
// 對持有 n 個結果、寬度 w 的區塊：
//   - n == 2^w：每個變數一個 π/2。
//   - n <= 2^(w-1)：最高位維持 0，往低位區塊遞迴。
//   - 否則：最高位旋轉 2·arccos(sqrt(m/n))（m = 2^(w-1)），最高位為 0 時低位全部 π/2，
//     最高位為 1 時以 n-m 遞迴。
//
// 以明確的 frame 堆疊取代遞迴；輸出依 Target 穩定排序。
func NewPartition() Encoder { return partition{} }

func (partition) Name() string { return Partition }

type frame struct {
	first int // 區塊最高位的變數索引
	n     int // 區塊內需要的結果數
	ctl   []circuit.Control
}

func withControl(ctl []circuit.Control, v int, b uint8) []circuit.Control {
	out := make([]circuit.Control, len(ctl), len(ctl)+1)
	copy(out, ctl)
	return append(out, circuit.Control{Var: v, Bit: b})
}

func (partition) Encode(n int) (*circuit.Circuit, error) {
	if err := checkN(n); err != nil {
		return nil, err
	}
	k := qubitsFor(n)
	c := newCircuit(Partition, n, k, circuit.Binary)
	if k == 0 {
		return c, nil
	}

	ops := make(circuit.Sequence, 0, 2*k)
	stack := []frame{{first: 0, n: n}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		w := k - f.first
		if f.n == 0 || w == 0 {
			continue
		}
		if f.n == 1<<w {
			for q := f.first; q < k; q++ {
				ops = append(ops, circuit.Operation{Controls: f.ctl, Target: q, Angle: angle.Uniform})
			}
			continue
		}
		m := 1 << (w - 1)
		if f.n <= m {
			stack = append(stack, frame{first: f.first + 1, n: f.n, ctl: f.ctl})
			continue
		}
		sp, err := angle.Decide(f.n, m)
		if err != nil {
			return nil, err
		}
		ops = append(ops, circuit.Operation{Controls: f.ctl, Target: f.first, Angle: sp.Angle})
		zero := withControl(f.ctl, f.first, 0)
		for q := f.first + 1; q < k; q++ {
			ops = append(ops, circuit.Operation{Controls: zero, Target: q, Angle: angle.Uniform})
		}
		stack = append(stack, frame{first: f.first + 1, n: f.n - m, ctl: withControl(f.ctl, f.first, 1)})
	}

	sortByTarget(ops)
	em := circuit.NewEmitter(k)
	for _, op := range ops {
		if err := em.Append(op); err != nil {
			return nil, err
		}
	}
	c.Ops = em.Sequence()
	return c, nil
}
