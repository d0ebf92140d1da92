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

// unaryChain 單鏈（溫度計）策略
type unaryChain struct{}

// NewUnaryChain 回傳單鏈策略。
//
// 使用 K = N-1 個變數：在前一個變數為 1 的條件下，變數 i 以機率 (K-i)/(K-i+1) 取得 1，
// 角度 θ_i = 2·arcsin(sqrt(p))。結果 = 從變數 0 起連續 1 的個數。
//
// 變數數為線性而非對數，但控制結構只有單一前驅，不牽涉多前綴條件，
// 因此適合作為前綴樹策略的獨立對照。
func NewUnaryChain() Encoder { return unaryChain{} }

func (unaryChain) Name() string { return UnaryChain }

func (unaryChain) Encode(n int) (*circuit.Circuit, error) {
	if err := checkN(n); err != nil {
		return nil, err
	}
	k := n - 1
	c := newCircuit(UnaryChain, n, k, circuit.Thermometer)
	if k == 0 {
		return c, nil
	}

	em := circuit.NewEmitter(k)
	for i := 0; i < k; i++ {
		theta, err := angle.Chain(float64(k-i) / float64(k-i+1))
		if err != nil {
			return nil, err
		}
		op := circuit.Operation{Target: i, Angle: theta}
		if i > 0 {
			op.Controls = []circuit.Control{{Var: i - 1, Bit: 1}}
		}
		if err := em.Append(op); err != nil {
			return nil, err
		}
	}
	c.Ops = em.Sequence()
	return c, nil
}
