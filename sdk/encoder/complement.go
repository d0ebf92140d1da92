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
	"github.com/zintix-labs/unisynth/sdk/prefix"
)

// complement 基準 + 修正角策略
type complement struct{}

// NewComplement 回傳基準修正策略。
//
// 每個變數先施加無條件 π/2，再對每個可達前綴補上 delta = θ - π/2 的條件旋轉
// （ForceZero 的 θ = 0、ForceOne 的 θ = π），|delta| < Tolerance 者略過。
//
// 此策略依賴 RY(a)·RY(b) = RY(a+b) 的振幅層級合成，
// 只能以振幅模擬的執行器驗證，不能以逐路徑的機率分支執行器驗證。
func NewComplement() Encoder { return complement{} }

func (complement) Name() string { return Complement }

func (complement) Encode(n int) (*circuit.Circuit, error) {
	if err := checkN(n); err != nil {
		return nil, err
	}
	cnt, err := prefix.NewCounter(n)
	if err != nil {
		return nil, err
	}
	c := newCircuit(Complement, n, cnt.K(), circuit.Binary)
	if cnt.K() == 0 {
		return c, nil
	}

	em := circuit.NewEmitter(cnt.K())
	depth := -1
	err = angle.New(cnt).Walk(-1, func(nd angle.Node) error {
		if t := nd.Depth(); t != depth {
			depth = t
			if err := em.Baseline(t, angle.Uniform); err != nil {
				return err
			}
		}
		delta := nd.Split.Angle - angle.Uniform
		if nd.Split.Kind == angle.NoOp || angle.Near(delta, 0) {
			return nil
		}
		return em.Conditional(nd.Prefix, delta)
	})
	if err != nil {
		return nil, err
	}
	c.Ops = em.Sequence()
	return c, nil
}
