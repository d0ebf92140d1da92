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

// prefixTree 由上而下的前綴計數策略
type prefixTree struct{}

// NewPrefixTree 回傳前綴樹策略（主要策略）。
//
// k = ceil(log2 N) 個變數；每個可達前綴至多一個條件旋轉，
// 整層滿容量的深度只輸出一個無條件 π/2。
func NewPrefixTree() Encoder { return prefixTree{} }

func (prefixTree) Name() string { return PrefixTree }

func (prefixTree) Encode(n int) (*circuit.Circuit, error) {
	if err := checkN(n); err != nil {
		return nil, err
	}
	cnt, err := prefix.NewCounter(n)
	if err != nil {
		return nil, err
	}
	c := newCircuit(PrefixTree, n, cnt.K(), circuit.Binary)
	if cnt.K() == 0 {
		return c, nil
	}

	ins, err := angle.New(cnt).Instructions(-1)
	if err != nil {
		return nil, err
	}
	em := circuit.NewEmitter(cnt.K())
	for _, in := range ins {
		if in.Baseline {
			err = em.Baseline(in.Target, in.Angle)
		} else {
			err = em.Conditional(in.Prefix, in.Angle)
		}
		if err != nil {
			return nil, err
		}
	}
	c.Ops = em.Sequence()
	return c, nil
}
