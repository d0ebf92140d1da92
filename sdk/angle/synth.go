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

package angle

import (
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/prefix"
)

// Node 是走訪時看到的一個可達前綴。
type Node struct {
	Prefix prefix.Prefix
	Count  int
	Zero   int
	One    int
	Split  Split
}

// Depth 回傳節點深度（= 前綴長度 = 目標變數）。
func (n Node) Depth() int { return n.Prefix.Len }

// Instruction 是合成器輸出的單一指令。
//
// Baseline = true 代表該層的無條件基準操作（Prefix 為空、不帶控制）；
// 否則為以 Prefix 為條件、目標為 len(Prefix) 的旋轉。
type Instruction struct {
	Prefix   prefix.Prefix
	Target   int
	Angle    float64
	Kind     Kind
	Baseline bool
}

// Synthesizer 以明確的 FIFO 工作佇列走訪前綴樹。
//
// FIFO 自然給出「深度非遞減、同深度字典序」的輸出順序，不需要事後排序，
// 且記憶體上限為可達節點數（至多 2N-1）。
type Synthesizer struct {
	cnt prefix.Counter
}

// New 建立綁定 cnt 的合成器。
func New(cnt prefix.Counter) *Synthesizer {
	return &Synthesizer{cnt: cnt}
}

// Walk 依序走訪深度 < maxDepth 的所有可達前綴（count > 0），對每個節點呼叫 visit。
//
// maxDepth 超出 [0, k] 時以 k 計。visit 回傳錯誤時立即中止並原樣回傳。
func (s *Synthesizer) Walk(maxDepth int, visit func(Node) error) error {
	k := s.cnt.K()
	if maxDepth < 0 || maxDepth > k {
		maxDepth = k
	}
	if maxDepth == 0 {
		return nil
	}
	queue := []prefix.Prefix{prefix.Empty()}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		c := s.cnt.Count(p)
		c0 := s.cnt.Count(p.Append(0))
		c1 := s.cnt.Count(p.Append(1))
		if c0+c1 != c {
			return errs.Degeneracyf("additivity broken at %s: %d != %d + %d", p, c, c0, c1)
		}
		sp, err := Decide(c, c0)
		if err != nil {
			return err
		}
		if err := visit(Node{Prefix: p, Count: c, Zero: c0, One: c1, Split: sp}); err != nil {
			return err
		}
		if p.Len+1 >= maxDepth {
			continue
		}
		if c0 > 0 {
			queue = append(queue, p.Append(0))
		}
		if c1 > 0 {
			queue = append(queue, p.Append(1))
		}
	}
	return nil
}

// Baseline 回傳深度 t 的基準角：整層可達前綴皆滿容量時為 π/2，否則為 0。
func (s *Synthesizer) Baseline(t int) float64 {
	if s.cnt.FullDepth(t) {
		return Uniform
	}
	return 0
}

// Instructions 產生深度 < maxDepth 的全部指令（maxDepth < 0 代表全部深度）。
//
// 規則：
//   - 深度 t 整層滿容量時，先輸出一個無條件基準指令（π/2），該層所有前綴的角度都等於基準 → NoOp。
//   - 否則基準為 0：ForceZero → NoOp；ForceOne → 條件 π；FreeRotation → 條件旋轉。
//   - 角度與基準相差 < Tolerance 一律略過。
func (s *Synthesizer) Instructions(maxDepth int) ([]Instruction, error) {
	out := make([]Instruction, 0, 2*s.cnt.K())
	depth := -1
	base := 0.0
	err := s.Walk(maxDepth, func(n Node) error {
		t := n.Depth()
		if t != depth {
			depth = t
			base = s.Baseline(t)
			if base != 0 {
				out = append(out, Instruction{Target: t, Angle: base, Kind: FreeRotation, Baseline: true})
			}
		}
		if base != 0 && !s.cnt.Full(n.Prefix) {
			return errs.Degeneracyf("prefix %s below capacity under baseline %v", n.Prefix, base)
		}
		if n.Split.Kind == NoOp || Near(n.Split.Angle, base) {
			return nil
		}
		if base != 0 {
			// 基準層的每個前綴都應是 50/50，走到這裡代表 FullDepth 與計數不一致
			return errs.Degeneracyf("prefix %s angle %v deviates from baseline %v", n.Prefix, n.Split.Angle, base)
		}
		out = append(out, Instruction{Prefix: n.Prefix, Target: t, Angle: n.Split.Angle, Kind: n.Split.Kind})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
