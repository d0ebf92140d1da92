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

// Package sampler 提供 O(1) 的加權抽樣結構，供取樣執行器把理想機率轉為觀測次數。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/core"
)

// Resolution 機率量化為整數權重時使用的刻度（2^40）
const Resolution = 1 << 40

// AliasTable 是 Vose Alias Method 的整數版本。
//
//   - Prob[i] = 權重 × Size，以 Total 為門檻判斷取自己或別名。
//   - 建表 O(N)，抽樣 O(1)，固定兩次 IntN。
//   - 全程整數運算，避免浮點誤差累積。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 以非負整數權重建表。
//
// 負權重、全部為零或 total×n 溢位時回傳 InvalidInput。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	if len(weights) == 0 {
		return &AliasTable{Prob: []int{}, Aliases: []int{}}, nil
	}

	n := len(weights)
	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Invalidf("alias table: negative weight at %d", i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.Invalidf("alias table: total weight overflows int")
		}
		total += uint64(w)
	}
	if total == 0 {
		return nil, errs.Invalidf("alias table: all weights are zero")
	}
	if !isSafeMultiply(int(total), n) {
		return nil, errs.Invalidf("alias table: weights too large for %d items", n)
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		aliases[i] = i
		prob[i] = w * n
		if prob[i] < int(total) {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] = prob[l] + prob[s] - int(total) // sum(prob) = total * n

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽位機率必為滿格
	for _, i := range large {
		prob[i] = int(total)
	}
	for _, i := range small {
		prob[i] = int(total)
	}

	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: int(total)}, nil
}

// FromProbabilities 把機率向量量化為 Resolution 刻度的整數權重後建表。
//
// 機率須有限且非負；量化誤差上限為每項 1/Resolution。
func FromProbabilities(probs []float64) (*AliasTable, error) {
	w := make([]int, len(probs))
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return nil, errs.Invalidf("alias table: probability %d is %v", i, p)
		}
		w[i] = int(math.Round(p * Resolution))
	}
	return BuildAliasTable(w)
}

func isSafeMultiply(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && lo <= math.MaxInt64
}

// Pick 抽出一個索引，空表回傳 -1。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
