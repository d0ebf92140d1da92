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

package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// ProportionCI 對外提供 Clopper–Pearson 區間
func ProportionCI(k, n int, confidence float64) CI {
	_, ci := proportionCICP(k, n, confidence)
	return ci
}

// chiSquareUniform 對 [0,n) 做均勻分佈適合度檢定。
//
// 洩漏（>= n）的次數不進入任何格子，因此會拉低格子總數並推高統計量。
// n == 1 或 shots == 0 時自由度為 0，p 值定義為 1。
func chiSquareUniform(counts map[uint64]int, n int, shots int) (stat float64, dof int, p float64) {
	if n <= 1 || shots == 0 {
		return 0, 0, 1
	}
	exp := float64(shots) / float64(n)
	seen := 0
	for v, c := range counts {
		if v >= uint64(n) {
			continue
		}
		d := float64(c) - exp
		stat += d * d / exp
		seen++
	}
	// 未觀測到的格子各貢獻 (0 - exp)^2 / exp = exp
	stat += float64(n-seen) * exp
	dof = n - 1
	p = distuv.ChiSquared{K: float64(dof)}.Survival(stat)
	if math.IsNaN(p) {
		p = 0
	}
	return stat, dof, p
}

// deviationUniform 回傳觀測頻率與均勻分佈的總變異距離及最大逐點誤差。
func deviationUniform(counts map[uint64]int, n int, shots int) (tv float64, maxDev float64) {
	if shots == 0 || n < 1 {
		return 0, 0
	}
	want := 1 / float64(n)
	sum := 0.0
	seen := 0
	for v, c := range counts {
		f := float64(c) / float64(shots)
		d := f
		if v < uint64(n) {
			d = math.Abs(f - want)
			seen++
		}
		sum += d
		maxDev = max(maxDev, d)
	}
	if seen < n {
		sum += float64(n-seen) * want
		maxDev = max(maxDev, want)
	}
	return sum / 2, maxDev
}

func sortOutcomes(os []Outcome) {
	slices.SortFunc(os, func(a, b Outcome) int {
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
}
