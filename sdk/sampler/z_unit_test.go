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

package sampler

import (
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/core"
)

func newCore(seed int64) *core.Core {
	return core.New(core.Default().New(seed))
}

func TestAliasTableEmpty(t *testing.T) {
	at, err := BuildAliasTable(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := at.Pick(newCore(1)); got != -1 {
		t.Fatalf("empty pick got %d", got)
	}
}

func TestAliasTableInvalid(t *testing.T) {
	cases := [][]int{{0, 0}, {1, -1}, {math.MaxInt, 1}}
	for _, w := range cases {
		if _, err := BuildAliasTable(w); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("weights %v expected invalid input, got %v", w, err)
		}
	}
	if _, err := FromProbabilities([]float64{0.5, math.NaN()}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("NaN probability expected invalid input, got %v", err)
	}
}

func TestAliasTableMass(t *testing.T) {
	w := []int{5, 0, 1, 3, 7}
	at, err := BuildAliasTable(w)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// 每個索引的總質量 = 自己槽位的 Prob + 其他槽位別名指向它的剩餘
	mass := make([]int, len(w))
	for i := range at.Prob {
		mass[i] += at.Prob[i]
		if at.Prob[i] < at.Total {
			mass[at.Aliases[i]] += at.Total - at.Prob[i]
		}
	}
	for i := range w {
		if mass[i] != w[i]*at.Size {
			t.Fatalf("index %d mass got %d want %d", i, mass[i], w[i]*at.Size)
		}
	}
}

func TestAliasTableZeroNeverPicked(t *testing.T) {
	at, err := FromProbabilities([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3, 0})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	c := newCore(7)
	counts := make([]int, 4)
	const draws = 30000
	for i := 0; i < draws; i++ {
		counts[at.Pick(c)]++
	}
	if counts[3] != 0 {
		t.Fatalf("zero-probability outcome drawn %d times", counts[3])
	}
	for i := 0; i < 3; i++ {
		if f := float64(counts[i]) / draws; math.Abs(f-1.0/3) > 0.02 {
			t.Fatalf("outcome %d frequency %v", i, f)
		}
	}
}
