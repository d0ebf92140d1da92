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
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/prefix"
)

func synth(t *testing.T, n int) *Synthesizer {
	t.Helper()
	cnt, err := prefix.NewCounter(n)
	if err != nil {
		t.Fatalf("NewCounter(%d): %v", n, err)
	}
	return New(cnt)
}

func TestDecideKinds(t *testing.T) {
	cases := []struct {
		c, c0 int
		kind  Kind
		angle float64
	}{
		{0, 0, NoOp, 0},
		{3, 0, ForceOne, math.Pi},
		{3, 3, ForceZero, 0},
		{2, 1, FreeRotation, math.Pi / 2},
		{4, 1, FreeRotation, 2 * math.Acos(0.5)},
	}
	for _, tc := range cases {
		sp, err := Decide(tc.c, tc.c0)
		if err != nil {
			t.Fatalf("Decide(%d,%d): %v", tc.c, tc.c0, err)
		}
		if sp.Kind != tc.kind || !Near(sp.Angle, tc.angle) {
			t.Fatalf("Decide(%d,%d) got %v/%v want %v/%v", tc.c, tc.c0, sp.Kind, sp.Angle, tc.kind, tc.angle)
		}
	}
}

func TestDecideProbability(t *testing.T) {
	for c := 1; c <= 40; c++ {
		for c0 := 0; c0 <= c; c0++ {
			sp, err := Decide(c, c0)
			if err != nil {
				t.Fatalf("Decide(%d,%d): %v", c, c0, err)
			}
			p0 := math.Pow(math.Cos(sp.Angle/2), 2)
			if math.Abs(p0-float64(c0)/float64(c)) > 1e-12 {
				t.Fatalf("Decide(%d,%d) p0 got %v", c, c0, p0)
			}
		}
	}
}

func TestDecideDegeneracy(t *testing.T) {
	for _, tc := range [][2]int{{-1, 0}, {3, -1}, {3, 4}} {
		_, err := Decide(tc[0], tc[1])
		if !errors.Is(err, errs.ErrArithmeticDegeneracy) {
			t.Fatalf("Decide(%d,%d) expected degeneracy, got %v", tc[0], tc[1], err)
		}
		e, ok := errs.AsErr(err)
		if !ok || e.ErrLv != errs.Fatal {
			t.Fatalf("degeneracy should be fatal, got %v", err)
		}
	}
}

func TestChain(t *testing.T) {
	for _, p := range []float64{0, 0.25, 0.5, 1} {
		a, err := Chain(p)
		if err != nil {
			t.Fatalf("Chain(%v): %v", p, err)
		}
		if got := math.Pow(math.Sin(a/2), 2); math.Abs(got-p) > 1e-12 {
			t.Fatalf("Chain(%v) p1 got %v", p, got)
		}
	}
	for _, p := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := Chain(p); !errors.Is(err, errs.ErrArithmeticDegeneracy) {
			t.Fatalf("Chain(%v) expected degeneracy, got %v", p, err)
		}
	}
}

func TestInstructionsSingleBit(t *testing.T) {
	ins, err := synth(t, 2).Instructions(-1)
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	if len(ins) != 1 || !ins[0].Baseline || ins[0].Target != 0 || !Near(ins[0].Angle, Uniform) {
		t.Fatalf("N=2 got %+v", ins)
	}
}

func TestInstructionsPowerOfTwo(t *testing.T) {
	ins, err := synth(t, 8).Instructions(-1)
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	if len(ins) != 3 {
		t.Fatalf("N=8 got %d instructions", len(ins))
	}
	for i, in := range ins {
		if !in.Baseline || in.Target != i || !Near(in.Angle, Uniform) {
			t.Fatalf("N=8 instruction %d got %+v", i, in)
		}
	}
}

func TestInstructionsSeven(t *testing.T) {
	ins, err := synth(t, 7).Instructions(-1)
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	want := []struct {
		p     prefix.Prefix
		angle float64
	}{
		{prefix.Empty(), 2 * math.Acos(math.Sqrt(4.0/7.0))},
		{prefix.FromBits(0), Uniform},
		{prefix.FromBits(1), 2 * math.Acos(math.Sqrt(2.0/3.0))},
		{prefix.FromBits(0, 0), Uniform},
		{prefix.FromBits(0, 1), Uniform},
		{prefix.FromBits(1, 0), Uniform},
	}
	if len(ins) != len(want) {
		t.Fatalf("N=7 got %d instructions: %+v", len(ins), ins)
	}
	for i, w := range want {
		in := ins[i]
		if in.Baseline || in.Prefix != w.p || in.Target != w.p.Len || !Near(in.Angle, w.angle) {
			t.Fatalf("N=7 instruction %d got %+v want prefix %s angle %v", i, in, w.p, w.angle)
		}
	}
}

func TestInstructionsMixedBaseline(t *testing.T) {
	// N=6：深度 0 自由旋轉、深度 1 僅 0 分支滿、深度 2 整層滿
	ins, err := synth(t, 6).Instructions(-1)
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	// 1 分支（100,101）為 ForceZero，不輸出
	if len(ins) != 3 {
		t.Fatalf("N=6 got %d instructions: %+v", len(ins), ins)
	}
	if ins[0].Baseline || ins[0].Kind != FreeRotation || ins[0].Target != 0 {
		t.Fatalf("depth 0 got %+v", ins[0])
	}
	if ins[1].Baseline || ins[1].Prefix != prefix.FromBits(0) || !Near(ins[1].Angle, Uniform) {
		t.Fatalf("depth 1 zero branch got %+v", ins[1])
	}
	last := ins[len(ins)-1]
	if !last.Baseline || last.Target != 2 || !Near(last.Angle, Uniform) {
		t.Fatalf("depth 2 baseline got %+v", last)
	}
}

func TestWalkPartialDepth(t *testing.T) {
	s := synth(t, 7)
	var seen []prefix.Prefix
	err := s.Walk(2, func(n Node) error {
		if n.Zero+n.One != n.Count {
			t.Fatalf("additivity at %s", n.Prefix)
		}
		seen = append(seen, n.Prefix)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("walk depth<2 visited %v", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].Less(seen[i-1]) {
			t.Fatalf("walk order broken: %v", seen)
		}
	}
	if err := s.Walk(0, func(Node) error { t.Fatalf("visited at depth 0"); return nil }); err != nil {
		t.Fatalf("walk 0: %v", err)
	}

	stop := errs.NewWarn("stop")
	if err := s.Walk(-1, func(Node) error { return stop }); err != stop {
		t.Fatalf("visit error should pass through, got %v", err)
	}
}
