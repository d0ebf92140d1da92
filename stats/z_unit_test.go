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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/unisynth/stats"
	"gopkg.in/yaml.v3"
)

func report(n int, counts map[uint64]int) *stats.Report {
	r := stats.NewReport(stats.Summary{Strategy: "prefix", N: n, Qubits: 3, Ops: 6, Fingerprint: "00ff"}, counts)
	r.Done()
	return r
}

func TestPerfectUniform(t *testing.T) {
	counts := map[uint64]int{}
	for v := uint64(0); v < 7; v++ {
		counts[v] = 1000
	}
	r := report(7, counts)
	s := r.Summary
	if s.Shots != 7000 || s.Leak != 0 || s.Observed != 7 {
		t.Fatalf("summary got %+v", s)
	}
	if s.ChiSquare != 0 || s.DoF != 6 || math.Abs(s.PValue-1) > 1e-12 {
		t.Fatalf("chi-square got %v dof %d p %v", s.ChiSquare, s.DoF, s.PValue)
	}
	if s.TVDistance > 1e-12 || s.MaxDeviation > 1e-12 {
		t.Fatalf("deviation got %v %v", s.TVDistance, s.MaxDeviation)
	}
	if !r.Passed(0.01) {
		t.Fatalf("perfect counts should pass")
	}
	if len(r.Outcomes) != 7 {
		t.Fatalf("outcomes len %d", len(r.Outcomes))
	}
	for _, o := range r.Outcomes {
		if o.CI.Lo > o.Expected || o.CI.Hi < o.Expected {
			t.Fatalf("outcome %d CI %v misses %v", o.Value, o.CI, o.Expected)
		}
	}
}

func TestLeakAndMissing(t *testing.T) {
	r := report(4, map[uint64]int{0: 50, 1: 50, 5: 10})
	s := r.Summary
	if s.Leak != 10 || s.Shots != 110 {
		t.Fatalf("leak got %d shots %d", s.Leak, s.Shots)
	}
	if r.Passed(0) {
		t.Fatalf("leak must fail")
	}
	if len(r.Leaked) != 1 || r.Leaked[0].Value != 5 || r.Leaked[0].Count != 10 {
		t.Fatalf("leaked got %+v", r.Leaked)
	}
	// 2 個格子未觀測 → 各貢獻 1/4
	if s.MaxDeviation < 0.25-1e-12 {
		t.Fatalf("max deviation got %v", s.MaxDeviation)
	}
	if s.PValue > 1e-6 {
		t.Fatalf("skewed counts should reject, p=%v", s.PValue)
	}
}

func TestSingleOutcome(t *testing.T) {
	r := report(1, map[uint64]int{0: 10})
	if r.Summary.DoF != 0 || r.Summary.PValue != 1 || !r.Passed(0.05) {
		t.Fatalf("N=1 summary got %+v", r.Summary)
	}
}

func TestProportionCI(t *testing.T) {
	ci := stats.ProportionCI(0, 100, 0.95)
	if ci.Lo != 0 || ci.Hi <= 0 || ci.Hi > 0.05 {
		t.Fatalf("k=0 CI got %v", ci)
	}
	ci = stats.ProportionCI(100, 100, 0.95)
	if ci.Hi != 1 || ci.Lo < 0.95 {
		t.Fatalf("k=n CI got %v", ci)
	}
	ci = stats.ProportionCI(50, 100, 0.95)
	if ci.Lo > 0.5 || ci.Hi < 0.5 {
		t.Fatalf("k=n/2 CI got %v", ci)
	}
}

func TestRenders(t *testing.T) {
	r := report(2, map[uint64]int{0: 3, 1: 5})

	var jb bytes.Buffer
	if err := r.WriteWith(&jb, &stats.JsonRender{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back stats.Report
	if err := json.Unmarshal(jb.Bytes(), &back); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if back.Summary.Shots != 8 || len(back.Outcomes) != 2 {
		t.Fatalf("json round trip got %+v", back.Summary)
	}

	var yb bytes.Buffer
	if err := r.WriteWith(&yb, &stats.YAMLRender{}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(yb.String(), "Strategy: prefix") {
		t.Fatalf("yaml missing strategy:\n%s", yb.String())
	}
	var m map[string]any
	if err := yaml.Unmarshal(yb.Bytes(), &m); err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
}

func TestForceReadableListFlowsInnerArrays(t *testing.T) {
	v := struct {
		Flat []int   `yaml:"flat"`
		Grid [][]int `yaml:"grid"`
	}{Flat: []int{1, 2}, Grid: [][]int{{1}, {2, 3}}}
	var b bytes.Buffer
	if err := stats.ForceReadableList(&b, &v); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "flat: [1, 2]") || !strings.Contains(out, "- [2, 3]") {
		t.Fatalf("unexpected yaml:\n%s", out)
	}
}

func TestWriteTable(t *testing.T) {
	counts := map[uint64]int{}
	for v := uint64(0); v < 7; v++ {
		counts[v] = 100
	}
	r := report(7, counts)
	var buf bytes.Buffer
	if err := r.WriteTable(&buf, 1500*time.Millisecond); err != nil {
		t.Fatalf("write table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"used: 1.50 seconds", "prefix N=7", "Outcomes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := r.WriteTable(&buf, 2*time.Hour+3*time.Minute); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if !strings.Contains(buf.String(), "used: 2h:3m:0s") {
		t.Fatalf("long duration got:\n%s", buf.String())
	}
}
