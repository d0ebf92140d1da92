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

package circuit

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/prefix"
)

func mustInvalid(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestBitOfMSBFirst(t *testing.T) {
	// 6 = 110
	want := []uint8{1, 1, 0}
	for v, w := range want {
		if got := BitOf(6, 3, v); got != w {
			t.Fatalf("BitOf(6,3,%d) got %d want %d", v, got, w)
		}
	}
	if Mask(3, 0) != 4 || Mask(3, 2) != 1 {
		t.Fatalf("mask mismatch: %d %d", Mask(3, 0), Mask(3, 2))
	}
}

func TestEmitterConditionalControls(t *testing.T) {
	em := NewEmitter(3)
	if err := em.Baseline(0, 1); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if err := em.Conditional(prefix.FromBits(1, 0), 0.5); err != nil {
		t.Fatalf("conditional: %v", err)
	}
	seq := em.Sequence()
	if len(seq) != 2 {
		t.Fatalf("len got %d", len(seq))
	}
	if !seq[0].Unconditional() || seq[0].Target != 0 {
		t.Fatalf("baseline op got %v", seq[0])
	}
	op := seq[1]
	if op.Target != 2 || len(op.Controls) != 2 {
		t.Fatalf("conditional op got %v", op)
	}
	if op.Controls[0] != (Control{Var: 0, Bit: 1}) || op.Controls[1] != (Control{Var: 1, Bit: 0}) {
		t.Fatalf("controls got %v", op.Controls)
	}
	if !seq.Ordered() {
		t.Fatalf("sequence should be ordered")
	}
}

func TestEmitterRejectsOrderRegression(t *testing.T) {
	em := NewEmitter(3)
	if err := em.Baseline(2, 1); err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if err := em.Baseline(1, 1); err == nil {
		t.Fatalf("expected order error")
	}
	if err := em.Baseline(3, 1); err == nil {
		t.Fatalf("expected range error")
	}
	if em.Len() != 1 {
		t.Fatalf("len got %d", em.Len())
	}
}

func TestEmitterSequenceIsCopy(t *testing.T) {
	em := NewEmitter(2)
	_ = em.Conditional(prefix.FromBits(1), 0.25)
	a := em.Sequence()
	a[0].Controls[0].Bit = 0
	b := em.Sequence()
	if b[0].Controls[0].Bit != 1 {
		t.Fatalf("emitter state leaked through Sequence")
	}
	if got := NewEmitter(0).Sequence(); got == nil || len(got) != 0 {
		t.Fatalf("empty emitter should return empty non-nil sequence")
	}
}

func TestValidate(t *testing.T) {
	ok := Sequence{
		{Target: 0, Angle: 1},
		{Controls: []Control{{Var: 0, Bit: 0}}, Target: 1, Angle: 1},
	}
	if err := Validate(2, ok); err != nil {
		t.Fatalf("valid sequence rejected: %v", err)
	}
	cases := map[string]Sequence{
		"target":  {{Target: 2, Angle: 1}},
		"nan":     {{Target: 0, Angle: math.NaN()}},
		"inf":     {{Target: 0, Angle: math.Inf(1)}},
		"ctl-rng": {{Controls: []Control{{Var: 5, Bit: 1}}, Target: 0}},
		"ctl-tgt": {{Controls: []Control{{Var: 1, Bit: 1}}, Target: 1}},
		"ctl-bit": {{Controls: []Control{{Var: 0, Bit: 2}}, Target: 1}},
		"ctl-dup": {{Controls: []Control{{Var: 0, Bit: 1}, {Var: 0, Bit: 0}}, Target: 1}},
	}
	for name, seq := range cases {
		t.Run(name, func(t *testing.T) {
			mustInvalid(t, Validate(2, seq))
		})
	}
	mustInvalid(t, Validate(-1, nil))
}

func TestFingerprintAndEqual(t *testing.T) {
	a := Sequence{
		{Target: 0, Angle: 1.25},
		{Controls: []Control{{Var: 0, Bit: 1}}, Target: 1, Angle: math.Pi / 2},
	}
	b := a.Clone()
	if !a.Equal(b) || a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("clone should be equal")
	}
	b[1].Controls[0].Bit = 0
	if a.Equal(b) || a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("control bit change not detected")
	}
	c := a.Clone()
	c[0].Angle = math.Nextafter(c[0].Angle, 2)
	if a.Equal(c) || a.Fingerprint() == c.Fingerprint() {
		t.Fatalf("1-ulp angle change not detected")
	}
	if len(a.FingerprintHex()) != 16 {
		t.Fatalf("hex fingerprint got %q", a.FingerprintHex())
	}
}

func TestStats(t *testing.T) {
	s := Sequence{
		{Target: 0, Angle: 1},
		{Controls: []Control{{Var: 0, Bit: 1}}, Target: 1, Angle: 1},
		{Controls: []Control{{Var: 0, Bit: 1}, {Var: 1, Bit: 0}}, Target: 2, Angle: 1},
	}
	ops, unc, mc := s.Stats()
	if ops != 3 || unc != 1 || mc != 2 {
		t.Fatalf("stats got %d %d %d", ops, unc, mc)
	}
}

func TestLayout(t *testing.T) {
	if Binary.Outcomes(3) != 8 || Thermometer.Outcomes(3) != 4 {
		t.Fatalf("outcomes mismatch")
	}
	// 110 → 2 個前導 1
	if got := Thermometer.Outcome(6, 3); got != 2 {
		t.Fatalf("thermometer outcome got %d", got)
	}
	if got := Binary.Outcome(6, 3); got != 6 {
		t.Fatalf("binary outcome got %d", got)
	}
	var l Layout
	if err := l.UnmarshalText([]byte("thermometer")); err != nil || l != Thermometer {
		t.Fatalf("unmarshal got %v %v", l, err)
	}
	mustInvalid(t, l.UnmarshalText([]byte("gray")))
	b, err := Binary.MarshalText()
	if err != nil || string(b) != Binary.String() {
		t.Fatalf("marshal got %q %v", b, err)
	}
}

func TestQASM(t *testing.T) {
	c := &Circuit{
		Strategy: "prefix",
		N:        3,
		Qubits:   2,
		Layout:   Binary,
		Ops: Sequence{
			{Target: 0, Angle: 1},
			{Controls: []Control{{Var: 0, Bit: 0}}, Target: 1, Angle: math.Pi / 2},
		},
	}
	out, err := c.QASM(QASMOptions{Measure: true})
	if err != nil {
		t.Fatalf("qasm: %v", err)
	}
	for _, want := range []string{"OPENQASM 3.0;", "qubit[2] q;", "bit[2] c;", "ry(1) q[0];", "negctrl @ ry(", "q[0], q[1];", "c = measure q;"} {
		if !strings.Contains(out, want) {
			t.Fatalf("qasm missing %q:\n%s", want, out)
		}
	}
	le, err := c.QASM(QASMOptions{LittleEndian: true})
	if err != nil {
		t.Fatalf("qasm le: %v", err)
	}
	if !strings.Contains(le, "ry(1) q[1];") || !strings.Contains(le, "q[1], q[0];") {
		t.Fatalf("little endian mapping wrong:\n%s", le)
	}
	if strings.Contains(le, "measure") {
		t.Fatalf("measure should be off")
	}

	bad := *c
	bad.Ops = Sequence{{Target: 9}}
	_, err = bad.QASM(QASMOptions{})
	mustInvalid(t, err)
}
