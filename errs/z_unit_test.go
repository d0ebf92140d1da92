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

package errs

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestKindMatching(t *testing.T) {
	e := Invalidf("n must be >= 1, got %d", 0)
	if !errors.Is(e, ErrInvalidInput) || errors.Is(e, ErrArithmeticDegeneracy) {
		t.Fatalf("kind matching broken: %v", e)
	}
	if e.ErrLv != Warn {
		t.Fatalf("invalid input should be warn, got %s", ErrLv(e.ErrLv))
	}
	d := Degeneracyf("c0 > c")
	if !errors.Is(d, ErrArithmeticDegeneracy) || d.ErrLv != Fatal {
		t.Fatalf("degeneracy got %v", d)
	}
	if errors.Is(NewWarn("plain"), ErrInvalidInput) {
		t.Fatalf("unknown kind should not match")
	}
}

func TestWrapKeepsLevelAndKind(t *testing.T) {
	w := Wrap(Invalidf("bad"), "encode failed")
	if w.ErrLv != Warn || w.Kind != InvalidInput || !errors.Is(w, ErrInvalidInput) {
		t.Fatalf("wrap lost level/kind: %v", w)
	}
	std := Wrap(io.EOF, "read")
	if std.ErrLv != Fatal || !errors.Is(std, io.EOF) {
		t.Fatalf("wrap of std error got %v", std)
	}
}

func TestWrapExecutor(t *testing.T) {
	cause := Invalidf("shots must be > 0")
	w := WrapExecutor(cause, "execute")
	if !errors.Is(w, ErrExecutor) || !errors.Is(w, ErrInvalidInput) {
		t.Fatalf("executor wrap should match both kinds: %v", w)
	}
	if got, ok := AsErr(w); !ok || got != w {
		t.Fatalf("AsErr failed")
	}
	if !strings.Contains(w.Error(), "kind=executor") || !strings.Contains(w.Error(), "cause:") {
		t.Fatalf("message got %q", w.Error())
	}
}

func TestExtra(t *testing.T) {
	e := WrapWithExtra(NewLog("x"), "y", "n=7")
	if e.ErrLv != Log || !strings.Contains(e.Error(), "extra: n=7") {
		t.Fatalf("extra got %q", e.Error())
	}
}
