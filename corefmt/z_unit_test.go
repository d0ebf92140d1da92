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

package corefmt

import (
	"errors"
	"testing"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/core"
)

func TestSnapshotRoundTrip(t *testing.T) {
	a := core.New(core.Default().New(3))
	a.Uint64()
	s, err := SnapshotB64U(a)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := a.Uint64()

	b := core.New(core.Default().New(0))
	if err := RestoreB64U(b, s); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := b.Uint64(); got != want {
		t.Fatalf("replay got %d want %d", got, want)
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	b := core.New(core.Default().New(0))
	for _, s := range []string{"***", EncodeBase64URL([]byte("nope"))} {
		if err := RestoreB64U(b, s); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("restore %q expected invalid input, got %v", s, err)
		}
	}
}
