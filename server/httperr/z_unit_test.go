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

package httperr

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/unisynth/dto"
	"github.com/zintix-labs/unisynth/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", errs.Invalidf("n must be >= 1"), http.StatusBadRequest},
		{"warn", errs.NewWarn("bad"), http.StatusBadRequest},
		{"fatal", errs.NewFatal("boom"), http.StatusInternalServerError},
		{"degeneracy", errs.Degeneracyf("c0 < 0"), http.StatusInternalServerError},
		{"executor", errs.WrapExecutor(errs.NewFatal("backend"), "execute failed"), http.StatusBadGateway},
		{"deadline", errs.WrapExecutor(context.DeadlineExceeded, "execute failed"), http.StatusGatewayTimeout},
		{"canceled", context.Canceled, http.StatusRequestTimeout},
		{"plain", bytes.ErrTooLarge, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("%s: got %d want %d", c.name, got, c.want)
		}
	}
}

func TestErrsBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/encode?n=0", nil)
	Errs(w, r, errs.Invalidf("n must be >= 1, got 0"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body dto.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Kind != "invalid_input" || body.Status != http.StatusBadRequest {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestErrsNil(t *testing.T) {
	w := httptest.NewRecorder()
	Errs(w, nil, nil)
	if w.Body.Len() != 0 {
		t.Fatalf("nil error should write nothing")
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Log(log, "client", errs.Invalidf("bad n"))
	if buf.Len() != 0 {
		t.Fatalf("4xx should not be logged: %s", buf.String())
	}
	Log(log, "server", errs.Degeneracyf("c0 > c"))
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("5xx should be logged at error: %s", buf.String())
	}
}
