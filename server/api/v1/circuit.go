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

package v1

import (
	"net/http"
	"strings"

	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/dto"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/sdk/encoder"
	"github.com/zintix-labs/unisynth/server/httperr"
)

// ============================================================
// ** CircuitHandler **
// ============================================================

// CircuitHandler 提供策略列表、電路合成與 QASM 匯出。
type CircuitHandler struct {
	lab *unisynth.Lab
}

func NewCircuitHandler(lab *unisynth.Lab) (*CircuitHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &CircuitHandler{lab: lab}, nil
}

// Strategies GET /v1/strategies
func (h *CircuitHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, dto.StrategiesResult{
		Strategies: h.lab.Strategies(),
		Default:    encoder.PrefixTree,
	})
}

// Encode GET /v1/encode?n=&strategy=&format=
//
// ETag 為操作序列的 fingerprint；If-None-Match 相符時回 304。
func (h *CircuitHandler) Encode(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeEncodeRequest(r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	switch req.Format {
	case "", "json", "yaml":
	default:
		httperr.Errs(w, r, errs.Invalidf("unknown format %q", req.Format))
		return
	}
	c, err := h.lab.Compile(strategyOr(req.Strategy), req.N)
	if err != nil {
		httperr.Log(h.lab.Logger(), "encode failed", err)
		httperr.Errs(w, r, err)
		return
	}

	res := dto.NewCircuitResult(c)
	etag := `"` + res.Fingerprint + `"`
	if req.Format == "yaml" {
		etag = `"` + res.Fingerprint + `-yaml"`
	}
	w.Header().Set("ETag", etag)
	if matchETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if req.Format == "yaml" {
		writeYAML(w, r, res)
		return
	}
	writeJSON(w, r, res)
}

// QASM GET /v1/qasm?n=&strategy=&le=&measure=
func (h *CircuitHandler) QASM(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeQASMRequest(r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	c, err := h.lab.Compile(strategyOr(req.Strategy), req.N)
	if err != nil {
		httperr.Log(h.lab.Logger(), "qasm failed", err)
		httperr.Errs(w, r, err)
		return
	}
	src, err := c.QASM(circuit.QASMOptions{LittleEndian: req.LittleEndian, Measure: req.Measure})
	if err != nil {
		httperr.Log(h.lab.Logger(), "qasm failed", err)
		httperr.Errs(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Fingerprint", c.Ops.FingerprintHex())
	_, _ = w.Write([]byte(src))
}

func matchETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, v := range strings.Split(header, ",") {
		v = strings.TrimSpace(v)
		if v == "*" || strings.TrimPrefix(v, "W/") == etag {
			return true
		}
	}
	return false
}
