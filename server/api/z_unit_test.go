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

package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/dto"
	"github.com/zintix-labs/unisynth/server/netsvr"
	"github.com/zintix-labs/unisynth/server/svrcfg"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	lab, err := unisynth.New()
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	sCfg := &svrcfg.SvrCfg{Lab: lab, MaxShots: 200_000, MaxWorkers: 4}
	if err := sCfg.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
	svr := netsvr.NewChiServerDefault()
	if err := RegisterRoutes(svr, sCfg); err != nil {
		t.Fatalf("register: %v", err)
	}
	ts := httptest.NewServer(svr.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, hdr map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	return resp
}

func post(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func wantStatus(t *testing.T, resp *http.Response, status int) {
	t.Helper()
	if resp.StatusCode != status {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status %d want %d: %s", resp.StatusCode, status, b)
	}
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/", nil)
	wantStatus(t, resp, http.StatusOK)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(b), "/v1/verify") {
		t.Fatalf("index should list routes")
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestStrategies(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/v1/strategies", nil)
	wantStatus(t, resp, http.StatusOK)
	res := decodeJSON[dto.StrategiesResult](t, resp)
	if len(res.Strategies) != 4 || res.Default != "prefix" {
		t.Fatalf("unexpected strategies %+v", res)
	}
}

func TestEncodeETag(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/v1/encode?n=7", nil)
	wantStatus(t, resp, http.StatusOK)
	etag := resp.Header.Get("ETag")
	res := decodeJSON[dto.CircuitResult](t, resp)
	if res.Circuit == nil || res.Circuit.N != 7 || res.Circuit.Qubits != 3 || res.Circuit.Strategy != "prefix" {
		t.Fatalf("unexpected circuit %+v", res.Circuit)
	}
	if res.Fingerprint != res.Circuit.Ops.FingerprintHex() {
		t.Fatalf("fingerprint does not match ops")
	}
	if !strings.Contains(etag, res.Fingerprint) {
		t.Fatalf("etag %q does not carry fingerprint %q", etag, res.Fingerprint)
	}

	resp = get(t, ts.URL+"/v1/encode?n=7", map[string]string{"If-None-Match": etag})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestEncodeYAML(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/v1/encode?n=5&strategy=partition&format=yaml", nil)
	wantStatus(t, resp, http.StatusOK)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/yaml") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(b), "strategy: partition") {
		t.Fatalf("unexpected yaml:\n%s", b)
	}
}

func TestEncodeErrors(t *testing.T) {
	ts := newTestServer(t)
	for _, q := range []string{"n=0", "n=-3", "n=x", "n=5&strategy=nope", "n=5&format=xml"} {
		resp := get(t, ts.URL+"/v1/encode?"+q, nil)
		wantStatus(t, resp, http.StatusBadRequest)
		body := decodeJSON[dto.ErrorBody](t, resp)
		if body.Kind != "invalid_input" || body.RequestID == "" {
			t.Fatalf("%s: unexpected body %+v", q, body)
		}
	}
}

func TestQASM(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/v1/qasm?n=6&strategy=complement&le=true&measure=true", nil)
	wantStatus(t, resp, http.StatusOK)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	src := string(b)
	if !strings.HasPrefix(src, "OPENQASM 3") || !strings.Contains(src, "measure") {
		t.Fatalf("unexpected qasm:\n%s", src)
	}
	if resp.Header.Get("X-Fingerprint") == "" {
		t.Fatalf("missing fingerprint header")
	}
}

func TestVerifyAndReplay(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/verify", `{"n":7,"strategy":"prefix","shots":70000,"workers":2,"seed":42}`)
	wantStatus(t, resp, http.StatusOK)
	res := decodeJSON[dto.VerifyResult](t, resp)
	sum := res.Report.Summary
	if sum.N != 7 || sum.Shots != 70000 || sum.Leak != 0 || sum.Seed != 42 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.PValue < 1e-6 {
		t.Fatalf("uniformity rejected: p=%g", sum.PValue)
	}
	if res.Run == nil || len(res.Run.Workers) != 2 {
		t.Fatalf("unexpected run %+v", res.Run)
	}

	ws := res.Run.Workers[0]
	body, _ := json.Marshal(dto.ReplayRequest{N: 7, Strategy: "prefix", Shots: ws.Shots, StartB64U: ws.StartB64U})
	var first map[uint64]int
	for i := 0; i < 2; i++ {
		resp = post(t, ts.URL+"/v1/replay", string(body))
		wantStatus(t, resp, http.StatusOK)
		rr := decodeJSON[dto.ReplayResult](t, resp)
		total := 0
		for v, c := range rr.Counts {
			if v >= 7 {
				t.Fatalf("replay produced outcome %d >= N", v)
			}
			total += c
		}
		if total != ws.Shots {
			t.Fatalf("replay total %d want %d", total, ws.Shots)
		}
		if first == nil {
			first = rr.Counts
			continue
		}
		for v, c := range first {
			if rr.Counts[v] != c {
				t.Fatalf("replay not deterministic at %d: %d vs %d", v, rr.Counts[v], c)
			}
		}
	}
}

func TestVerifyGETUnary(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts.URL+"/v1/verify?n=5&strategy=unary&shots=50000&seed=7", nil)
	wantStatus(t, resp, http.StatusOK)
	res := decodeJSON[dto.VerifyResult](t, resp)
	if res.Report.Summary.Strategy != "unary" || res.Report.Summary.Leak != 0 {
		t.Fatalf("unexpected summary %+v", res.Report.Summary)
	}
	if len(res.Run.Workers) != 4 {
		t.Fatalf("workers should default to the server maximum, got %d", len(res.Run.Workers))
	}
}

func TestVerifyErrors(t *testing.T) {
	ts := newTestServer(t)
	cases := []string{
		`{"n":7,"shots":0}`,
		`{"n":7,"shots":200001}`,
		`{"n":0,"shots":10}`,
		`{"n":7,"shots":10,"extra":true}`,
	}
	for _, body := range cases {
		resp := post(t, ts.URL+"/v1/verify", body)
		wantStatus(t, resp, http.StatusBadRequest)
		resp.Body.Close()
	}

	resp := post(t, ts.URL+"/v1/replay", `{"n":7,"shots":10,"start_b64u":"***"}`)
	wantStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}
