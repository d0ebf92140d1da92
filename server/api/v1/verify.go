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
	"context"
	"net/http"
	"time"

	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/dto"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/server/httperr"
	"github.com/zintix-labs/unisynth/server/svrcfg"
)

// ============================================================
// ** VerifyHandler **
// ============================================================

// VerifyHandler 以內建取樣執行器驗證電路，並提供單一 worker 的回放。
// 同時進行的取樣數由 Pool 限制。
type VerifyHandler struct {
	cfg  *svrcfg.SvrCfg
	pool *unisynth.Pool
}

func NewVerifyHandler(sCfg *svrcfg.SvrCfg) (*VerifyHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	pool, err := unisynth.NewPool(sCfg.Lab, sCfg.MaxInflight)
	if err != nil {
		return nil, errs.Wrap(err, "build verify handler error")
	}
	return &VerifyHandler{cfg: sCfg, pool: pool}, nil
}

// Verify GET|POST /v1/verify
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeVerifyRequest(r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if req.Shots < 1 || req.Shots > h.cfg.MaxShots {
		httperr.Errs(w, r, errs.Invalidf("shots must be between 1 and %d, got %d", h.cfg.MaxShots, req.Shots))
		return
	}
	workers := h.cfg.MaxWorkers
	if req.Workers > 0 {
		workers = min(req.Workers, h.cfg.MaxWorkers)
	}
	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	start := time.Now()
	sim := unisynth.NewSimulator(seed, workers, false)
	rep, err := h.pool.Verify(ctx, strategyOr(req.Strategy), req.N, sim, req.Shots, req.Confidence)
	if err != nil {
		httperr.Log(h.cfg.Log, "verify failed", err)
		httperr.Errs(w, r, err)
		return
	}
	writeJSON(w, r, dto.VerifyResult{
		Report: rep,
		Run:    sim.LastRun(),
		UsedMs: time.Since(start).Milliseconds(),
	})
}

// Replay POST /v1/replay
func (h *VerifyHandler) Replay(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeReplayRequest(r)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	if req.Shots < 1 || req.Shots > h.cfg.MaxShots {
		httperr.Errs(w, r, errs.Invalidf("shots must be between 1 and %d, got %d", h.cfg.MaxShots, req.Shots))
		return
	}
	c, err := h.cfg.Lab.Compile(strategyOr(req.Strategy), req.N)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Timeout)
	defer cancel()

	var raw map[uint64]int
	err = h.pool.Do(ctx, func(ctx context.Context) error {
		var rerr error
		sim := unisynth.NewSimulator(1, 1, false)
		raw, rerr = sim.Replay(ctx, c.Qubits, c.Ops, unisynth.WorkerState{Shots: req.Shots, StartB64U: req.StartB64U})
		return rerr
	})
	if err != nil {
		httperr.Log(h.cfg.Log, "replay failed", err)
		httperr.Errs(w, r, err)
		return
	}
	counts := make(map[uint64]int, len(raw))
	for state, cnt := range raw {
		counts[uint64(c.Layout.Outcome(state, c.Qubits))] += cnt
	}
	writeJSON(w, r, dto.ReplayResult{Shots: req.Shots, Counts: counts})
}
