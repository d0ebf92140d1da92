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

package dto

import (
	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/stats"
)

// CircuitResult GET /v1/encode 的回應
type CircuitResult struct {
	Fingerprint   string           `json:"fingerprint"`
	Ops           int              `json:"ops"`
	Unconditional int              `json:"unconditional"`
	MaxControls   int              `json:"max_controls"`
	Circuit       *circuit.Circuit `json:"circuit"`
}

func NewCircuitResult(c *circuit.Circuit) CircuitResult {
	ops, unc, maxCtl := c.Ops.Stats()
	return CircuitResult{
		Fingerprint:   c.Ops.FingerprintHex(),
		Ops:           ops,
		Unconditional: unc,
		MaxControls:   maxCtl,
		Circuit:       c,
	}
}

// VerifyResult GET|POST /v1/verify 的回應
type VerifyResult struct {
	Report *stats.Report      `json:"report"`
	Run    *unisynth.RunState `json:"run,omitempty"`
	UsedMs int64              `json:"used_ms"`
}

// ReplayResult POST /v1/replay 的回應；counts 以結果整數為 key
type ReplayResult struct {
	Shots  int            `json:"shots"`
	Counts map[uint64]int `json:"counts"`
}

// StrategiesResult GET /v1/strategies 的回應
type StrategiesResult struct {
	Strategies []string `json:"strategies"`
	Default    string   `json:"default"`
}

// ErrorBody 錯誤回應
type ErrorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}
