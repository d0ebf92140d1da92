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

// Package dto 定義 HTTP 邊界的請求解碼與回應結構。
//
// 只做解碼與型別轉換；策略是否存在、N 是否合法等由 Lab 判斷。
package dto

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/unisynth/errs"
)

// MaxBody POST body 上限
const MaxBody = 1 << 20

// EncodeRequest GET /v1/encode
type EncodeRequest struct {
	N        int    `json:"n"`
	Strategy string `json:"strategy"`
	Format   string `json:"format"` // json（預設）或 yaml
}

// QASMRequest GET /v1/qasm
type QASMRequest struct {
	N            int    `json:"n"`
	Strategy     string `json:"strategy"`
	LittleEndian bool   `json:"le"`
	Measure      bool   `json:"measure"`
}

// VerifyRequest GET|POST /v1/verify
//
// Seed 缺省時由伺服器隨機產生，回應的 run.seed 可用來重現。
type VerifyRequest struct {
	N          int     `json:"n"`
	Strategy   string  `json:"strategy"`
	Shots      int     `json:"shots"`
	Workers    int     `json:"workers"`
	Seed       *int64  `json:"seed,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// ReplayRequest POST /v1/replay
//
// start_b64u 與 shots 取自 verify 回應中某個 worker 的 run 紀錄，
// 回傳該 worker 當時的觀測次數。
type ReplayRequest struct {
	N         int    `json:"n"`
	Strategy  string `json:"strategy"`
	Shots     int    `json:"shots"`
	StartB64U string `json:"start_b64u"`
}

func DecodeEncodeRequest(r *http.Request) (*EncodeRequest, error) {
	req := new(EncodeRequest)
	err := decode(r, req, func(q url.Values) error {
		req.Strategy = q.Get("strategy")
		req.Format = q.Get("format")
		return queryInt(q, "n", &req.N)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func DecodeQASMRequest(r *http.Request) (*QASMRequest, error) {
	req := new(QASMRequest)
	err := decode(r, req, func(q url.Values) error {
		req.Strategy = q.Get("strategy")
		if err := queryInt(q, "n", &req.N); err != nil {
			return err
		}
		if err := queryBool(q, "le", &req.LittleEndian); err != nil {
			return err
		}
		return queryBool(q, "measure", &req.Measure)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeVerifyRequest 解碼驗證請求。
//
// GET 從 query string 讀取（n/strategy/shots/workers/seed/confidence），
// POST 從 JSON body 讀取並拒絕未知欄位。
func DecodeVerifyRequest(r *http.Request) (*VerifyRequest, error) {
	req := new(VerifyRequest)
	err := decode(r, req, func(q url.Values) error {
		req.Strategy = q.Get("strategy")
		if err := queryInt(q, "n", &req.N); err != nil {
			return err
		}
		if err := queryInt(q, "shots", &req.Shots); err != nil {
			return err
		}
		if err := queryInt(q, "workers", &req.Workers); err != nil {
			return err
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return errs.Invalidf("invalid seed: %v", err)
			}
			req.Seed = &v
		}
		if s := q.Get("confidence"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return errs.Invalidf("invalid confidence: %v", err)
			}
			req.Confidence = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeReplayRequest 只接受 POST
func DecodeReplayRequest(r *http.Request) (*ReplayRequest, error) {
	if r != nil && r.Method != http.MethodPost {
		return nil, errs.Invalidf("method not allowed: %s", r.Method)
	}
	req := new(ReplayRequest)
	if err := decode(r, req, nil); err != nil {
		return nil, err
	}
	if req.StartB64U == "" {
		return nil, errs.Invalidf("start_b64u is required")
	}
	return req, nil
}

// decode GET 走 fromQuery，POST 以嚴格 JSON 解到 dst。
func decode(r *http.Request, dst any, fromQuery func(url.Values) error) error {
	if r == nil {
		return errs.Invalidf("nil request")
	}
	switch r.Method {
	case http.MethodGet:
		if fromQuery == nil {
			return errs.Invalidf("method not allowed: %s", r.Method)
		}
		return fromQuery(r.URL.Query())
	case http.MethodPost:
		dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return errs.Invalidf("invalid json: %v", err)
		}
		return nil
	default:
		return errs.Invalidf("method not allowed: %s", r.Method)
	}
}

func queryInt(q url.Values, key string, dst *int) error {
	s := q.Get(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return errs.Invalidf("invalid %s: %v", key, err)
	}
	*dst = v
	return nil
}

func queryBool(q url.Values, key string, dst *bool) error {
	s := q.Get(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return errs.Invalidf("invalid %s: %v", key, err)
	}
	*dst = v
	return nil
}
