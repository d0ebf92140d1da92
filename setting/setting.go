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

// Package setting 載入並驗證執行設定（YAML / JSON）。
package setting

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/logger"
	"github.com/zintix-labs/unisynth/sdk/encoder"
	"gopkg.in/yaml.v3"
)

// MaxShots 單次驗證的取樣上限
const MaxShots = 1 << 34

// 報表輸出格式
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// RunSetting 一次合成 + 驗證所需的全部設定。
//
// Seed 為 0 時由呼叫端自行產生（例如以時間為種子），產生後回寫以便重現。
type RunSetting struct {
	N            int     `yaml:"n"             json:"n"`
	Strategy     string  `yaml:"strategy"      json:"strategy"`
	Shots        int     `yaml:"shots"         json:"shots"`
	Workers      int     `yaml:"workers"       json:"workers"`
	Seed         int64   `yaml:"seed"          json:"seed"`
	Format       string  `yaml:"format"        json:"format"`
	QASM         bool    `yaml:"qasm"          json:"qasm"`
	LittleEndian bool    `yaml:"little_endian" json:"little_endian"`
	Progress     bool    `yaml:"progress"      json:"progress"`
	LogMode      string  `yaml:"log_mode"      json:"log_mode"`
	Confidence   float64 `yaml:"confidence"    json:"confidence"`
	Alpha        float64 `yaml:"alpha"         json:"alpha"`
}

// Default 回傳填好預設值的設定（N 仍需由呼叫端給定）。
func Default() *RunSetting {
	rs := &RunSetting{}
	rs.defaults()
	return rs
}

// Load 依副檔名（.yaml/.yml/.json）載入設定檔。
func Load(path string) (*RunSetting, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(err, "setting: read "+path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(bytes.NewReader(bs))
	case ".json":
		return DecodeJSON(bytes.NewReader(bs))
	default:
		return nil, errs.Invalidf("setting: unsupported file type %q", filepath.Ext(path))
	}
}

// DecodeYAML 嚴格解碼：多寫/拼錯欄位就報錯
func DecodeYAML(r io.Reader) (*RunSetting, error) {
	rs := &RunSetting{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(rs); err != nil && err != io.EOF {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "setting: decode yaml failed")
	}
	if err := rs.Init(); err != nil {
		return nil, err
	}
	return rs, nil
}

// DecodeJSON 嚴格解碼：未知欄位直接拒絕
func DecodeJSON(r io.Reader) (*RunSetting, error) {
	rs := &RunSetting{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(rs); err != nil && err != io.EOF {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "setting: decode json failed")
	}
	if err := rs.Init(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Init 補上預設值並驗證；flag 覆寫後應再呼叫一次。
func (rs *RunSetting) Init() error {
	rs.defaults()
	return rs.valid()
}

// Mode 回傳解析後的 LogMode
func (rs *RunSetting) Mode() logger.LogMode {
	m, _ := logger.ParseLogMode(rs.LogMode)
	return m
}

func (rs *RunSetting) defaults() {
	if rs.Strategy == "" {
		rs.Strategy = encoder.PrefixTree
	}
	rs.Strategy = strings.ToLower(strings.TrimSpace(rs.Strategy))
	if rs.Shots == 0 {
		rs.Shots = 100_000
	}
	if rs.Workers == 0 {
		rs.Workers = runtime.NumCPU()
	}
	if rs.Format == "" {
		rs.Format = FormatTable
	}
	rs.Format = strings.ToLower(rs.Format)
	if rs.Confidence == 0 {
		rs.Confidence = 0.95
	}
	if rs.Alpha == 0 {
		rs.Alpha = 0.001
	}
}

func (rs *RunSetting) valid() error {
	// N == 0 允許：代表由 flag 稍後提供
	if rs.N < 0 || rs.N > encoder.MaxN {
		return errs.Invalidf("setting: n must be in [1,%d], got %d", encoder.MaxN, rs.N)
	}
	if _, ok := encoder.Default().Get(rs.Strategy); !ok {
		return errs.Invalidf("setting: unknown strategy %q", rs.Strategy)
	}
	if rs.Shots < 1 || rs.Shots > MaxShots {
		return errs.Invalidf("setting: shots must be in [1,%d], got %d", MaxShots, rs.Shots)
	}
	if rs.Workers < 1 {
		return errs.Invalidf("setting: workers must be >= 1, got %d", rs.Workers)
	}
	switch rs.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return errs.Invalidf("setting: unknown format %q", rs.Format)
	}
	if _, err := logger.ParseLogMode(rs.LogMode); err != nil {
		return err
	}
	if rs.Confidence <= 0 || rs.Confidence >= 1 {
		return errs.Invalidf("setting: confidence must be in (0,1), got %v", rs.Confidence)
	}
	if rs.Alpha <= 0 || rs.Alpha >= 1 {
		return errs.Invalidf("setting: alpha must be in (0,1), got %v", rs.Alpha)
	}
	return nil
}
