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

// Package v1 實作 /v1 下的 HTTP handler。
package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zintix-labs/unisynth/sdk/encoder"
	"github.com/zintix-labs/unisynth/server/httperr"
	"gopkg.in/yaml.v3"
)

// writeJSON 先完整編碼到記憶體再寫出，避免寫到一半才出錯
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(v); err != nil {
		httperr.Errs(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}

func writeYAML(w http.ResponseWriter, r *http.Request, v any) {
	out, err := yaml.Marshal(v)
	if err != nil {
		httperr.Errs(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func strategyOr(name string) string {
	if strings.TrimSpace(name) == "" {
		return encoder.PrefixTree
	}
	return name
}
