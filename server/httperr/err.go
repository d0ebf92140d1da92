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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/unisynth/dto"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/server/netsvr/middleware"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（依序判斷，先命中先回）：
//   - ctx timeout/cancel     → 504/408
//   - Kind=InvalidInput      → 400
//   - Kind=Executor          → 502（後端取樣失敗）
//   - Kind=ArithmeticDegeneracy → 500
//   - 其餘依 ErrLv：Warn → 400、Fatal → 500
//
// 本函數屬於 HTTP 邊界層，核心的 errs 不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrExecutor):
		return http.StatusBadGateway
	case errors.Is(err, errs.ErrArithmeticDegeneracy):
		return http.StatusInternalServerError
	}

	if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// kindOf 取最外層帶 Kind 的錯誤類別
func kindOf(err error) string {
	for err != nil {
		if e, ok := err.(*errs.E); ok && e.Kind != errs.Unknown {
			return e.Kind.String()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// Errs 以 JSON 寫回錯誤（dto.ErrorBody）。
func Errs(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	body := dto.ErrorBody{
		Error:  err.Error(),
		Kind:   kindOf(err),
		Status: status,
	}
	if r != nil {
		body.RequestID = middleware.GetReqId(r)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄伺服器端關心的錯誤：5xx 記 Error，408/409/429 記 Warn，其餘 4xx 交給 access log。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500 && status < 600:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
