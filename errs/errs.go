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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤類別，描述「哪一類」問題（與嚴重度 ErrLevel 正交）
//
//   - InvalidInput：呼叫端給了不合法的參數（N < 1、shots <= 0 ...），不會進入合成。
//   - ArithmeticDegeneracy：計數不變式被破壞（c0 < 0、c0 > c），代表邏輯缺陷，一律 Fatal。
//   - Executor：執行器回報的錯誤，原樣向上傳遞，不重試。
type Kind uint8

const (
	Unknown Kind = iota
	InvalidInput
	ArithmeticDegeneracy
	Executor
)

var kindMap = map[Kind]string{
	Unknown:              "",
	InvalidInput:         "invalid_input",
	ArithmeticDegeneracy: "arithmetic_degeneracy",
	Executor:             "executor",
}

func (k Kind) String() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 為嚴重度；Kind 為錯誤類別。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != Unknown {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), e.Kind, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 讓 errors.Is(err, errs.ErrInvalidInput) 這類「以類別比對」的寫法成立。
// 只比對 Kind，訊息內容不參與比較。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok || t.Kind == Unknown {
		return false
	}
	return e.Kind == t.Kind
}

// 類別哨兵，只用於 errors.Is 比對
var (
	ErrInvalidInput         = &E{Kind: InvalidInput}
	ErrArithmeticDegeneracy = &E{Kind: ArithmeticDegeneracy}
	ErrExecutor             = &E{Kind: Executor}
)

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Invalidf 建立 InvalidInput 類別錯誤，等級固定為 Warn（請求/參數問題）。
func Invalidf(format string, a ...any) *E {
	e := NewWarn(fmt.Sprintf(format, a...))
	e.Kind = InvalidInput
	return e
}

// Degeneracyf 建立 ArithmeticDegeneracy 類別錯誤，等級固定為 Fatal。
//
// 這類錯誤代表內部不變式已被破壞，呼叫端不應嘗試修正或重試。
func Degeneracyf(format string, a ...any) *E {
	e := NewFatal(fmt.Sprintf(format, a...))
	e.Kind = ArithmeticDegeneracy
	return e
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與類別）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := Unknown
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := New(errLv, msg)
	r.Kind = kind
	r.Cause = cause
	return r
}

// WrapExecutor 包裝執行器回傳的錯誤。
//
// 執行器錯誤對核心而言是不透明的：等級沿用 cause（非 *E 則為 Fatal），類別標記為 Executor，
// cause 原樣保留，呼叫端仍可以 errors.Is 比對到原始錯誤。
func WrapExecutor(cause error, msg string) *E {
	r := Wrap(cause, msg)
	r.Kind = Executor
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，規則同 Wrap。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
