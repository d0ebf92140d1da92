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

// Package angle 實作角度合成器：走訪前綴樹，對每個可達前綴決定目標變數的分裂方式與旋轉角度。
//
// 分裂決策是明確的四種標籤 {NoOp, ForceZero, ForceOne, FreeRotation}，
// 不以角度 0 或 π 隱含表達，讓不同策略與測試都能直接比對標籤。
package angle

import (
	"math"

	"github.com/zintix-labs/unisynth/errs"
)

// Tolerance 角度與基準相差在此範圍內視為無操作
const Tolerance = 1e-12

// Uniform 是 50/50 分裂的旋轉角 π/2
const Uniform = math.Pi / 2

// Kind 分裂決策標籤
type Kind uint8

const (
	// NoOp：此前綴不需要任何操作（無質量，或角度等於該層基準）
	NoOp Kind = iota
	// ForceZero：質量全在 0 分支，目標維持 0
	ForceZero
	// ForceOne：質量全在 1 分支，目標必須翻轉為 1（角度 π）
	ForceOne
	// FreeRotation：兩分支皆有質量，角度 = 2·arccos(sqrt(c0/c))
	FreeRotation
)

var kindMap = map[Kind]string{
	NoOp:         "noop",
	ForceZero:    "force_zero",
	ForceOne:     "force_one",
	FreeRotation: "free",
}

func (k Kind) String() string {
	if s, ok := kindMap[k]; ok {
		return s
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Split 是一個前綴的分裂決策。
//
// Angle 是「若目標以 0 進入此分支」時應施加的完整旋轉角：
// ForceZero 為 0、ForceOne 為 π、FreeRotation 為 2·arccos(sqrt(c0/c))、NoOp 為 0。
type Split struct {
	Kind  Kind    `json:"kind"`
	Angle float64 `json:"angle"`
}

// Decide 依前綴總數 c 與 0 分支數 c0 決定分裂。
//
// 在此旋轉族下 P(0) = cos²(θ/2) = c0/c，P(1) = sin²(θ/2) = c1/c。
//
// c0 < 0、c0 > c 或 c < 0 代表計數不變式被破壞，回傳 ArithmeticDegeneracy（Fatal），不做任何修正。
func Decide(c, c0 int) (Split, error) {
	if c < 0 || c0 < 0 || c0 > c {
		return Split{}, errs.Degeneracyf("split counts inconsistent: c=%d c0=%d", c, c0)
	}
	c1 := c - c0
	switch {
	case c == 0:
		return Split{Kind: NoOp}, nil
	case c0 == 0:
		return Split{Kind: ForceOne, Angle: math.Pi}, nil
	case c1 == 0:
		return Split{Kind: ForceZero, Angle: 0}, nil
	default:
		return Split{Kind: FreeRotation, Angle: 2 * math.Acos(math.Sqrt(float64(c0)/float64(c)))}, nil
	}
}

// Chain 回傳「以機率 p 取得 1」的旋轉角 2·arcsin(sqrt(p))（單鏈策略使用的互補參數化）。
//
// p 必須落在 [0,1]，否則回傳 ArithmeticDegeneracy。
func Chain(p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, errs.Degeneracyf("chain probability out of range: %v", p)
	}
	return 2 * math.Asin(math.Sqrt(p)), nil
}

// Near 回傳兩角度是否在 Tolerance 內相等。
func Near(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}
