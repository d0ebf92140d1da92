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

// Package unisynth 把「0..N-1 上的均勻分佈」編譯為受控旋轉序列，並提供驗證入口。
//
// 組成：
//   - sdk/prefix：前綴計數（每個前綴底下有多少個 < N 的結果）。
//   - sdk/angle：分裂決策與逐層指令（基準 π/2 或條件旋轉）。
//   - sdk/circuit：Operation / Sequence / Emitter，以及 OpenQASM 匯出。
//   - sdk/encoder：策略（prefix / complement / partition / unary）與 Registry。
//   - sdk/statevec：理想振幅執行器；Simulator 以其機率做抽樣。
//
// 位元順序：變數 0 = 結果整數的最高位元，換算點只有 circuit.BitOf。
//
// 典型用法：
//
//	ops, _ := unisynth.Encode(7)
//	lab, _ := unisynth.New()
//	rep, _ := lab.Verify(ctx, "prefix", 7, unisynth.NewSimulator(42, 4, false), 100_000, 0.95)
package unisynth

import (
	"context"

	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/sdk/encoder"
)

// Executor 執行操作序列並回傳每個基底狀態（結果整數）的觀測次數，次數總和必須等於 shots。
//
// 對合成核心而言執行器是不透明的：錯誤原樣向上傳遞（包裝為 errs.Executor 類別），不重試。
type Executor interface {
	Execute(ctx context.Context, qubits int, ops circuit.Sequence, shots int) (map[uint64]int, error)
}

// Encode 以前綴樹策略合成 N 的操作序列。N = 1 回傳空序列；N < 1 為 InvalidInput。
func Encode(n int) (circuit.Sequence, error) {
	c, err := encoder.NewPrefixTree().Encode(n)
	if err != nil {
		return nil, err
	}
	return c.Ops, nil
}

// EncodeUnary 以單鏈策略合成（N-1 個變數，結果為前導 1 的個數）。
func EncodeUnary(n int) (circuit.Sequence, error) {
	c, err := encoder.NewUnaryChain().Encode(n)
	if err != nil {
		return nil, err
	}
	return c.Ops, nil
}
