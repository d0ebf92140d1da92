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

// Package circuit 定義合成結果的資料模型：Operation / Sequence / Circuit，
// 以及把「前綴 + 角度」轉為受控旋轉的 Emitter。
//
// Operation 是值物件：一經發出即不再修改，也不持有任何回指。
package circuit

import (
	"fmt"
	"math"
	"strings"
)

// Control 是單一控制條件：變數 Var 必須等於 Bit 時，操作才會作用。
type Control struct {
	Var int   `json:"var" yaml:"var"`
	Bit uint8 `json:"bit" yaml:"bit"`
}

// Operation 是受控旋轉：當所有 Controls 成立時，對 Target 施加角度 Angle（弧度）。
// Controls 為空代表無條件旋轉。
type Operation struct {
	Controls []Control `json:"controls" yaml:"controls,flow"`
	Target   int       `json:"target" yaml:"target"`
	Angle    float64   `json:"angle" yaml:"angle"`
}

// Unconditional 回傳此操作是否不帶任何控制條件。
func (op Operation) Unconditional() bool { return len(op.Controls) == 0 }

// Clone 深拷貝，避免呼叫端透過共享的 Controls 修改已發出的操作。
func (op Operation) Clone() Operation {
	out := op
	if op.Controls != nil {
		out.Controls = make([]Control, len(op.Controls))
		copy(out.Controls, op.Controls)
	}
	return out
}

// Satisfied 回傳在給定的基底狀態下，控制條件是否全部成立。
func (op Operation) Satisfied(state uint64, qubits int) bool {
	for _, c := range op.Controls {
		if BitOf(state, qubits, c.Var) != c.Bit {
			return false
		}
	}
	return true
}

// String 例如 "ry(1.5708) q2 | q0=1 q1=0"
func (op Operation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ry(%.6f) q%d", op.Angle, op.Target)
	if len(op.Controls) > 0 {
		sb.WriteString(" |")
		for _, c := range op.Controls {
			fmt.Fprintf(&sb, " q%d=%d", c.Var, c.Bit)
		}
	}
	return sb.String()
}

// Sequence 是有序的操作列表。順序有意義：後面的操作依賴前面已放好的振幅。
type Sequence []Operation

// Clone 深拷貝整個序列。
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	for i, op := range s {
		out[i] = op.Clone()
	}
	return out
}

// Ordered 回傳序列是否依 Target 非遞減排列（變數 t 的操作全部早於變數 t+1）。
func (s Sequence) Ordered() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Target < s[i-1].Target {
			return false
		}
	}
	return true
}

// Equal 逐位元比較兩個序列（角度以 float64 bits 比較，不容許誤差）。
func (s Sequence) Equal(o Sequence) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		a, b := s[i], o[i]
		if a.Target != b.Target || math.Float64bits(a.Angle) != math.Float64bits(b.Angle) {
			return false
		}
		if len(a.Controls) != len(b.Controls) {
			return false
		}
		for j := range a.Controls {
			if a.Controls[j] != b.Controls[j] {
				return false
			}
		}
	}
	return true
}

// Stats 回傳操作數、無條件操作數與最大控制數，供報表使用。
func (s Sequence) Stats() (ops int, unconditional int, maxControls int) {
	for _, op := range s {
		if op.Unconditional() {
			unconditional++
		}
		maxControls = max(maxControls, len(op.Controls))
	}
	return len(s), unconditional, maxControls
}

// BitOf 回傳基底狀態 state 中變數 v 的位元值。
//
// 這是位元順序唯一的換算點：變數 0 = 結果整數的最高位元。
// 任何執行器轉接層（例如 little-endian 的閘模型後端）都應該在邊界處自行轉換，而不是在合成邏輯中。
func BitOf(state uint64, qubits int, v int) uint8 {
	return uint8(state>>(qubits-1-v)) & 1
}

// Mask 回傳變數 v 在基底狀態整數中的位元遮罩。
func Mask(qubits int, v int) uint64 {
	return uint64(1) << (qubits - 1 - v)
}
