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

// Package prefix 提供「前綴計數器」：給定 N 與位元前綴，回答 [0, N) 之中有多少整數共享此前綴。
//
// 位元順序（全專案唯一的約定）：
//   - 變數 0 最先被指派，也是結果整數的最高位元 (MSB)。
//   - 長度 t 的前綴即為結果整數最高的 t 個位元。
//
// 本套件是所有合成策略的地基，不含任何副作用。
package prefix

import (
	"math/bits"
	"strings"

	"github.com/zintix-labs/unisynth/errs"
)

// MaxQubits 前綴值以 uint64 儲存，保留一位避免 lo+width 溢位
const MaxQubits = 62

// Qubits 回傳最小的 k 使得 2^k >= n（n = 1 時為 0）。
//
// n < 1 時回傳 -1，由呼叫端轉為 InvalidInput。
func Qubits(n int) int {
	if n < 1 {
		return -1
	}
	return bits.Len(uint(n - 1))
}

// Prefix 是長度 Len 的部分位元指派。
// Value 的最高位（第 Len-1 位）對應變數 0。
type Prefix struct {
	Value uint64 `json:"value" yaml:"value"`
	Len   int    `json:"len" yaml:"len"`
}

// Empty 回傳長度 0 的前綴（整棵樹的根）。
func Empty() Prefix { return Prefix{} }

// FromBits 以 0/1 序列建立前綴，bs[0] 為變數 0。
func FromBits(bs ...uint8) Prefix {
	p := Prefix{}
	for _, b := range bs {
		p = p.Append(b)
	}
	return p
}

// Append 回傳在尾端加上一個位元的新前綴（不修改原值）。
func (p Prefix) Append(b uint8) Prefix {
	return Prefix{Value: p.Value<<1 | uint64(b&1), Len: p.Len + 1}
}

// Bit 回傳變數 i 在此前綴中的值；i 必須 < Len。
func (p Prefix) Bit(i int) uint8 {
	return uint8(p.Value>>(p.Len-1-i)) & 1
}

// Bits 展開成 0/1 序列，[0] 為變數 0。
func (p Prefix) Bits() []uint8 {
	out := make([]uint8, p.Len)
	for i := range out {
		out[i] = p.Bit(i)
	}
	return out
}

// String 以 "01" 形式輸出，空前綴輸出 "ε"。
func (p Prefix) String() string {
	if p.Len == 0 {
		return "ε"
	}
	var sb strings.Builder
	sb.Grow(p.Len)
	for i := 0; i < p.Len; i++ {
		sb.WriteByte('0' + p.Bit(i))
	}
	return sb.String()
}

// Less 回傳同長度或不同長度前綴間的排序關係：先比長度，再比數值（即字典序）。
func (p Prefix) Less(o Prefix) bool {
	if p.Len != o.Len {
		return p.Len < o.Len
	}
	return p.Value < o.Value
}

// Span 是與前綴一致的連續整數區間 [Lo, Lo+Width)。
type Span struct {
	Lo    uint64
	Width uint64
}

// Hi 回傳區間的開上界。
func (s Span) Hi() uint64 { return s.Lo + s.Width }

// Counter 綁定 N 與 k = ceil(log2 N) 的前綴計數器。
type Counter struct {
	n uint64
	k int
}

// NewCounter 建立計數器；n < 1 或 k 超過 MaxQubits 時回傳 InvalidInput。
func NewCounter(n int) (Counter, error) {
	if n < 1 {
		return Counter{}, errs.Invalidf("n must be >= 1, got %d", n)
	}
	k := Qubits(n)
	if k > MaxQubits {
		return Counter{}, errs.Invalidf("n too large: needs %d qubits (max %d)", k, MaxQubits)
	}
	return Counter{n: uint64(n), k: k}, nil
}

// N 回傳目標數量。
func (c Counter) N() int { return int(c.n) }

// K 回傳決策變數數量。
func (c Counter) K() int { return c.k }

// Capacity 回傳長度 t 前綴的區間寬度 2^(k-t)。
func (c Counter) Capacity(t int) uint64 {
	return uint64(1) << (c.k - t)
}

// Span 回傳前綴對應的整數區間。
func (c Counter) Span(p Prefix) Span {
	w := c.Capacity(p.Len)
	return Span{Lo: p.Value * w, Width: w}
}

// Count 回傳 |Span(p) ∩ [0, N)|。
//
// 前綴長度超過 k 時沒有對應區間，回傳 0。
func (c Counter) Count(p Prefix) int {
	if p.Len < 0 || p.Len > c.k {
		return 0
	}
	s := c.Span(p)
	if s.Lo >= c.n {
		return 0
	}
	return int(min(c.n, s.Hi()) - s.Lo)
}

// Full 回傳前綴是否處於滿容量（count == 2^(k-t)）。
func (c Counter) Full(p Prefix) bool {
	return uint64(c.Count(p)) == c.Capacity(p.Len)
}

// FullDepth 回傳深度 t 的所有可達前綴（count > 0）是否都處於滿容量。
//
// 等價於 N 可以被 2^(k-t) 整除：此時 [0, N) 由若干個完整的區塊組成。
func (c Counter) FullDepth(t int) bool {
	if t < 0 || t > c.k {
		return false
	}
	return c.n%c.Capacity(t) == 0
}
