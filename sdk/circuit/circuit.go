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

package circuit

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/prefix"
)

// Layout 描述「量測到的基底狀態」如何對應回結果整數。
type Layout uint8

const (
	// Binary：基底狀態本身就是結果整數（變數 0 為 MSB），共 2^k 種結果。
	Binary Layout = iota
	// Thermometer：結果為從變數 0 起連續 1 的個數，共 k+1 種結果。
	Thermometer
)

var layoutMap = map[Layout]string{
	Binary:      "binary",
	Thermometer: "thermometer",
}

func (l Layout) String() string {
	if s, ok := layoutMap[l]; ok {
		return s
	}
	return "unknown"
}

func (l Layout) MarshalText() ([]byte, error) {
	if _, ok := layoutMap[l]; !ok {
		return nil, errs.Invalidf("unknown layout %d", l)
	}
	return []byte(l.String()), nil
}

func (l *Layout) UnmarshalText(b []byte) error {
	for k, v := range layoutMap {
		if v == string(b) {
			*l = k
			return nil
		}
	}
	return errs.Invalidf("unknown layout %q", string(b))
}

// Outcomes 回傳 qubits 個變數在此佈局下的結果數量。
func (l Layout) Outcomes(qubits int) int {
	if l == Thermometer {
		return qubits + 1
	}
	return 1 << qubits
}

// Outcome 把基底狀態換算為結果整數。
func (l Layout) Outcome(state uint64, qubits int) int {
	if l == Thermometer {
		n := 0
		for v := 0; v < qubits && BitOf(state, qubits, v) == 1; v++ {
			n++
		}
		return n
	}
	return int(state)
}

// Circuit 是一次合成的完整產物：目標數量、變數數、結果佈局與操作序列。
type Circuit struct {
	Strategy string   `json:"strategy" yaml:"strategy"`
	N        int      `json:"n" yaml:"n"`
	Qubits   int      `json:"qubits" yaml:"qubits"`
	Layout   Layout   `json:"layout" yaml:"layout"`
	Ops      Sequence `json:"ops" yaml:"ops"`
}

// Outcomes 回傳此電路的結果空間大小。
func (c *Circuit) Outcomes() int {
	return c.Layout.Outcomes(c.Qubits)
}

// Validate 檢查每個操作的目標與控制是否在範圍內、控制不重複且不等於目標。
func (c *Circuit) Validate() error {
	return Validate(c.Qubits, c.Ops)
}

// Validate 檢查 ops 對 qubits 個變數而言是否合法。
//
// 執行器在套用前都應呼叫此函式；錯誤為 InvalidInput。
func Validate(qubits int, ops Sequence) error {
	if qubits < 0 {
		return errs.Invalidf("qubits must be >= 0, got %d", qubits)
	}
	for i, op := range ops {
		if op.Target < 0 || op.Target >= qubits {
			return errs.Invalidf("op %d: target %d out of range [0,%d)", i, op.Target, qubits)
		}
		if math.IsNaN(op.Angle) || math.IsInf(op.Angle, 0) {
			return errs.Invalidf("op %d: angle is not finite", i)
		}
		seen := make(map[int]struct{}, len(op.Controls))
		for _, ctl := range op.Controls {
			if ctl.Var < 0 || ctl.Var >= qubits {
				return errs.Invalidf("op %d: control %d out of range [0,%d)", i, ctl.Var, qubits)
			}
			if ctl.Var == op.Target {
				return errs.Invalidf("op %d: control equals target %d", i, op.Target)
			}
			if ctl.Bit > 1 {
				return errs.Invalidf("op %d: control bit must be 0 or 1, got %d", i, ctl.Bit)
			}
			if _, dup := seen[ctl.Var]; dup {
				return errs.Invalidf("op %d: duplicate control %d", i, ctl.Var)
			}
			seen[ctl.Var] = struct{}{}
		}
	}
	return nil
}

// Fingerprint 回傳序列的穩定 64-bit 指紋（xxhash）。
//
// 角度以 IEEE-754 bits 參與雜湊，因此兩個序列指紋相同即代表逐位元相同（不考慮碰撞）。
func (s Sequence) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	put(uint64(len(s)))
	for _, op := range s {
		put(uint64(op.Target))
		put(math.Float64bits(op.Angle))
		put(uint64(len(op.Controls)))
		for _, c := range op.Controls {
			put(uint64(c.Var)<<1 | uint64(c.Bit))
		}
	}
	return d.Sum64()
}

// FingerprintHex 以 16 位十六進位輸出指紋，用於 ETag / 報表。
func (s Sequence) FingerprintHex() string {
	return fmt.Sprintf("%016x", s.Fingerprint())
}

// =========================================================
// Emitter
// =========================================================

// Emitter 把 (前綴, 角度) 轉為 Operation 並依序附加。
//
// 合約：
//   - 控制列表 = [(i, p[i]) for i < len(p)]，目標 = len(p)。
//   - 附加順序必須是目標非遞減；違反時回傳 Fatal（代表上游走訪順序有缺陷）。
type Emitter struct {
	qubits int
	ops    Sequence
}

// NewEmitter 建立 qubits 個變數的 Emitter。
func NewEmitter(qubits int) *Emitter {
	return &Emitter{qubits: qubits, ops: make(Sequence, 0, 2*qubits)}
}

// Conditional 發出以前綴 p 為條件、目標為 len(p) 的旋轉。p 為空時等同無條件旋轉。
func (e *Emitter) Conditional(p prefix.Prefix, angle float64) error {
	ctl := make([]Control, p.Len)
	for i := range ctl {
		ctl[i] = Control{Var: i, Bit: p.Bit(i)}
	}
	if p.Len == 0 {
		ctl = nil
	}
	return e.Append(Operation{Controls: ctl, Target: p.Len, Angle: angle})
}

// Baseline 發出目標為 target 的無條件旋轉。
func (e *Emitter) Baseline(target int, angle float64) error {
	return e.Append(Operation{Target: target, Angle: angle})
}

// Append 附加任意操作（會複製控制列表），並檢查目標順序與範圍。
func (e *Emitter) Append(op Operation) error {
	if op.Target < 0 || op.Target >= e.qubits {
		return errs.Fatalf("emit: target %d out of range [0,%d)", op.Target, e.qubits)
	}
	if n := len(e.ops); n > 0 && e.ops[n-1].Target > op.Target {
		return errs.Fatalf("emit: target %d after %d breaks depth order", op.Target, e.ops[n-1].Target)
	}
	e.ops = append(e.ops, op.Clone())
	return nil
}

// Len 回傳目前已發出的操作數。
func (e *Emitter) Len() int { return len(e.ops) }

// Sequence 回傳已發出序列的拷貝；Emitter 之後仍可繼續使用。
func (e *Emitter) Sequence() Sequence {
	out := e.ops.Clone()
	if out == nil {
		out = Sequence{}
	}
	return out
}
