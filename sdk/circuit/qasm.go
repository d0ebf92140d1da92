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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zintix-labs/unisynth/errs"
)

// QASMOptions 控制 OpenQASM 匯出。
//
// LittleEndian = true 時，變數 v 會映射到實體 qubit (k-1-v)。
// 多數閘模型後端以 q[0] 作為量測整數的最低位元，開啟此選項後後端讀到的整數即等於本專案的結果整數。
// 這是唯一允許進行位元順序轉換的地方。
type QASMOptions struct {
	LittleEndian bool
	Measure      bool
}

// WriteQASM 以 OpenQASM 3 輸出電路；控制位元 0 以 negctrl 表示。
func (c *Circuit) WriteQASM(w io.Writer, opt QASMOptions) error {
	if err := c.Validate(); err != nil {
		return err
	}
	phys := func(v int) int {
		if opt.LittleEndian {
			return c.Qubits - 1 - v
		}
		return v
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 3.0;\n")
	sb.WriteString("include \"stdgates.inc\";\n")
	fmt.Fprintf(&sb, "// strategy=%s n=%d layout=%s ops=%d\n", c.Strategy, c.N, c.Layout, len(c.Ops))
	if c.Qubits > 0 {
		fmt.Fprintf(&sb, "qubit[%d] q;\n", c.Qubits)
		if opt.Measure {
			fmt.Fprintf(&sb, "bit[%d] c;\n", c.Qubits)
		}
	}
	for _, op := range c.Ops {
		for _, ctl := range op.Controls {
			if ctl.Bit == 1 {
				sb.WriteString("ctrl @ ")
			} else {
				sb.WriteString("negctrl @ ")
			}
		}
		sb.WriteString("ry(")
		sb.WriteString(strconv.FormatFloat(op.Angle, 'g', 17, 64))
		sb.WriteString(") ")
		for _, ctl := range op.Controls {
			fmt.Fprintf(&sb, "q[%d], ", phys(ctl.Var))
		}
		fmt.Fprintf(&sb, "q[%d];\n", phys(op.Target))
	}
	if opt.Measure && c.Qubits > 0 {
		sb.WriteString("c = measure q;\n")
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errs.Wrap(err, "write qasm failed")
	}
	return nil
}

// QASM 是 WriteQASM 的字串版本。
func (c *Circuit) QASM(opt QASMOptions) (string, error) {
	var sb strings.Builder
	if err := c.WriteQASM(&sb, opt); err != nil {
		return "", err
	}
	return sb.String(), nil
}
