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

package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// MaxListed 逐結果明細的上限；N 更大時只輸出摘要
const MaxListed = 1024

// DefaultConfidence 信賴區間預設信心水準
const DefaultConfidence = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// Report 取樣驗證報告
type Report struct {
	Summary  *Summary  `json:"Summary" yaml:"Summary"`
	Outcomes []Outcome `json:"Outcomes,omitempty" yaml:"Outcomes,omitempty"`
	Leaked   []Outcome `json:"Leaked,omitempty" yaml:"Leaked,omitempty"`
	counts   map[uint64]int
	isDone   bool
}

// Summary 報告摘要。前半段由呼叫端填入電路資訊，後半段由 Done 計算。
type Summary struct {
	Strategy    string `json:"Strategy" yaml:"Strategy"`
	N           int    `json:"N" yaml:"N"`
	Qubits      int    `json:"Qubits" yaml:"Qubits"`
	Ops         int    `json:"Ops" yaml:"Ops"`
	Fingerprint string `json:"Fingerprint" yaml:"Fingerprint"`
	Seed        int64  `json:"Seed" yaml:"Seed"`

	Shots        int     `json:"Shots" yaml:"Shots"`
	Observed     int     `json:"Observed" yaml:"Observed"`
	Leak         int     `json:"Leak" yaml:"Leak"`
	LeakRate     float64 `json:"LeakRate" yaml:"LeakRate"`
	ChiSquare    float64 `json:"ChiSquare" yaml:"ChiSquare"`
	DoF          int     `json:"DoF" yaml:"DoF"`
	PValue       float64 `json:"PValue" yaml:"PValue"`
	TVDistance   float64 `json:"TVDistance" yaml:"TVDistance"`
	MaxDeviation float64 `json:"MaxDeviation" yaml:"MaxDeviation"`
	Confidence   float64 `json:"Confidence" yaml:"Confidence"`
}

// Outcome 單一結果的觀測次數與頻率區間
type Outcome struct {
	Value    uint64  `json:"Value" yaml:"Value"`
	Count    int     `json:"Count" yaml:"Count"`
	Freq     float64 `json:"Freq" yaml:"Freq"`
	Expected float64 `json:"Expected" yaml:"Expected"`
	CI       CI      `json:"CI" yaml:"CI"`
}

// NewReport 以摘要（電路資訊）與觀測次數建立報告，需呼叫 Done 才會計算統計量。
func NewReport(sum Summary, counts map[uint64]int) *Report {
	if sum.Confidence <= 0 || sum.Confidence >= 1 {
		sum.Confidence = DefaultConfidence
	}
	return &Report{Summary: &sum, counts: counts}
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 一次性計算所有統計量；重複呼叫無作用。
func (r *Report) Done() {
	if r.isDone {
		return
	}
	s := r.Summary
	n := s.N
	s.Shots, s.Leak, s.Observed = 0, 0, 0
	for v, c := range r.counts {
		s.Shots += c
		if v >= uint64(n) {
			s.Leak += c
		}
		if c > 0 {
			s.Observed++
		}
	}
	if s.Shots > 0 {
		s.LeakRate = float64(s.Leak) / float64(s.Shots)
	}
	s.ChiSquare, s.DoF, s.PValue = chiSquareUniform(r.counts, n, s.Shots)
	s.TVDistance, s.MaxDeviation = deviationUniform(r.counts, n, s.Shots)

	if n <= MaxListed {
		r.Outcomes = make([]Outcome, n)
		for i := 0; i < n; i++ {
			r.Outcomes[i] = r.outcome(uint64(i), 1/float64(n))
		}
	}
	r.Leaked = r.Leaked[:0]
	for v := range r.counts {
		if v >= uint64(n) {
			r.Leaked = append(r.Leaked, r.outcome(v, 0))
		}
	}
	sortOutcomes(r.Leaked)
	r.isDone = true
}

// Passed 回傳是否沒有洩漏且卡方檢定 p 值不小於 alpha。
func (r *Report) Passed(alpha float64) bool {
	r.Done()
	return r.Summary.Leak == 0 && r.Summary.PValue >= alpha
}

// Count 回傳結果 v 的觀測次數
func (r *Report) Count(v uint64) int {
	return r.counts[v]
}

func (r *Report) WriteWith(w io.Writer, rep Render) error {
	r.Done()
	return rep.Write(w, r)
}

// WriteTable 輸出耗時與摘要表；N <= 16 時附上逐結果明細。
func (r *Report) WriteTable(w io.Writer, ut time.Duration) error {
	r.Done()
	if err := formatDuration(w, ut, r.Summary.Shots); err != nil {
		return err
	}
	sk, sm := r.fmtBasic()
	if _, err := fmt.Fprintln(w, fmtTable(fmt.Sprintf("%s N=%d", r.Summary.Strategy, r.Summary.N), sk, sm)); err != nil {
		return err
	}
	if r.Summary.N <= 16 && len(r.Outcomes) > 0 {
		ok, om := r.fmtOutcomes()
		if _, err := fmt.Fprintln(w, fmtTable("Outcomes", ok, om)); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (r *Report) outcome(v uint64, expected float64) Outcome {
	c := r.counts[v]
	hat, ci := proportionCICP(c, r.Summary.Shots, r.Summary.Confidence)
	return Outcome{Value: v, Count: c, Freq: hat, Expected: expected, CI: ci}
}

func formatDuration(w io.Writer, d time.Duration, shots int) error {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(shots) / sec)
	var err error
	switch {
	case sec < 60.0:
		_, err = p.Fprintf(w, "used: %.2f seconds\nsps : %d shots/sec\n", sec, sps)
	case d < time.Hour:
		_, err = p.Fprintf(w, "used: %dm %ds\nsps : %d shots/sec\n", int(d.Minutes())%60, int(d.Seconds())%60, sps)
	default:
		_, err = p.Fprintf(w, "used: %dh:%dm:%ds\nsps : %d shots/sec\n", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60, sps)
	}
	return err
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	conf := p.Sprintf("%.0f%%", 100*s.Confidence)
	basic := map[string]string{
		"Strategy":    s.Strategy,
		"N":           p.Sprintf("%d", s.N),
		"Qubits":      p.Sprintf("%d", s.Qubits),
		"Ops":         p.Sprintf("%d", s.Ops),
		"Fingerprint": s.Fingerprint,
		"Seed":        fmt.Sprintf("%d", s.Seed),
		"Shots":       p.Sprintf("%d", s.Shots),
		"Observed":    p.Sprintf("%d / %d", s.Observed, s.N),
		"Leak":        p.Sprintf("%d (%.4f%%)", s.Leak, 100*s.LeakRate),
		"Chi-Square":  p.Sprintf("%.3f (dof %d)", s.ChiSquare, s.DoF),
		"P-Value":     p.Sprintf("%.4f", s.PValue),
		"TV Distance": p.Sprintf("%.5f", s.TVDistance),
		"Max Dev":     p.Sprintf("%.5f", s.MaxDeviation),
		"Confidence":  conf,
	}
	keys := []string{"Strategy", "N", "Qubits", "Ops", "Fingerprint", "Seed", "Shots", "Observed", "Leak", "Chi-Square", "P-Value", "TV Distance", "Max Dev", "Confidence"}
	return keys, basic
}

func (r *Report) fmtOutcomes() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(r.Outcomes))
	msg := make(map[string]string, len(r.Outcomes))
	for _, o := range r.Outcomes {
		k := fmt.Sprintf("%d", o.Value)
		keys = append(keys, k)
		msg[k] = p.Sprintf("%d  %.4f [%.4f, %.4f]", o.Count, o.Freq, o.CI.Lo, o.CI.Hi)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2
	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

