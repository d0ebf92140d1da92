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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/logger"
	"github.com/zintix-labs/unisynth/sdk/circuit"
	"github.com/zintix-labs/unisynth/setting"
	"github.com/zintix-labs/unisynth/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

// config 是 flag 的暫存；只有明確給定的 flag 會覆寫設定檔
type config struct {
	path      string
	n         int
	strategy  string
	shots     int
	worker    int
	seed      int64
	format    string
	qasm      bool
	le        bool
	progress  bool
	logMode   string
	pprofmode string
}

func bindVar(args []string) (*setting.RunSetting, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&cfg.path, "config", "", "setting file (.yaml/.yml/.json)")
	fs.IntVar(&cfg.n, "n", 0, "number of outcomes N")
	fs.StringVar(&cfg.strategy, "strategy", "", "prefix|complement|partition|unary")
	fs.IntVar(&cfg.shots, "shots", 0, "number of samples")
	fs.IntVar(&cfg.worker, "worker", 0, "number of workers")
	fs.Int64Var(&cfg.seed, "seed", 0, "int64 seed (0 = random)")
	fs.StringVar(&cfg.format, "format", "", "report format: table|json|yaml")
	fs.BoolVar(&cfg.qasm, "qasm", false, "print OpenQASM 3 before verification")
	fs.BoolVar(&cfg.le, "le", false, "little-endian qubit mapping for -qasm")
	fs.BoolVar(&cfg.progress, "progress", true, "show progress bar")
	fs.StringVar(&cfg.logMode, "log", "", "log mode: dev|prod|silence")
	fs.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rs := setting.Default()
	if cfg.path != "" {
		loaded, err := setting.Load(cfg.path)
		if err != nil {
			return nil, err
		}
		rs = loaded
	}

	// 設定檔 < flag
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			rs.N = cfg.n
		case "strategy":
			rs.Strategy = cfg.strategy
		case "shots":
			rs.Shots = cfg.shots
		case "worker":
			rs.Workers = cfg.worker
		case "seed":
			rs.Seed = cfg.seed
		case "format":
			rs.Format = cfg.format
		case "qasm":
			rs.QASM = cfg.qasm
		case "le":
			rs.LittleEndian = cfg.le
		case "progress":
			rs.Progress = cfg.progress
		case "log":
			rs.LogMode = cfg.logMode
		}
	})
	if cfg.path == "" && !flagSet(fs, "progress") {
		rs.Progress = true
	}

	if err := rs.Init(); err != nil {
		return nil, err
	}
	if rs.N < 1 {
		return nil, errs.Invalidf("n is required (-n or n: in -config)")
	}
	return rs, nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// execute 合成、（選擇性）輸出 QASM、取樣驗證並輸出報表。
// 均勻性檢定未通過（p < alpha 或有洩漏）時回傳錯誤，讓 exit code 非 0。
func execute(rs *setting.RunSetting, out io.Writer) error {
	log := logger.NewDefaultLogger(rs.Mode())
	lab, err := unisynth.New(unisynth.WithLogger(log))
	if err != nil {
		return err
	}
	c, err := lab.Compile(rs.Strategy, rs.N)
	if err != nil {
		return err
	}

	if rs.Format == setting.FormatTable {
		printHeader(out, rs, c)
	}
	if rs.QASM {
		if err := c.WriteQASM(out, circuit.QASMOptions{LittleEndian: rs.LittleEndian, Measure: true}); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := unisynth.NewSimulator(rs.Seed, rs.Workers, rs.Progress && rs.Format == setting.FormatTable)
	rep, err := lab.Verify(ctx, rs.Strategy, rs.N, sim, rs.Shots, rs.Confidence)
	if err != nil {
		return err
	}

	switch rs.Format {
	case setting.FormatJSON:
		err = rep.WriteWith(out, &stats.JsonRender{})
	case setting.FormatYAML:
		err = rep.WriteWith(out, &stats.YAMLRender{})
	default:
		err = rep.WriteTable(out, sim.LastRun().Used)
	}
	if err != nil {
		return err
	}

	if !rep.Passed(rs.Alpha) {
		return errs.NewWarn(fmt.Sprintf("uniformity check failed: p=%.3g leak=%d alpha=%g", rep.Summary.PValue, rep.Summary.Leak, rs.Alpha))
	}
	return nil
}

func printHeader(out io.Writer, rs *setting.RunSetting, c *circuit.Circuit) {
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	ops, unc, maxCtl := c.Ops.Stats()
	p.Fprintf(out, "%s[STRATEGY:%s] [N:%d] [QUBITS:%d] [OPS:%d UNCOND:%d MAXCTL:%d] [SHOTS:%d] [WORKERS:%d]%s\n",
		green, c.Strategy, c.N, c.Qubits, ops, unc, maxCtl, rs.Shots, rs.Workers, reset)
}
