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

// Package perf 以 runtime/pprof 包裝一次執行的效能分析。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/unisynth/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// 支援的模式
const (
	ModeNone   = ""
	ModeCPU    = "cpu"
	ModeHeap   = "heap"
	ModeAllocs = "allocs"
)

// RunPProf 依 mode 執行 exe 並在 dir 寫出對應的 profile；mode 為空時只執行 exe。
//
// 回傳 exe 的錯誤優先於 profile 寫出錯誤。
//
// Usage like:
//
//	go run ./cmd/run -n 1000 -p cpu
func RunPProf(exe func() error, mode string, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case ModeNone:
		return exe()
	case ModeCPU:
		return PProfCPU(exe, dir)
	case ModeHeap:
		return snapshot(exe, dir, "heap")
	case ModeAllocs:
		return snapshot(exe, dir, "allocs")
	default:
		return errs.Invalidf("unknown pprof mode %q (want cpu|heap|allocs)", mode)
	}
}

// PProfCPU 在 exe 執行期間做 CPU profiling，輸出 dir/cpu.pprof。
// 也可拿來作為 PGO 的 default.pgo。
func PProfCPU(exe func() error, dir string) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(errs.NewFatal(err.Error()), "start cpu profile failed")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 結束後寫出一次 heap（in-use）或 allocs（累積配置）profile。
// heap 前先 GC，讓 live objects 貼近最新狀態。
func snapshot(exe func() error, dir string, name string) error {
	runErr := exe()

	f, err := create(dir, name)
	if err != nil {
		return firstErr(runErr, err)
	}
	defer f.Close()

	if name == "heap" {
		runtime.GC()
	}
	if prof := pprof.Lookup(name); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return firstErr(runErr, errs.Wrap(errs.NewFatal(err.Error()), "write "+name+" profile failed"))
		}
	}
	return runErr
}

func create(dir string, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.NewFatal(err.Error()), "create pprof dir failed")
	}
	f, err := os.Create(filepath.Join(dir, name+".pprof"))
	if err != nil {
		return nil, errs.Wrap(errs.NewFatal(err.Error()), "create "+name+".pprof failed")
	}
	return f, nil
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}
