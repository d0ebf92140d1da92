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

// ops 是開發用的任務腳本（取代 Makefile）。
//
//	go run ./scripts test     # go test ./... -cover，只顯示 ok/FAIL
//	go run ./scripts race     # go test -race ./...
//	go run ./scripts sweep    # 每個策略對 N=1..32 跑 cmd/run 驗證
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ANSI 顏色代碼
const (
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"
)

var strategies = []string{"prefix", "complement", "partition", "unary"}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts [test|race|sweep]")
		os.Exit(1)
	}
	var err error
	switch task := os.Args[1]; task {
	case "test":
		_ = exec.Command("go", "clean", "-testcache").Run()
		err = filtered("go", "test", "./...", "-cover", "-count=1")
	case "race":
		err = filtered("go", "test", "-race", "-count=1", "./...")
	case "sweep":
		err = sweep(32)
	default:
		printColor(colorYellow, "Unknown task: "+task)
		os.Exit(1)
	}
	if err != nil {
		printColor(colorRed, "\nFinished with errors: "+err.Error())
		os.Exit(1)
	}
}

func printColor(color string, msg string) {
	fmt.Printf("%s%s%s\n", color, msg, colorReset)
}

// filtered 執行指令，只印出 ok / FAIL 與編譯失敗的行（等同 `2>&1 | grep -E '^(ok|FAIL)'`）
func filtered(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			printColor(colorGreen, line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			printColor(colorRed, line)
		}
	}
	return cmd.Wait()
}

// sweep 以固定 seed 逐一驗證，unary 只跑到 20（變數數 = N-1）
func sweep(maxN int) error {
	failed := 0
	for _, s := range strategies {
		for n := 1; n <= maxN; n++ {
			if s == "unary" && n > 20 {
				break
			}
			cmd := exec.Command("go", "run", "./cmd/run",
				"-n", strconv.Itoa(n), "-strategy", s, "-shots", "20000",
				"-seed", "1", "-format", "json", "-progress=false", "-log", "silence")
			if out, err := cmd.CombinedOutput(); err != nil {
				failed++
				printColor(colorRed, fmt.Sprintf("FAIL %-10s N=%-3d %s", s, n, strings.TrimSpace(lastLine(out))))
				continue
			}
			printColor(colorGreen, fmt.Sprintf("ok   %-10s N=%d", s, n))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d sweep runs failed", failed)
	}
	return nil
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	return lines[len(lines)-1]
}
