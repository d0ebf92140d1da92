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
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/logger"
	"github.com/zintix-labs/unisynth/server"
	"github.com/zintix-labs/unisynth/server/svrcfg"
)

func main() {
	sCfg, closeLog, err := loadConfigFromFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closeLog()
	if err := server.Run(sCfg); err != nil {
		closeLog()
		os.Exit(1)
	}
}

type config struct {
	Addr       string
	LogMode    string
	MaxShots   int
	MaxWorkers int
	Inflight   int
	Timeout    time.Duration
}

// loadConfigFromFlags 以 flag 組出 SvrCfg；回傳的 close 會排空非同步 logger。
func loadConfigFromFlags(args []string) (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	fs := flag.NewFlagSet("svr", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	fs.StringVar(&cfg.LogMode, "log", "dev", "log mode: dev|prod|silence")
	fs.IntVar(&cfg.MaxShots, "max-shots", svrcfg.DefaultMaxShots, "max shots per verify request")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", svrcfg.DefaultMaxWorkers, "max workers per verify request")
	fs.IntVar(&cfg.Inflight, "max-inflight", svrcfg.DefaultMaxInflight, "concurrent verify/replay requests")
	fs.DurationVar(&cfg.Timeout, "timeout", svrcfg.DefaultTimeout, "verify timeout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	mode, err := logger.ParseLogMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, mode)

	lab, err := unisynth.New(unisynth.WithLogger(log))
	if err != nil {
		ah.Close()
		return nil, nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:         log,
		Lab:         lab,
		Addr:        cfg.Addr,
		MaxShots:    cfg.MaxShots,
		MaxWorkers:  cfg.MaxWorkers,
		MaxInflight: cfg.Inflight,
		Timeout:     cfg.Timeout,
	}
	return sCfg, ah.Close, nil
}
