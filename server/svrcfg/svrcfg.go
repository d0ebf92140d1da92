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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/unisynth"
	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/logger"
	"github.com/zintix-labs/unisynth/server/netsvr"
)

// 單次 verify 的上限；避免一個請求佔滿整台機器
const (
	DefaultMaxShots    = 10_000_000
	DefaultMaxWorkers  = 8
	DefaultMaxInflight = 4
	DefaultTimeout     = 30 * time.Second
)

type SvrCfg struct {
	Log         *slog.Logger
	Lab         *unisynth.Lab
	Addr        string        // 監聽位址，空字串為 :5808
	MaxShots    int           // 單次 verify 最多 shots
	MaxWorkers  int           // 單次 verify 最多 worker
	MaxInflight int           // 同時進行的 verify/replay 數
	Timeout     time.Duration // 單次 verify 的 context 逾時
}

// Valid 補齊預設值並檢查必要依賴。
func (sc *SvrCfg) Valid() error {
	if sc == nil {
		return errs.NewFatal("nil server config")
	}
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.Silent()
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	if sc.Addr == "" {
		sc.Addr = netsvr.DefaultAddr
	}
	if sc.MaxShots < 1 {
		sc.MaxShots = DefaultMaxShots
	}
	if sc.MaxWorkers < 1 {
		sc.MaxWorkers = DefaultMaxWorkers
	}
	sc.MaxWorkers = min(sc.MaxWorkers, 64)
	if sc.MaxInflight < 1 {
		sc.MaxInflight = DefaultMaxInflight
	}
	if sc.Timeout <= 0 {
		sc.Timeout = DefaultTimeout
	}
	return nil
}
