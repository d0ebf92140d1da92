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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/server/api"
	"github.com/zintix-labs/unisynth/server/app"
	"github.com/zintix-labs/unisynth/server/netsvr"
	"github.com/zintix-labs/unisynth/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口：
//  1. 驗證 SvrCfg（補齊 logger 與上限）。
//  2. 建立 chi HTTP server 並註冊路由。
//  3. 交給 app.Run() 管理生命週期，直到收到 SIGINT/SIGTERM。
//
// 所有依賴都透過 SvrCfg 注入，不讀檔案也不讀環境變數。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServer(sCfg.Addr, sCfg.Timeout+netsvr.DefaultWriteTimeout)
	return RunWithSvr(sCfg, svr)
}

// RunWithSvr 與 Run 相同，但允許注入自訂的 NetSvr（其他 adapter、TLS、自訂 listener 等）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return errs.Wrap(err, "register routes failed")
	}

	a := app.NewWith(sCfg.Log, svr)
	sCfg.Log.Info("[unisynth] listening", slog.String("addr", sCfg.Addr), slog.Any("strategies", sCfg.Lab.Strategies()))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
