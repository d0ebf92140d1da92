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

package api

import (
	"log/slog"

	"github.com/zintix-labs/unisynth/server/api/index"
	v1 "github.com/zintix-labs/unisynth/server/api/v1"
	"github.com/zintix-labs/unisynth/server/netsvr"
	"github.com/zintix-labs/unisynth/server/netsvr/middleware"
	"github.com/zintix-labs/unisynth/server/svrcfg"
)

// RegisterRoutes 註冊 middleware、首頁與 v1 api。sCfg 需已通過 Valid。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log)
	registerIndex(svr)
	return registerV1API(svr, sCfg)
}

func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

func registerIndex(svr netsvr.NetSvr) {
	svr.Get("/", index.IndexHandlerFn)
}

func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	c, err := v1.NewCircuitHandler(sCfg.Lab)
	if err != nil {
		return err
	}
	v, err := v1.NewVerifyHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/strategies", c.Strategies)
		vOne.Get("/encode", c.Encode)
		vOne.Get("/qasm", c.QASM)

		vOne.Get("/verify", v.Verify)
		vOne.Post("/verify", v.Verify)
		vOne.Post("/replay", v.Replay)
	})
	return nil
}
