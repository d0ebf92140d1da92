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

package netsvr

import (
	"net/http"

	"github.com/zintix-labs/unisynth/server/app"
)

// NetSvr 封裝「路由行為 + 服務啟停」。
//   - 只暴露給最外層組裝使用，其他層只需面向 NetRouter。
//   - 實作基於 net/http；換框架時提供相容 net/http handler 的實作即可。
//   - NetSvr 同時是 app.Component，可直接交給 app.App 管理生命週期。
type NetSvr interface {
	NetRouter
	app.Component
	// Handler 回傳根 handler（測試時交給 httptest）
	Handler() http.Handler
}

// NetRouter 定義純路由行為，不含 Run/Shutdown，
// 讓 handler 與子模組拿不到 server 生命週期的控制權。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
