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

package unisynth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/stats"
)

// Pool 限制同時進行的驗證數量，讓取樣不會同時佔滿整台機器。
//
// 借不到名額時依 ctx 等待；關閉後所有呼叫立即失敗。
// 執行期間的 panic 會被攔截並轉為 Fatal 錯誤，名額照常歸還。
type Pool struct {
	lab         *Lab
	slots       chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	size        int
	inflight    atomic.Int32
	panics      atomic.Int32
	closeReason atomic.Value // string
}

// NewPool 建立容量為 n（至少 1）的驗證池。
func NewPool(lab *Lab, n int) (*Pool, error) {
	if lab == nil {
		return nil, errs.NewFatal("pool: lab is required")
	}
	n = max(1, n)
	p := &Pool{
		lab:   lab,
		slots: make(chan struct{}, n),
		done:  make(chan struct{}),
		size:  n,
	}
	p.closeReason.Store("")
	for i := 0; i < n; i++ {
		p.slots <- struct{}{}
	}
	return p, nil
}

// Lab 回傳底層 Lab
func (p *Pool) Lab() *Lab { return p.lab }

// Verify 借一個名額後呼叫 Lab.Verify。
func (p *Pool) Verify(ctx context.Context, strategy string, n int, ex Executor, shots int, confidence float64) (rep *stats.Report, err error) {
	err = p.Do(ctx, func(ctx context.Context) error {
		var verr error
		rep, verr = p.lab.Verify(ctx, strategy, n, ex, shots, confidence)
		return verr
	})
	return rep, err
}

// Do 借一個名額執行 fn。
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// 關閉優先於取得名額
	if p.Closed() {
		return p.closedErr()
	}
	select {
	case <-p.done:
		return p.closedErr()
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "wait for verify slot")
	case <-p.slots:
	}
	if p.Closed() {
		p.putSlot()
		return p.closedErr()
	}
	p.inflight.Add(1)

	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("verify panic: %v", r))
		}
		p.putSlot()
	}()

	return fn(ctx)
}

func (p *Pool) closedErr() error {
	return errs.NewFatal("pool closed: " + p.ClosedReason())
}

// putSlot 歸還名額；名額數不超過 size，送出不會阻塞。
func (p *Pool) putSlot() {
	select {
	case p.slots <- struct{}{}:
	default:
	}
}

// Close 進入關閉狀態；之後的 Verify/Do 直接回錯誤。
func (p *Pool) Close() {
	p.closeWithReason("closed")
}

func (p *Pool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		p.closeReason.Store(reason)
		close(p.done)
	})
}

func (p *Pool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *Pool) ClosedReason() string {
	if s, ok := p.closeReason.Load().(string); ok {
		return s
	}
	return ""
}

func (p *Pool) Size() int { return p.size }

func (p *Pool) Inflight() int { return int(p.inflight.Load()) }

func (p *Pool) Panics() int { return int(p.panics.Load()) }
