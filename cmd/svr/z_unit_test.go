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
	"testing"
	"time"
)

func TestLoadConfigFromFlags(t *testing.T) {
	sCfg, closeLog, err := loadConfigFromFlags([]string{"-addr", ":9000", "-log", "silence", "-max-shots", "1000", "-timeout", "3s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeLog()
	if sCfg.Addr != ":9000" || sCfg.MaxShots != 1000 || sCfg.Timeout != 3*time.Second || sCfg.Lab == nil {
		t.Fatalf("unexpected config %+v", sCfg)
	}
	if err := sCfg.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
}

func TestLoadConfigBadLogMode(t *testing.T) {
	if _, _, err := loadConfigFromFlags([]string{"-log", "loud"}); err == nil {
		t.Fatalf("expected error")
	}
}
