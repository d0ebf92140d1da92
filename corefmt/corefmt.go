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

// Package corefmt 負責 PRNG 快照的文字編碼（URL-safe base64，無 padding）。
package corefmt

import (
	"encoding/base64"

	"github.com/zintix-labs/unisynth/errs"
	"github.com/zintix-labs/unisynth/sdk/core"
)

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(errs.Invalidf("%v", err), "decode base64url failed")
	}
	return b, nil
}

// SnapshotB64U 取得 r 的快照並編碼
func SnapshotB64U(r core.Restorable) (string, error) {
	b, err := r.Snapshot()
	if err != nil {
		return "", errs.Wrap(err, "snapshot failed")
	}
	return EncodeBase64URL(b), nil
}

// RestoreB64U 解碼 s 並還原到 r；解碼或還原失敗皆為 InvalidInput。
func RestoreB64U(r core.Restorable, s string) error {
	b, err := DecodeBase64URL(s)
	if err != nil {
		return err
	}
	if err := r.Restore(b); err != nil {
		return errs.Wrap(errs.Invalidf("%v", err), "restore snapshot failed")
	}
	return nil
}
