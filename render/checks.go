// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"log/slog"
)

// checkf reports a protocol invariant violation: a condition that
// can only be false if this process or the host has a bug, never
// from ordinary message timing. Under the debug build tag it
// panics; otherwise it logs and the caller drops the message.
func checkf(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	msg := fmt.Sprintf(format, args...)
	if checksAreFatal {
		panic("render: invariant violation: " + msg)
	}
	slog.Error("render: invariant violation", "err", msg)
	return false
}
