// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "strings"

// UpdateFlags is a bitset carried on a [FrameUpdate], pairing the
// frame with host requests it satisfies. Flags are sticky on the
// widget until consumed by the next sent frame, and all three are
// independent and may combine.
type UpdateFlags int32

const (
	// ResizeAck marks a frame that satisfies a pending resize, so
	// the host can pair its Resize request with the repaint.
	ResizeAck UpdateFlags = 1 << iota

	// RestoreAck marks a frame that satisfies a pending
	// restore-from-hidden.
	RestoreAck

	// RepaintAck marks a frame that satisfies an explicit Repaint
	// request from the host.
	RepaintAck
)

// Has returns whether all given flag bits are set.
func (f UpdateFlags) Has(flags UpdateFlags) bool {
	return f&flags == flags
}

func (f UpdateFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(ResizeAck) {
		parts = append(parts, "resize-ack")
	}
	if f.Has(RestoreAck) {
		parts = append(parts, "restore-ack")
	}
	if f.Has(RepaintAck) {
		parts = append(parts, "repaint-ack")
	}
	return strings.Join(parts, "|")
}
