// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "image"

// CursorShape enumerates the standard pointer cursors a widget can
// request from the host window system.
type CursorShape int32

const (
	CursorArrow CursorShape = iota
	CursorIBeam
	CursorHand
	CursorCross
	CursorWait
	CursorResizeNS
	CursorResizeEW

	// CursorCustom uses a renderer-supplied image, identified out
	// of band; Hotspot gives its click point.
	CursorCustom
)

// Cursor is the cursor descriptor carried by [SetCursor].
type Cursor struct {
	Shape   CursorShape `json:"shape"`
	Hotspot image.Point `json:"hotspot,omitzero"`
}
