// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "image"

// WindowHandle is an opaque native child-window handle, as used for
// plugin windows embedded in the widget.
type WindowHandle uint64

// PluginMove describes one pending native child-window move. Moves
// are batched on the widget, coalesced by window handle, and applied
// by the host atomically with the next frame update so plugin
// windows never visibly lag the page they sit in.
type PluginMove struct {
	Window     WindowHandle    `json:"window"`
	WindowRect image.Rectangle `json:"window_rect"`
	ClipRect   image.Rectangle `json:"clip_rect"`

	// CutoutRects are regions punched out of the plugin window so
	// overlapping page content shows through.
	CutoutRects []image.Rectangle `json:"cutout_rects,omitempty"`

	// RectsValid is false when only Visible changed; the rect
	// fields are then stale and must not be applied.
	RectsValid bool `json:"rects_valid"`
	Visible    bool `json:"visible"`
}
