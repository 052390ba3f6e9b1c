// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"

	"github.com/dongbu/framepipe/events"
	"github.com/dongbu/framepipe/host"
	"github.com/dongbu/framepipe/loop"
)

// Painter is the rendering-engine collaborator a [Widget] drives.
// The widget owns scheduling and the host protocol; the painter owns
// pixels. A painter reports damage back by calling the widget's
// InvalidateRect and ScrollRect, including from inside Layout and
// Resize.
//
// All methods are called on the widget's loop goroutine and must be
// bounded and non-suspending.
type Painter interface {
	// Layout runs any pending layout work before a flush. It may
	// generate further invalidation; the flush snapshot is taken
	// after it returns.
	Layout()

	// Paint composites the given view-coordinate rect into buf.
	// rect is always contained in buf.Bounds.
	Paint(buf *host.Buffer, rect image.Rectangle)

	// Resize adjusts the engine to a new view size. The widget
	// invalidates the full view afterwards regardless.
	Resize(size image.Point)

	// HandleInput processes one input event synchronously and
	// reports whether it was consumed.
	HandleInput(ev events.Event) bool

	// SetFocus grants or revokes keyboard focus inside the engine.
	SetFocus(focused bool)

	// Close releases engine resources. Called exactly once, from
	// the widget's deferred teardown task.
	Close()
}

// Deps is the capability set a [Widget] is injected with. Every
// field is required except Windows, which is only consulted by the
// window-rect queries.
type Deps struct {
	// Loop is the single control loop all widget work runs on.
	Loop *loop.Loop

	// Host sends renderer-to-host messages.
	Host host.Messenger

	// Creator allocates routing ids for new widgets.
	Creator host.Creator

	// Router is the host routing table the widget registers with.
	Router host.Router

	// Pool is the transport buffer pool.
	Pool host.BufferPool

	// Windows answers window geometry queries.
	Windows host.WindowQuery

	// ShowPaintRects draws a one-pixel debug border around every
	// painted rect, cycling colors so fresh damage stands out.
	ShowPaintRects bool
}
