// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"image"

	"github.com/dongbu/framepipe/events"
	"github.com/dongbu/framepipe/paint"
)

// Message is one message exchanged with the host process. The
// transport and encoding are an external concern; in-process hosts
// pass these structs directly.
type Message interface {
	// Routing returns the routing id the message is addressed to
	// or originates from.
	Routing() RoutingID
}

// FrameUpdate is the one frame transfer message, renderer to host.
// At most one FrameUpdate per widget is outstanding at a time; the
// host answers with a [FrameUpdateAck] once it has consumed the
// transport buffer.
type FrameUpdate struct {
	RoutingID RoutingID `json:"routing_id"`

	// Buffer identifies the transport buffer carrying the pixels.
	// Ownership of the buffer transfers to the host with this
	// message and returns with the acknowledgement.
	Buffer BufferID `json:"buffer"`

	// Bounds is the buffer rectangle in view coordinates.
	Bounds image.Rectangle `json:"bounds"`

	// Scroll is the pending scroll, zero when none.
	Scroll paint.ScrollDelta `json:"scroll,omitzero"`

	// CopyRects lists the regions of the buffer the host must copy
	// to the screen, including the scroll damage when any.
	CopyRects []image.Rectangle `json:"copy_rects"`

	Flags UpdateFlags `json:"flags,omitzero"`

	// ViewSize is the widget size the frame was painted at.
	ViewSize image.Point `json:"view_size"`

	// PluginMoves are batched native child-window move descriptors
	// to apply atomically with this frame.
	PluginMoves []PluginMove `json:"plugin_moves,omitempty"`

	// Pix carries the buffer pixels inline for transports that
	// cannot share memory (see package transport). In-process hosts
	// leave it nil and read the pooled buffer directly.
	Pix []byte `json:"pix,omitempty"`
}

func (m *FrameUpdate) Routing() RoutingID { return m.RoutingID }

// FrameUpdateAck acknowledges a [FrameUpdate], host to renderer,
// returning the transport buffer to the renderer's pool and
// unblocking the next flush.
type FrameUpdateAck struct {
	RoutingID RoutingID `json:"routing_id"`
}

func (m *FrameUpdateAck) Routing() RoutingID { return m.RoutingID }

// Resize directs the widget to a new size, host to renderer. The
// resize is acknowledged implicitly: the next FrameUpdate carries
// [ResizeAck], so the host only resizes as fast as the renderer
// can paint.
type Resize struct {
	RoutingID RoutingID `json:"routing_id"`

	NewSize image.Point `json:"new_size"`

	// ResizerRect is where the host draws its resize corner; the
	// widget keeps out of it.
	ResizerRect image.Rectangle `json:"resizer_rect,omitzero"`
}

func (m *Resize) Routing() RoutingID { return m.RoutingID }

// WasHidden tells the widget to stop generating paint, host to
// renderer.
type WasHidden struct {
	RoutingID RoutingID `json:"routing_id"`
}

func (m *WasHidden) Routing() RoutingID { return m.RoutingID }

// WasRestored reverses [WasHidden]. NeedsRepainting is set when the
// host discarded its backing store while the widget was hidden.
type WasRestored struct {
	RoutingID       RoutingID `json:"routing_id"`
	NeedsRepainting bool      `json:"needs_repainting"`
}

func (m *WasRestored) Routing() RoutingID { return m.RoutingID }

// Repaint asks for a full repaint of the given size, host to
// renderer; the answering frame carries [RepaintAck].
type Repaint struct {
	RoutingID RoutingID   `json:"routing_id"`
	Size      image.Point `json:"size"`
}

func (m *Repaint) Routing() RoutingID { return m.RoutingID }

// InputEvent delivers one input event to the widget, host to
// renderer. Every InputEvent is eventually answered by an
// [InputEventAck]; acks for continuous pointer events may be
// deferred to the next paint cycle.
type InputEvent struct {
	RoutingID RoutingID    `json:"routing_id"`
	Event     events.Event `json:"event"`
}

func (m *InputEvent) Routing() RoutingID { return m.RoutingID }

// InputEventAck reports whether the widget consumed an input event,
// renderer to host. The host uses it for flow control and to decide
// whether to handle the event itself.
type InputEventAck struct {
	RoutingID RoutingID    `json:"routing_id"`
	EventType events.Types `json:"event_type"`
	Handled   bool         `json:"handled"`
}

func (m *InputEventAck) Routing() RoutingID { return m.RoutingID }

// RequestMove asks the host to move the widget's native window,
// renderer to host. Answered by [MoveAck].
type RequestMove struct {
	RoutingID RoutingID       `json:"routing_id"`
	Rect      image.Rectangle `json:"rect"`
}

func (m *RequestMove) Routing() RoutingID { return m.RoutingID }

// MoveAck confirms a [RequestMove], host to renderer.
type MoveAck struct {
	RoutingID RoutingID `json:"routing_id"`
}

func (m *MoveAck) Routing() RoutingID { return m.RoutingID }

// Close directs the widget to tear down, host to renderer.
type Close struct {
	RoutingID RoutingID `json:"routing_id"`
}

func (m *Close) Routing() RoutingID { return m.RoutingID }

// CloseWidget asks the host to initiate closing this widget,
// renderer to host, fire and forget. The host answers with [Close].
type CloseWidget struct {
	RoutingID RoutingID `json:"routing_id"`
}

func (m *CloseWidget) Routing() RoutingID { return m.RoutingID }

// SetFocus grants or revokes keyboard focus, host to renderer.
type SetFocus struct {
	RoutingID RoutingID `json:"routing_id"`
	Focused   bool      `json:"focused"`
}

func (m *SetFocus) Routing() RoutingID { return m.RoutingID }

// Blur reports that the widget gave up focus, renderer to host.
type Blur struct {
	RoutingID RoutingID `json:"routing_id"`
}

func (m *Blur) Routing() RoutingID { return m.RoutingID }

// ShowWidget is the one-shot request to display a newly created
// widget at an initial position, renderer to host.
type ShowWidget struct {
	RoutingID  RoutingID       `json:"routing_id"`
	OpenerID   RoutingID       `json:"opener_id"`
	InitialPos image.Rectangle `json:"initial_pos"`
}

func (m *ShowWidget) Routing() RoutingID { return m.RoutingID }

// SetCursor changes the pointer cursor over the widget, renderer to
// host. Sent only when the cursor actually changes.
type SetCursor struct {
	RoutingID RoutingID `json:"routing_id"`
	Cursor    Cursor    `json:"cursor"`
}

func (m *SetCursor) Routing() RoutingID { return m.RoutingID }
