// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host defines the surface a renderer widget uses to talk
// to its host process: the message set, the transport-buffer pool,
// and the narrow capability interfaces the widget controller is
// injected with. Keeping these as interfaces rather than ambient
// singletons makes widget scheduling deterministic under test.
package host

import (
	"image"

	"github.com/dongbu/framepipe/base/errors"
)

// RoutingID identifies one widget in the host's routing table.
// It is assigned by the host at widget creation and never changes.
type RoutingID int32

// RoutingNone is the unassigned routing id.
const RoutingNone RoutingID = 0

// WidgetKind describes what kind of widget the host should create.
type WidgetKind int32

const (
	// KindWidget is a regular child widget.
	KindWidget WidgetKind = iota

	// KindPopup is an unconstrained popup (menus, select dropdowns)
	// positioned by the renderer via ShowWidget.
	KindPopup
)

// Messenger sends one message to the host process.
// Send failures are recoverable: the widget skips the current flush
// and retries on the next invalidation.
type Messenger interface {
	Send(msg Message) error
}

// Creator asks the host to create a new widget and allocate its
// routing id. The call completes before any message for the new id
// can arrive.
type Creator interface {
	CreateWidget(opener RoutingID, kind WidgetKind) (RoutingID, error)
}

// Handler receives host-to-widget messages dispatched by a Router.
type Handler interface {
	HandleMessage(msg Message)
}

// Router is the routing table mapping routing ids to live widgets.
// A widget registers itself on creation and unregisters immediately
// when closing, so stray late messages are dropped by the router
// rather than reaching a dying widget.
type Router interface {
	AddRoute(id RoutingID, h Handler)
	RemoveRoute(id RoutingID)
}

// WindowQuery answers synchronous-style window geometry queries.
// The widget only consults it when no move request is outstanding;
// otherwise it answers from its pending-rect cache.
type WindowQuery interface {
	WindowRect(id RoutingID) (image.Rectangle, error)
	RootWindowRect(id RoutingID) (image.Rectangle, error)
}

// ErrPoolExhausted is returned by [BufferPool.Acquire] when the pool
// cannot satisfy the request. The flush that hits it is skipped and
// retried later; it is not fatal.
var ErrPoolExhausted = errors.New("host: transport buffer pool exhausted")

// BufferPool checks out transport buffers for frame updates.
// A widget holds at most one buffer at a time, releasing it only
// when the host's acknowledgement names it as returned.
type BufferPool interface {
	Acquire(bounds image.Rectangle) (*Buffer, error)
	Release(id BufferID)
}
