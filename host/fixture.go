// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"image"
	"sync"

	"github.com/dongbu/framepipe/base/errors"
)

// Fixture is an in-memory host implementing the whole collaborator
// surface: [Messenger], [Creator], [Router], [WindowQuery], plus a
// [MemPool]. It records every message the renderer sends and can
// deliver host-to-widget messages through the routing table, which
// is what widget tests and the single-process demo drive.
type Fixture struct {
	mu sync.Mutex

	// Pool is the transport buffer pool shared with the renderer.
	Pool *MemPool

	// SendErr, when set, makes Send fail with it. Tests use it to
	// exercise the skip-this-flush degradation.
	SendErr error

	// Rects answers WindowRect queries per routing id.
	Rects map[RoutingID]image.Rectangle

	sent   []Message
	routes map[RoutingID]Handler
	nextID RoutingID
}

// NewFixture returns a fixture with an unlimited buffer pool.
func NewFixture() *Fixture {
	return &Fixture{
		Pool:   NewMemPool(0),
		Rects:  map[RoutingID]image.Rectangle{},
		routes: map[RoutingID]Handler{},
	}
}

// Send records the message. It implements [Messenger].
func (f *Fixture) Send(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

// CreateWidget allocates the next routing id. It implements
// [Creator].
func (f *Fixture) CreateWidget(opener RoutingID, kind WidgetKind) (RoutingID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID, nil
}

// AddRoute implements [Router].
func (f *Fixture) AddRoute(id RoutingID, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[id] = h
}

// RemoveRoute implements [Router].
func (f *Fixture) RemoveRoute(id RoutingID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.routes, id)
}

// HasRoute returns whether a widget is registered for id.
func (f *Fixture) HasRoute(id RoutingID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.routes[id]
	return ok
}

// Deliver routes a host-to-widget message to its registered
// handler. Messages for unregistered ids are dropped, matching how
// a real host loses track of a closed widget.
func (f *Fixture) Deliver(msg Message) {
	f.mu.Lock()
	h := f.routes[msg.Routing()]
	f.mu.Unlock()
	if h != nil {
		h.HandleMessage(msg)
	}
}

// WindowRect implements [WindowQuery] from the Rects map.
func (f *Fixture) WindowRect(id RoutingID) (image.Rectangle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.Rects[id]
	if !ok {
		return image.Rectangle{}, errors.Errorf("host: no window rect for routing id %d", id)
	}
	return r, nil
}

// RootWindowRect implements [WindowQuery] from the Rects map.
func (f *Fixture) RootWindowRect(id RoutingID) (image.Rectangle, error) {
	return f.WindowRect(id)
}

// Sent returns a copy of all recorded messages.
func (f *Fixture) Sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.sent))
	copy(out, f.sent)
	return out
}

// Updates returns the recorded FrameUpdate messages in send order.
func (f *Fixture) Updates() []*FrameUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*FrameUpdate
	for _, m := range f.sent {
		if u, ok := m.(*FrameUpdate); ok {
			out = append(out, u)
		}
	}
	return out
}

// Reset forgets all recorded messages.
func (f *Fixture) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}
