// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/json"
	"image"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dongbu/framepipe/base/errors"
	"github.com/dongbu/framepipe/host"
	"github.com/dongbu/framepipe/loop"
)

// PixSource resolves a buffer id to its checked-out buffer so the
// client can inline the pixels on the wire. [host.MemPool]
// implements it.
type PixSource interface {
	Get(id host.BufferID) *host.Buffer
}

// Client is the renderer side of the bridge. It implements
// [host.Messenger], [host.Creator], [host.Router], and
// [host.WindowQuery] over one WebSocket connection. Incoming
// host-to-widget messages are posted onto the loop and delivered
// through the client's routing table, preserving the single-
// threaded widget discipline.
type Client struct {
	conn *websocket.Conn
	lp   *loop.Loop

	// pix, when non-nil, supplies pixel bytes for outgoing
	// FrameUpdate messages.
	pix PixSource

	writeMu sync.Mutex

	mu     sync.Mutex
	routes map[host.RoutingID]host.Handler
	calls  map[uint64]chan envelope
	nextID uint64

	done chan struct{}
}

// Dial connects to a host at a ws:// url. The returned client's
// read goroutine runs until the connection drops or [Client.Close]
// is called; decoded widget messages run on lp.
func Dial(url string, lp *loop.Loop, pix PixSource) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Errorf("transport: dialing %s: %w", url, err)
	}
	c := &Client{
		conn:   conn,
		lp:     lp,
		pix:    pix,
		routes: map[host.RoutingID]host.Handler{},
		calls:  map[uint64]chan envelope{},
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send implements [host.Messenger]. FrameUpdate messages get their
// buffer pixels inlined, since the host cannot map our pool across
// the socket.
func (c *Client) Send(msg host.Message) error {
	if fu, ok := msg.(*host.FrameUpdate); ok && fu.Pix == nil && c.pix != nil {
		if buf := c.pix.Get(fu.Buffer); buf != nil {
			wire := *fu
			wire.Pix = buf.Pix
			msg = &wire
		}
	}
	data, err := encodeMsg(msg)
	if err != nil {
		return err
	}
	return c.write(data)
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// AddRoute implements [host.Router].
func (c *Client) AddRoute(id host.RoutingID, h host.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[id] = h
}

// RemoveRoute implements [host.Router].
func (c *Client) RemoveRoute(id host.RoutingID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.routes, id)
}

// CreateWidget implements [host.Creator] as a synchronous call.
func (c *Client) CreateWidget(opener host.RoutingID, kind host.WidgetKind) (host.RoutingID, error) {
	var reply struct {
		RoutingID host.RoutingID `json:"routing_id"`
	}
	err := c.call(callCreateWidget, struct {
		Opener host.RoutingID  `json:"opener"`
		Kind   host.WidgetKind `json:"kind"`
	}{opener, kind}, &reply)
	if err != nil {
		return host.RoutingNone, err
	}
	return reply.RoutingID, nil
}

// WindowRect implements [host.WindowQuery].
func (c *Client) WindowRect(id host.RoutingID) (image.Rectangle, error) {
	return c.rectCall(callWindowRect, id)
}

// RootWindowRect implements [host.WindowQuery].
func (c *Client) RootWindowRect(id host.RoutingID) (image.Rectangle, error) {
	return c.rectCall(callRootWindowRect, id)
}

func (c *Client) rectCall(proc string, id host.RoutingID) (image.Rectangle, error) {
	var reply struct {
		Rect image.Rectangle `json:"rect"`
	}
	err := c.call(proc, struct {
		RoutingID host.RoutingID `json:"routing_id"`
	}{id}, &reply)
	return reply.Rect, err
}

// call performs one request/reply round trip. It must not be
// invoked from the read goroutine.
func (c *Client) call(proc string, args, reply any) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return errors.Errorf("transport: encoding %s call: %w", proc, err)
	}

	ch := make(chan envelope, 1)
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.calls[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.calls, id)
		c.mu.Unlock()
	}()

	data, err := json.Marshal(envelope{Kind: kindCall, Type: proc, ID: id, Payload: payload})
	if err != nil {
		return err
	}
	if err := c.write(data); err != nil {
		return err
	}

	select {
	case env := <-ch:
		if env.Error != "" {
			return errors.Errorf("transport: %s call failed: %s", proc, env.Error)
		}
		if reply == nil {
			return nil
		}
		return json.Unmarshal(env.Payload, reply)
	case <-c.done:
		return errors.Errorf("transport: connection closed during %s call", proc)
	}
}

// readLoop decodes incoming frames until the connection drops.
// Malformed frames are logged and dropped; the loop keeps running
// regardless of one bad message.
func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			slog.Debug("transport: client read loop ended", "err", err)
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Error("transport: dropping malformed frame", "err", err)
			continue
		}
		switch env.Kind {
		case kindReply:
			c.mu.Lock()
			ch := c.calls[env.ID]
			c.mu.Unlock()
			if ch != nil {
				ch <- env
			}
		case kindMsg:
			msg, err := decodeMsg(env)
			if err != nil {
				slog.Error("transport: dropping undecodable message", "err", err)
				continue
			}
			c.deliver(msg)
		default:
			slog.Error("transport: dropping frame with unknown kind", "kind", env.Kind)
		}
	}
}

// deliver posts a host-to-widget message onto the loop. Messages
// for unrouted ids are stale (the widget closed) and are silently
// ignored.
func (c *Client) deliver(msg host.Message) {
	c.lp.Post(func() {
		c.mu.Lock()
		h := c.routes[msg.Routing()]
		c.mu.Unlock()
		if h == nil {
			slog.Debug("transport: dropping message for unknown route", "id", msg.Routing())
			return
		}
		h.HandleMessage(msg)
	})
}

// Done is closed when the connection has ended.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close performs the closing handshake and tears the connection
// down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	if err2 := c.conn.Close(); err == nil {
		err = err2
	}
	return err
}
