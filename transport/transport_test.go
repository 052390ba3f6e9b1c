// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongbu/framepipe/base/errors"
	"github.com/dongbu/framepipe/events"
	"github.com/dongbu/framepipe/host"
	"github.com/dongbu/framepipe/loop"
	"github.com/dongbu/framepipe/paint"
)

func roundTrip(t *testing.T, msg host.Message) host.Message {
	t.Helper()
	data, err := encodeMsg(msg)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, kindMsg, env.Kind)

	out, err := decodeMsg(env)
	require.NoError(t, err)
	return out
}

func TestFrameUpdateRoundTrip(t *testing.T) {
	in := &host.FrameUpdate{
		RoutingID: 3,
		Buffer:    7,
		Bounds:    image.Rect(0, 0, 15, 15),
		Scroll:    paint.ScrollDelta{DY: -10, Clip: image.Rect(0, 0, 100, 100)},
		CopyRects: []image.Rectangle{image.Rect(0, 0, 15, 15)},
		Flags:     host.ResizeAck | host.RepaintAck,
		ViewSize:  image.Pt(800, 600),
		PluginMoves: []host.PluginMove{
			{Window: 1, WindowRect: image.Rect(0, 0, 10, 10), RectsValid: true, Visible: true},
		},
		Pix: []byte{1, 2, 3, 4},
	}
	assert.Equal(t, in, roundTrip(t, in))
}

func TestInputEventRoundTrip(t *testing.T) {
	in := &host.InputEvent{
		RoutingID: 5,
		Event: events.Event{
			Type:              events.RawKeyDown,
			Rune:              'w',
			Mods:              events.Control,
			ShortcutCandidate: true,
		},
	}
	assert.Equal(t, in, roundTrip(t, in))
}

func TestDecodeUnknownTypeFails(t *testing.T) {
	_, err := decodeMsg(envelope{Kind: kindMsg, Type: "bogus"})
	assert.Error(t, err)
}

// testHost is an in-memory HostAPI handing out sequential routing
// ids and funneling renderer traffic into a channel.
type testHost struct {
	mu     sync.Mutex
	nextID host.RoutingID
	rects  map[host.RoutingID]image.Rectangle

	msgs chan host.Message
}

func newTestHost() *testHost {
	return &testHost{
		rects: map[host.RoutingID]image.Rectangle{},
		msgs:  make(chan host.Message, 16),
	}
}

func (h *testHost) CreateWidget(opener host.RoutingID, kind host.WidgetKind) (host.RoutingID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return h.nextID, nil
}

func (h *testHost) WindowRect(id host.RoutingID) (image.Rectangle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rect, ok := h.rects[id]
	if !ok {
		return image.Rectangle{}, errors.Errorf("no widget %v", id)
	}
	return rect, nil
}

func (h *testHost) RootWindowRect(id host.RoutingID) (image.Rectangle, error) {
	return h.WindowRect(id)
}

func (h *testHost) OnMessage(msg host.Message) { h.msgs <- msg }

func (h *testHost) recv(t *testing.T) host.Message {
	t.Helper()
	select {
	case msg := <-h.msgs:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a renderer message")
		return nil
	}
}

// startBridge wires a client to a server over a real WebSocket and
// runs the client's loop on its own goroutine.
func startBridge(t *testing.T, api *testHost, pix PixSource) (*Client, *Server) {
	t.Helper()
	srv := NewServer(api)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	lp := loop.New()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	c, err := Dial(url, lp, pix)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go lp.Run(ctx)
	return c, srv
}

func TestCreateWidgetCall(t *testing.T) {
	api := newTestHost()
	c, _ := startBridge(t, api, nil)

	id, err := c.CreateWidget(host.RoutingNone, host.KindWidget)
	require.NoError(t, err)
	assert.Equal(t, host.RoutingID(1), id)

	id, err = c.CreateWidget(id, host.KindPopup)
	require.NoError(t, err)
	assert.Equal(t, host.RoutingID(2), id)
}

func TestWindowRectCall(t *testing.T) {
	api := newTestHost()
	api.rects[4] = image.Rect(10, 20, 650, 500)
	c, _ := startBridge(t, api, nil)

	rect, err := c.WindowRect(4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 650, 500), rect)

	// A host-side failure travels back as the call error.
	_, err = c.WindowRect(99)
	assert.ErrorContains(t, err, "no widget")
}

// FrameUpdate pixels live in the renderer's pool; the wire copy
// must carry them inline.
func TestFrameUpdateInlinesPixels(t *testing.T) {
	api := newTestHost()
	pool := host.NewMemPool(2)
	c, _ := startBridge(t, api, pool)

	buf, err := pool.Acquire(image.Rect(0, 0, 2, 2))
	require.NoError(t, err)
	buf.Fill(buf.Bounds, color.RGBA{R: 0xFF, A: 0xFF})

	require.NoError(t, c.Send(&host.FrameUpdate{
		RoutingID: 1,
		Buffer:    buf.ID,
		Bounds:    buf.Bounds,
		CopyRects: []image.Rectangle{buf.Bounds},
		ViewSize:  image.Pt(2, 2),
	}))

	got := api.recv(t)
	fu, ok := got.(*host.FrameUpdate)
	require.True(t, ok, "expected a FrameUpdate, got %T", got)
	assert.Equal(t, buf.Pix, fu.Pix)
	assert.Equal(t, buf.Bounds, fu.Bounds)
}

func TestHostToRendererRouting(t *testing.T) {
	api := newTestHost()
	c, srv := startBridge(t, api, nil)

	got := make(chan host.Message, 1)
	c.AddRoute(6, handlerFunc(func(msg host.Message) { got <- msg }))

	// The round trip guarantees the server has finished the
	// handshake before we send the other way.
	_, err := c.WindowRect(99)
	require.Error(t, err)

	require.NoError(t, srv.Send(&host.Resize{RoutingID: 6, NewSize: image.Pt(640, 480)}))

	select {
	case msg := <-got:
		rs, ok := msg.(*host.Resize)
		require.True(t, ok)
		assert.Equal(t, image.Pt(640, 480), rs.NewSize)
	case <-time.After(5 * time.Second):
		t.Fatal("resize never reached the routed handler")
	}

	// Unrouted ids are stale widgets: dropped without fuss.
	require.NoError(t, srv.Send(&host.Blur{RoutingID: 42}))
	require.NoError(t, srv.Send(&host.Resize{RoutingID: 6, NewSize: image.Pt(1, 1)}))
	msg := <-got
	assert.Equal(t, image.Pt(1, 1), msg.(*host.Resize).NewSize)
}

func TestCallFailsAfterClose(t *testing.T) {
	api := newTestHost()
	c, _ := startBridge(t, api, nil)

	require.NoError(t, c.Close())
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done never closed")
	}
	_, err := c.CreateWidget(host.RoutingNone, host.KindWidget)
	assert.Error(t, err)
}

type handlerFunc func(host.Message)

func (f handlerFunc) HandleMessage(msg host.Message) { f(msg) }
