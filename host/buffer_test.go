// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemPoolAcquireRelease(t *testing.T) {
	p := NewMemPool(0)

	b, err := p.Acquire(image.Rect(10, 20, 110, 70))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(10, 20, 110, 70), b.Bounds)
	assert.Len(t, b.Pix, 4*100*50)
	assert.Equal(t, 1, p.Outstanding())
	assert.Same(t, b, p.Get(b.ID))

	p.Release(b.ID)
	assert.Equal(t, 0, p.Outstanding())
	assert.Nil(t, p.Get(b.ID))
}

func TestMemPoolExhaustion(t *testing.T) {
	p := NewMemPool(1)

	b, err := p.Acquire(image.Rect(0, 0, 10, 10))
	require.NoError(t, err)

	_, err = p.Acquire(image.Rect(0, 0, 10, 10))
	require.ErrorIs(t, err, ErrPoolExhausted)

	p.Release(b.ID)
	_, err = p.Acquire(image.Rect(0, 0, 10, 10))
	require.NoError(t, err)
}

func TestMemPoolEmptyBounds(t *testing.T) {
	p := NewMemPool(0)
	_, err := p.Acquire(image.Rectangle{})
	assert.Error(t, err)
}

func TestMemPoolReleaseUnknownIsDropped(t *testing.T) {
	p := NewMemPool(0)
	// Must not panic; logged and ignored.
	p.Release(42)
	assert.Equal(t, 0, p.Outstanding())
}

func TestBufferPixels(t *testing.T) {
	p := NewMemPool(0)
	b, err := p.Acquire(image.Rect(10, 10, 20, 20))
	require.NoError(t, err)

	red := color.RGBA{R: 0xFF, A: 0xFF}
	b.SetRGBA(10, 10, red)
	b.SetRGBA(19, 19, red)
	b.SetRGBA(5, 5, red) // out of bounds, ignored

	img := b.Image()
	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, red, img.RGBAAt(19, 19))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(11, 11))

	b.Fill(image.Rect(12, 12, 100, 14), red)
	assert.Equal(t, red, img.RGBAAt(19, 13))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(19, 14))
}

func TestUpdateFlags(t *testing.T) {
	var f UpdateFlags
	assert.Equal(t, "none", f.String())

	f |= ResizeAck
	f |= RepaintAck
	assert.True(t, f.Has(ResizeAck))
	assert.True(t, f.Has(RepaintAck))
	assert.False(t, f.Has(RestoreAck))
	assert.Equal(t, "resize-ack|repaint-ack", f.String())
}

type recordingHandler struct {
	msgs []Message
}

func (h *recordingHandler) HandleMessage(msg Message) { h.msgs = append(h.msgs, msg) }

func TestFixtureRouting(t *testing.T) {
	f := NewFixture()
	h := &recordingHandler{}

	id, err := f.CreateWidget(RoutingNone, KindWidget)
	require.NoError(t, err)
	f.AddRoute(id, h)
	assert.True(t, f.HasRoute(id))

	f.Deliver(&MoveAck{RoutingID: id})
	require.Len(t, h.msgs, 1)

	// Messages for removed routes are dropped.
	f.RemoveRoute(id)
	f.Deliver(&MoveAck{RoutingID: id})
	assert.Len(t, h.msgs, 1)
}
