// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/dongbu/framepipe/base/errors"
)

// BufferID identifies a checked-out transport buffer. The id is
// opaque to the renderer; it only ever hands it back in a Release
// after the host's acknowledgement names the buffer as returned.
type BufferID int32

// BufferNone is the unassigned buffer id.
const BufferNone BufferID = 0

// Buffer is one pooled transport buffer: an exclusively owned block
// of RGBA pixels sized to a bounds rectangle, used to carry one
// frame's data across the process boundary.
type Buffer struct {
	ID     BufferID
	Bounds image.Rectangle

	// Pix holds the pixels in RGBA order, 4 bytes per pixel,
	// row-major over Bounds.
	Pix []byte
}

// PixOffset returns the index of the first byte of the pixel at
// (x, y) in view coordinates.
func (b *Buffer) PixOffset(x, y int) int {
	return ((y-b.Bounds.Min.Y)*b.Bounds.Dx() + (x - b.Bounds.Min.X)) * 4
}

// SetRGBA sets one pixel. Out-of-bounds points are ignored.
func (b *Buffer) SetRGBA(x, y int, c color.RGBA) {
	if !(image.Point{x, y}.In(b.Bounds)) {
		return
	}
	i := b.PixOffset(x, y)
	b.Pix[i+0] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// Fill fills the intersection of rect and the buffer bounds with a
// solid color.
func (b *Buffer) Fill(rect image.Rectangle, c color.RGBA) {
	rect = rect.Intersect(b.Bounds)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		i := b.PixOffset(rect.Min.X, y)
		for x := rect.Min.X; x < rect.Max.X; x++ {
			b.Pix[i+0] = c.R
			b.Pix[i+1] = c.G
			b.Pix[i+2] = c.B
			b.Pix[i+3] = c.A
			i += 4
		}
	}
}

// Image returns an [image.RGBA] view sharing the buffer's pixels.
func (b *Buffer) Image() *image.RGBA {
	return &image.RGBA{Pix: b.Pix, Stride: 4 * b.Bounds.Dx(), Rect: b.Bounds}
}

// MemPool is an in-memory [BufferPool] with leak accounting, used
// by tests, the demo host, and single-process embeddings.
type MemPool struct {
	mu sync.Mutex

	// MaxBuffers caps concurrently checked-out buffers; 0 means
	// unlimited.
	MaxBuffers int

	next BufferID
	out  map[BufferID]*Buffer
}

// NewMemPool returns a pool allowing up to maxBuffers concurrently
// checked-out buffers (0 = unlimited).
func NewMemPool(maxBuffers int) *MemPool {
	return &MemPool{MaxBuffers: maxBuffers, out: map[BufferID]*Buffer{}}
}

// Acquire checks out a zeroed buffer sized to bounds. It returns
// [ErrPoolExhausted] when the checkout cap is reached and an error
// for degenerate bounds.
func (p *MemPool) Acquire(bounds image.Rectangle) (*Buffer, error) {
	if bounds.Empty() {
		return nil, errors.Errorf("host: acquire with empty bounds %v", bounds)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.MaxBuffers > 0 && len(p.out) >= p.MaxBuffers {
		return nil, ErrPoolExhausted
	}
	p.next++
	b := &Buffer{
		ID:     p.next,
		Bounds: bounds,
		Pix:    make([]byte, 4*bounds.Dx()*bounds.Dy()),
	}
	p.out[b.ID] = b
	return b, nil
}

// Release returns a buffer to the pool. Releasing an unknown id is
// a protocol violation by the caller; it is logged and dropped so
// one bad message cannot take the loop down.
func (p *MemPool) Release(id BufferID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.out[id]; !ok {
		slog.Error("host: release of unknown buffer", "id", id)
		return
	}
	delete(p.out, id)
}

// Get returns the checked-out buffer with the given id, or nil.
// Host-side consumers use it to read the pixels named by a
// FrameUpdate in single-process setups.
func (p *MemPool) Get(id BufferID) *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out[id]
}

// Outstanding returns the number of checked-out buffers.
func (p *MemPool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.out)
}
