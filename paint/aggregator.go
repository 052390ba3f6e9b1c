// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package paint accumulates damage notifications from the rendering
// engine into one coalesced pending update per widget. It is pure
// bookkeeping: no I/O, no scheduling, no clipping. Callers clip
// incoming rectangles to the widget bounds before recording them.
package paint

import "image"

// ScrollDelta records one scroll operation: the pixel delta and the
// clip rectangle bounding the scrolled region.
type ScrollDelta struct {
	DX   int             `json:"dx"`
	DY   int             `json:"dy"`
	Clip image.Rectangle `json:"clip"`
}

// IsZero returns whether no scroll is recorded.
func (s ScrollDelta) IsZero() bool {
	return s.DX == 0 && s.DY == 0 && s.Clip.Empty()
}

// PendingUpdate is a snapshot of accumulated damage: at most one
// scroll plus any number of paint rectangles. Paint rects may
// overlap; consumers treat them as a paint-at-least hint, with
// [PendingUpdate.PaintBounds] as the authoritative redraw area.
type PendingUpdate struct {
	Scroll     ScrollDelta
	PaintRects []image.Rectangle
}

// ScrollDamage returns the clip rect of the recorded scroll, or the
// empty rectangle if no scroll is pending.
func (u PendingUpdate) ScrollDamage() image.Rectangle {
	if u.Scroll.IsZero() {
		return image.Rectangle{}
	}
	return u.Scroll.Clip
}

// PaintBounds returns the bounding box of all paint rects unioned
// with the scroll damage: the minimal single rectangle covering
// everything that must be redrawn.
func (u PendingUpdate) PaintBounds() image.Rectangle {
	bounds := u.ScrollDamage()
	for _, r := range u.PaintRects {
		bounds = bounds.Union(r)
	}
	return bounds
}

// Aggregator coalesces InvalidateRect and ScrollRect notifications
// into a single [PendingUpdate]. It is exclusively owned by one
// widget controller and is not safe for concurrent use.
type Aggregator struct {
	update PendingUpdate
}

// InvalidateRect adds rect to the pending paint set. Empty rects are
// ignored. The rect must already be clipped to the view bounds by
// the caller; the aggregator does not clip.
func (a *Aggregator) InvalidateRect(rect image.Rectangle) {
	if rect.Empty() {
		return
	}
	a.update.PaintRects = append(a.update.PaintRects, rect)
}

// ScrollRect records scroll damage. The last scroll wins: a new
// scroll replaces any previously stored delta and clip rect
// entirely, while paint rects remain additive. A caller that needs
// the replaced scroll's region repainted invalidates it separately.
func (a *Aggregator) ScrollRect(dx, dy int, clip image.Rectangle) {
	if clip.Empty() {
		return
	}
	a.update.Scroll = ScrollDelta{DX: dx, DY: dy, Clip: clip}
}

// HasPendingUpdate returns whether any scroll or paint damage is
// queued.
func (a *Aggregator) HasPendingUpdate() bool {
	return len(a.update.PaintRects) > 0 || !a.update.Scroll.IsZero()
}

// GetPendingUpdate returns a snapshot of the pending update without
// mutating the aggregator. The returned paint-rect slice is a copy;
// the caller owns it.
func (a *Aggregator) GetPendingUpdate() PendingUpdate {
	u := a.update
	if len(a.update.PaintRects) > 0 {
		u.PaintRects = make([]image.Rectangle, len(a.update.PaintRects))
		copy(u.PaintRects, a.update.PaintRects)
	}
	return u
}

// ClearPendingUpdate resets the aggregator to empty. It is called
// exactly once at the start of a flush, after the snapshot is taken,
// so invalidations arriving during compositing accumulate into a new
// pending update instead of racing the in-progress flush.
func (a *Aggregator) ClearPendingUpdate() {
	a.update = PendingUpdate{}
}
