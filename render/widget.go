// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render sequences a widget's paint traffic to the host
// process: it coalesces damage, keeps exactly one frame update in
// flight, serializes lifecycle transitions, and rate limits
// acknowledgements for continuous input events against the paint
// cycle. All of it runs on one cooperative [loop.Loop]; nothing in
// this package blocks, and every suspension is a posted task.
package render

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/dongbu/framepipe/base/errors"
	"github.com/dongbu/framepipe/events"
	"github.com/dongbu/framepipe/host"
	"github.com/dongbu/framepipe/paint"
)

// TraceFrames can be set to true to log every frame update sent to
// the host, for debugging scheduling stalls.
var TraceFrames = false

// ErrClosing is returned by sends attempted after the widget began
// closing.
var ErrClosing = errors.New("render: widget is closing")

// Widget is the renderer-side controller for one host widget. It
// owns a [paint.Aggregator], the widget lifecycle state, a single
// transport-buffer slot, and the input-ack coalescing slot.
//
// A Widget is confined to its loop goroutine: the host router must
// deliver messages by posting to the same loop, and the painter
// calls back into it synchronously from that loop only.
type Widget struct {
	deps    Deps
	painter Painter

	// routingID is assigned once at creation and never changes.
	routingID host.RoutingID
	openerID  host.RoutingID
	kind      host.WidgetKind

	aggregator paint.Aggregator

	size        image.Point
	resizerRect image.Rectangle
	hidden      bool

	// closing is a one-way transition; no message is sent and no
	// flush is scheduled once it is set.
	closing     bool
	closePosted bool

	didShow    bool
	hasFocus   bool
	initialPos image.Rectangle

	// updateInFlight is set between sending a FrameUpdate and
	// receiving its acknowledgement. At most one frame update is
	// outstanding at any time.
	updateInFlight bool

	// flushPosted is set while a flush task is queued on the loop,
	// so invalidations arriving in the same turn coalesce into one
	// flush.
	flushPosted bool

	// buffer is the single checked-out transport buffer slot,
	// non-nil exactly while an update is in flight.
	buffer *host.Buffer

	// flags accumulate until consumed by the next sent frame.
	flags host.UpdateFlags

	// needsRepaintOnRestore remembers paint work discarded while
	// hidden or zero-sized, so restoring repaints instead of
	// silently dropping it.
	needsRepaintOnRestore bool

	// pendingInputAck is the single-slot buffered acknowledgement
	// for continuous pointer events awaiting the next flush.
	pendingInputAck *host.InputEventAck

	suppressNextCharEvents bool

	pendingWindowRect      image.Rectangle
	pendingWindowRectCount int

	currentCursor host.Cursor

	pluginMoves []host.PluginMove

	paintBorderColor int
}

// New creates a widget: it asks the host to allocate a routing id
// and registers the widget in the routing table. The painter must
// be non-nil.
func New(deps Deps, p Painter, opener host.RoutingID, kind host.WidgetKind) (*Widget, error) {
	id, err := deps.Creator.CreateWidget(opener, kind)
	if err != nil {
		return nil, errors.Errorf("render: creating widget: %w", err)
	}
	w := &Widget{
		deps:      deps,
		painter:   p,
		routingID: id,
		openerID:  opener,
		kind:      kind,
	}
	deps.Router.AddRoute(id, w)
	return w, nil
}

// RoutingID returns the widget's routing id.
func (w *Widget) RoutingID() host.RoutingID { return w.routingID }

// Size returns the current widget size.
func (w *Widget) Size() image.Point { return w.size }

// ResizerRect returns the host's resize-corner rect.
func (w *Widget) ResizerRect() image.Rectangle { return w.resizerRect }

// Send sends one message to the host, refusing with [ErrClosing]
// once the widget began closing.
func (w *Widget) Send(msg host.Message) error {
	if w.closing {
		return ErrClosing
	}
	return w.deps.Host.Send(msg)
}

// sendLogged sends and logs real failures; refusal because the
// widget is closing is expected during shutdown and stays quiet.
func (w *Widget) sendLogged(msg host.Message) {
	if err := w.Send(msg); err != nil && !errors.Is(err, ErrClosing) {
		slog.Error("render: send failed", "id", w.routingID, "err", err)
	}
}

// HandleMessage dispatches one host-to-widget message. It
// implements [host.Handler]. Messages arriving after Close are
// stale (the route was already removed) and are dropped.
func (w *Widget) HandleMessage(msg host.Message) {
	if w.closing {
		slog.Debug("render: dropping message for closing widget", "id", w.routingID)
		return
	}
	switch m := msg.(type) {
	case *host.Close:
		w.Close()
	case *host.Resize:
		w.OnResize(m.NewSize, m.ResizerRect)
	case *host.WasHidden:
		w.OnWasHidden()
	case *host.WasRestored:
		w.OnWasRestored(m.NeedsRepainting)
	case *host.Repaint:
		w.OnRepaint(m.Size)
	case *host.FrameUpdateAck:
		w.OnUpdateAcknowledged()
	case *host.InputEvent:
		w.OnInputEvent(m.Event)
	case *host.MoveAck:
		w.OnMoveAck()
	case *host.SetFocus:
		w.OnSetFocus(m.Focused)
	default:
		slog.Debug("render: dropping unexpected message", "id", w.routingID, "msg", msg)
	}
}

// InvalidateRect records that rect needs repainting and schedules a
// coalesced flush. The rect is clipped to the view bounds; empty
// results are dropped. The flush runs asynchronously on a later
// loop turn, so invalidations arriving in the same turn coalesce
// into one flush and the caller returns before any compositing.
func (w *Widget) InvalidateRect(rect image.Rectangle) {
	damaged := w.viewRect().Intersect(rect)
	if damaged.Empty() {
		return
	}
	w.aggregator.InvalidateRect(damaged)
	w.scheduleFlush()
}

// ScrollRect records scroll damage and schedules a coalesced flush,
// with the same clipping and scheduling rules as [Widget.InvalidateRect].
func (w *Widget) ScrollRect(dx, dy int, clip image.Rectangle) {
	damaged := w.viewRect().Intersect(clip)
	if damaged.Empty() {
		return
	}
	w.aggregator.ScrollRect(dx, dy, damaged)
	w.scheduleFlush()
}

func (w *Widget) viewRect() image.Rectangle {
	return image.Rectangle{Max: w.size}
}

// scheduleFlush posts one deferred flush, unless one is already
// queued, an update is in flight (the acknowledgement will
// continue), or nothing is pending. Deferring serves two purposes:
// the triggering call returns before any compositing happens, and
// invalidations arriving in the same loop turn coalesce into one
// flush.
func (w *Widget) scheduleFlush() {
	if w.closing || w.flushPosted || w.updateInFlight || !w.aggregator.HasPendingUpdate() {
		return
	}
	w.flushPosted = true
	w.deps.Loop.Post(w.callFlush)
}

// callFlush runs a flush attempt and then releases any buffered
// input-event ack, successful flush or not, so a coalesced ack is
// held for at most one paint cycle.
func (w *Widget) callFlush() {
	w.flushPosted = false
	w.Flush()

	if w.pendingInputAck != nil {
		ack := w.pendingInputAck
		w.pendingInputAck = nil
		w.sendLogged(ack)
	}
}

// Flush composites the pending update into a freshly acquired
// transport buffer and sends exactly one FrameUpdate. It is a no-op
// when there is nothing pending, an update is already in flight, or
// the widget is closing. When hidden or zero-sized, the pending
// update is discarded and remembered via needsRepaintOnRestore
// instead.
func (w *Widget) Flush() {
	if w.closing || w.updateInFlight || !w.aggregator.HasPendingUpdate() {
		return
	}

	if w.hidden || w.size == (image.Point{}) {
		w.aggregator.ClearPendingUpdate()
		w.needsRepaintOnRestore = true
		return
	}

	// Layout may generate more invalidation; it must run before the
	// snapshot so that damage is carried by this frame.
	w.painter.Layout()

	update := w.aggregator.GetPendingUpdate()

	scrollDamage := update.ScrollDamage()
	bounds := update.PaintBounds()

	buf, err := w.deps.Pool.Acquire(bounds)
	if err != nil {
		// Recoverable: the update stays queued and is retried on
		// the next invalidation or acknowledgement.
		slog.Error("render: buffer acquisition failed, skipping flush",
			"id", w.routingID, "bounds", bounds, "err", err)
		return
	}

	// Snapshot taken and buffer secured: reset the aggregator so
	// invalidations arriving during painting accumulate into a new
	// pending update instead of racing this flush.
	w.aggregator.ClearPendingUpdate()

	// Without a scroll, painting the union as one rect is cheaper
	// for the host than replaying every overlapping paint rect.
	// With a scroll, the scroll damage is just one more rect to
	// paint and copy.
	copyRects := update.PaintRects
	if scrollDamage.Empty() {
		copyRects = []image.Rectangle{bounds}
	} else {
		copyRects = append(copyRects, scrollDamage)
	}

	for _, r := range copyRects {
		w.paintRect(buf, r)
	}

	msg := &host.FrameUpdate{
		RoutingID:   w.routingID,
		Buffer:      buf.ID,
		Bounds:      bounds,
		Scroll:      update.Scroll,
		CopyRects:   copyRects,
		Flags:       w.flags,
		ViewSize:    w.size,
		PluginMoves: w.pluginMoves,
	}
	w.pluginMoves = nil

	w.buffer = buf
	w.updateInFlight = true
	if err := w.Send(msg); err != nil {
		// Degrade to idle. The flushed damage and plugin moves are
		// put back so the next invalidation or acknowledgement
		// retries them; flags were not consumed.
		w.updateInFlight = false
		w.buffer = nil
		w.deps.Pool.Release(buf.ID)
		w.aggregator.InvalidateRect(bounds)
		w.pluginMoves = msg.PluginMoves
		slog.Error("render: frame update send failed", "id", w.routingID, "err", err)
		return
	}
	w.flags = 0

	if TraceFrames {
		slog.Info("render: frame update sent", "id", w.routingID,
			"buffer", msg.Buffer, "bounds", msg.Bounds, "rects", len(msg.CopyRects),
			"flags", msg.Flags)
	}
}

// paintRect has the painter composite one rect and overlays the
// debug border when enabled.
func (w *Widget) paintRect(buf *host.Buffer, rect image.Rectangle) {
	w.painter.Paint(buf, rect)

	if w.deps.ShowPaintRects {
		w.paintDebugBorder(buf, rect)
	}
}

// debugBorderColors cycle to help distinguish successive paint
// rects on screen.
var debugBorderColors = []color.RGBA{
	{R: 0xFF, A: 0x3F},
	{R: 0xFF, B: 0xFF, A: 0x3F},
	{B: 0xFF, A: 0x3F},
}

func (w *Widget) paintDebugBorder(buf *host.Buffer, rect image.Rectangle) {
	c := debugBorderColors[w.paintBorderColor%len(debugBorderColors)]
	w.paintBorderColor++
	for x := rect.Min.X; x < rect.Max.X; x++ {
		buf.SetRGBA(x, rect.Min.Y, c)
		buf.SetRGBA(x, rect.Max.Y-1, c)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		buf.SetRGBA(rect.Min.X, y, c)
		buf.SetRGBA(rect.Max.X-1, y, c)
	}
}

// OnUpdateAcknowledged handles the host's FrameUpdateAck: the
// transport buffer returns to the pool and, if damage accumulated
// while the update was in flight, the next flush runs without
// waiting for another invalidation.
func (w *Widget) OnUpdateAcknowledged() {
	if !checkf(w.updateInFlight, "frame update ack with no update in flight") {
		return
	}
	w.updateInFlight = false

	// A zero-damage frame never sends, so an in-flight update
	// always holds the buffer slot.
	if w.buffer != nil {
		w.deps.Pool.Release(w.buffer.ID)
		w.buffer = nil
	}

	// Continue painting if necessary.
	w.callFlush()
}

// OnResize handles a host resize. A resize supersedes all pending
// damage tracking: the aggregator is cleared, the painter resizes,
// and the full view is invalidated. For a non-empty size the next
// sent frame carries [host.ResizeAck], so the host resizes only as
// fast as the renderer paints.
func (w *Widget) OnResize(newSize image.Point, resizerRect image.Rectangle) {
	if w.closing {
		return
	}

	w.resizerRect = resizerRect

	w.setHidden(false)
	w.needsRepaintOnRestore = false

	checkf(!w.flags.Has(host.ResizeAck), "resize before previous resize was acked")

	w.size = newSize
	w.aggregator.ClearPendingUpdate()

	w.painter.Resize(newSize)

	if newSize != (image.Point{}) {
		w.InvalidateRect(w.viewRect())
		w.flags |= host.ResizeAck
	}
}

// OnWasHidden stops paint generation; flushes are suppressed and
// pending damage is remembered, not dropped.
func (w *Widget) OnWasHidden() {
	w.setHidden(true)
}

// OnWasRestored reverses hiding. If repainting is needed, either
// because the host says so or because a flush was discarded while
// hidden, the full view is invalidated and the next frame carries
// [host.RestoreAck].
func (w *Widget) OnWasRestored(needsRepainting bool) {
	if w.closing {
		return
	}

	w.setHidden(false)

	if !needsRepainting && !w.needsRepaintOnRestore {
		return
	}
	w.needsRepaintOnRestore = false

	w.flags |= host.RestoreAck

	w.InvalidateRect(w.viewRect())
}

// OnRepaint handles an explicit host repaint request; the answering
// frame carries [host.RepaintAck].
func (w *Widget) OnRepaint(size image.Point) {
	if w.closing {
		return
	}
	w.flags |= host.RepaintAck
	w.InvalidateRect(image.Rectangle{Max: size})
}

func (w *Widget) setHidden(hidden bool) {
	if w.hidden == hidden {
		return
	}
	w.hidden = hidden
}

// OnInputEvent dispatches one input event to the painter and
// acknowledges it. Acks for continuous pointer events are buffered
// in the single pending-ack slot while a paint is pending, bounding
// their rate to one per paint cycle; a previously buffered ack is
// sent (never dropped) before the new one replaces it. All other
// events ack immediately.
func (w *Widget) OnInputEvent(ev events.Event) {
	if w.closing {
		return
	}

	handled := false
	if ev.Type != events.Char || !w.suppressNextCharEvents {
		w.suppressNextCharEvents = false
		handled = w.painter.HandleInput(ev)
	}

	// A RawKeyDown that is a host keyboard shortcut and was not
	// consumed here will be handled by the host; the Char events it
	// generates must not reach the page.
	if !handled && ev.Type == events.RawKeyDown && ev.ShortcutCandidate {
		w.suppressNextCharEvents = true
	}

	ack := &host.InputEventAck{
		RoutingID: w.routingID,
		EventType: ev.Type,
		Handled:   handled,
	}

	if ev.Type.IsContinuous() && w.aggregator.HasPendingUpdate() {
		if w.pendingInputAck != nil {
			w.sendLogged(w.pendingInputAck)
		}
		w.pendingInputAck = ack
		return
	}
	w.sendLogged(ack)
}

// OnSetFocus handles the host granting or revoking focus.
func (w *Widget) OnSetFocus(focused bool) {
	w.hasFocus = focused
	w.painter.SetFocus(focused)
}

// DidFocus is called by the engine when page content tries to take
// focus. Only the host may focus the renderer: if the host has not
// granted focus, it is taken back on a later loop turn.
func (w *Widget) DidFocus() {
	if !w.hasFocus {
		w.deps.Loop.Post(w.clearFocus)
	}
}

// DidBlur is called by the engine when the widget gives up focus.
func (w *Widget) DidBlur() {
	w.sendLogged(&host.Blur{RoutingID: w.routingID})
}

func (w *Widget) clearFocus() {
	// The host may have granted focus in the meantime; don't unfocus
	// ourselves then.
	if !w.hasFocus && !w.closing {
		w.painter.SetFocus(false)
	}
}

// DidChangeCursor is called by the engine on every cursor update;
// a SetCursor message goes out only when the cursor actually
// changed.
func (w *Widget) DidChangeCursor(c host.Cursor) {
	if c == w.currentCursor {
		return
	}
	w.currentCursor = c
	w.sendLogged(&host.SetCursor{RoutingID: w.routingID, Cursor: c})
}

// Show displays a newly created widget at its initial position.
// It must be called exactly once per widget.
func (w *Widget) Show() {
	if !checkf(!w.didShow, "extraneous Show call") {
		return
	}
	w.didShow = true
	w.sendLogged(&host.ShowWidget{
		RoutingID:  w.routingID,
		OpenerID:   w.openerID,
		InitialPos: w.initialPos,
	})
	w.setPendingWindowRect(w.initialPos)
}

// SetWindowRect requests a window move. Before Show it only stores
// the initial position; after Show it sends a RequestMove and
// caches the rect until the host acks the move.
func (w *Widget) SetWindowRect(rect image.Rectangle) {
	if !w.didShow {
		w.initialPos = rect
		return
	}
	w.sendLogged(&host.RequestMove{RoutingID: w.routingID, Rect: rect})
	w.setPendingWindowRect(rect)
}

func (w *Widget) setPendingWindowRect(rect image.Rectangle) {
	w.pendingWindowRect = rect
	w.pendingWindowRectCount++
}

// OnMoveAck handles the host confirming a RequestMove.
func (w *Widget) OnMoveAck() {
	if !checkf(w.pendingWindowRectCount > 0, "move ack with no outstanding move request") {
		return
	}
	w.pendingWindowRectCount--
}

// WindowRect returns the widget's window rect. While a move request
// is outstanding it answers from the locally cached pending rect,
// since the host's answer would race the in-flight move.
func (w *Widget) WindowRect() image.Rectangle {
	if w.pendingWindowRectCount > 0 {
		return w.pendingWindowRect
	}
	return errors.Log1(w.deps.Windows.WindowRect(w.routingID))
}

// RootWindowRect returns the rect of the widget's root native
// window, with the same pending-move caching as [Widget.WindowRect].
func (w *Widget) RootWindowRect() image.Rectangle {
	if w.pendingWindowRectCount > 0 {
		return w.pendingWindowRect
	}
	return errors.Log1(w.deps.Windows.RootWindowRect(w.routingID))
}

// SchedulePluginMove batches one native child-window move for the
// next frame update, coalescing by window handle: a full update
// replaces the existing entry, while a rects-invalid update only
// carries new visibility.
func (w *Widget) SchedulePluginMove(move host.PluginMove) {
	for i := range w.pluginMoves {
		if w.pluginMoves[i].Window != move.Window {
			continue
		}
		if move.RectsValid {
			w.pluginMoves[i] = move
		} else {
			w.pluginMoves[i].Visible = move.Visible
		}
		return
	}
	w.pluginMoves = append(w.pluginMoves, move)
}

// CleanupPluginMoves drops any batched move for the given window,
// called when the plugin window goes away.
func (w *Widget) CleanupPluginMoves(window host.WindowHandle) {
	for i := range w.pluginMoves {
		if w.pluginMoves[i].Window == window {
			w.pluginMoves = append(w.pluginMoves[:i], w.pluginMoves[i+1:]...)
			return
		}
	}
}

// CloseWidgetSoon is called by the engine to request closing, e.g.
// from script running deep in an event dispatch. The CloseWidget
// request is posted rather than sent inline so the host cannot tear
// the widget down under frames still on the stack. Multiple close
// requests are safe.
func (w *Widget) CloseWidgetSoon() {
	w.deps.Loop.Post(func() {
		w.sendLogged(&host.CloseWidget{RoutingID: w.routingID})
	})
}

// Close begins teardown. It is idempotent: the first call removes
// the widget from the routing table, so the host stops addressing
// it and stray late acks are dropped, and posts exactly one
// non-nestable teardown task; later calls are no-ops. The actual
// teardown is deferred because Close may be reached from deep
// within an event-dispatch stack.
func (w *Widget) Close() {
	if w.closing {
		return
	}
	w.closing = true

	if w.routingID != host.RoutingNone {
		w.deps.Router.RemoveRoute(w.routingID)
		w.setHidden(false)
	}

	if !w.closePosted {
		w.closePosted = true
		w.deps.Loop.PostNonNestable(w.teardown)
	}
}

// teardown runs at most once, from the deferred close task. The
// buffer slot is returned to the pool even if the ack never
// arrived: a closed widget must not retain a pooled buffer.
func (w *Widget) teardown() {
	w.painter.Close()

	if w.buffer != nil {
		w.deps.Pool.Release(w.buffer.ID)
		w.buffer = nil
	}
	w.updateInFlight = false
	w.pendingInputAck = nil
}
