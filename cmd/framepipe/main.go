// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command framepipe runs one renderer process: it dials the host
// configured in framepipe.toml, creates a widget with a demo
// painter, and then paints on demand until the connection drops or
// the process is interrupted. Sizing, visibility, input, and
// shutdown are all driven by the host end of the connection.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dongbu/framepipe/base/errors"
	"github.com/dongbu/framepipe/config"
	"github.com/dongbu/framepipe/events"
	"github.com/dongbu/framepipe/host"
	"github.com/dongbu/framepipe/loop"
	"github.com/dongbu/framepipe/render"
	"github.com/dongbu/framepipe/transport"
)

// gradientPainter fills the view with a slowly shifting gradient.
// It stands in for a layout engine: the ticker goroutine plays the
// role of animations or script invalidating content.
type gradientPainter struct {
	widget *render.Widget
	size   image.Point
	phase  uint8
}

func (p *gradientPainter) Layout() {}

func (p *gradientPainter) Paint(buf *host.Buffer, rect image.Rectangle) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			buf.SetRGBA(x, y, color.RGBA{
				R: uint8(x) + p.phase,
				G: uint8(y),
				B: p.phase,
				A: 0xFF,
			})
		}
	}
}

func (p *gradientPainter) Resize(size image.Point) { p.size = size }

func (p *gradientPainter) HandleInput(ev events.Event) bool {
	// A click advances the gradient immediately.
	if ev.Type == events.MouseDown {
		p.advance()
		return true
	}
	return false
}

func (p *gradientPainter) SetFocus(focused bool) {}

func (p *gradientPainter) Close() {}

func (p *gradientPainter) advance() {
	p.phase += 8
	p.widget.InvalidateRect(image.Rectangle{Max: p.size})
}

func run() error {
	configFile := flag.String("config", "framepipe.toml", "config file")
	dial := flag.String("dial", "", "host endpoint, overriding the config file")
	flag.Parse()

	cfg := config.Defaults()
	if _, err := os.Stat(*configFile); err == nil {
		var err error
		cfg, err = config.Open(*configFile)
		if err != nil {
			return err
		}
	}
	if *dial != "" {
		cfg.Host.Dial = *dial
	}
	if cfg.Host.Dial == "" {
		return errors.New("no host endpoint: set host.dial or pass -dial")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: cfg.Level()})))
	render.TraceFrames = cfg.Paint.TraceFrames

	lp := loop.New()
	pool := host.NewMemPool(cfg.Pool.MaxBuffers)

	client, err := transport.Dial(cfg.Host.Dial, lp, pool)
	if err != nil {
		return err
	}
	defer client.Close()

	painter := &gradientPainter{}
	w, err := render.New(render.Deps{
		Loop:           lp,
		Host:           client,
		Creator:        client,
		Router:         client,
		Pool:           pool,
		Windows:        client,
		ShowPaintRects: cfg.Paint.ShowPaintRects,
	}, painter, host.RoutingNone, host.KindWidget)
	if err != nil {
		return err
	}
	painter.widget = w
	slog.Info("renderer connected", "host", cfg.Host.Dial, "id", w.RoutingID())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-client.Done()
		slog.Info("host connection ended")
		cancel()
	}()

	// Animate: one gradient step per second, posted onto the widget
	// loop.
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				lp.Post(painter.advance)
			case <-ctx.Done():
				return
			}
		}
	}()

	lp.Run(ctx)
	w.Close()
	lp.RunPending()
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("framepipe", "err", err)
		os.Exit(1)
	}
}
