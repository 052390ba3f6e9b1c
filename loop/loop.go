// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loop provides a single-threaded cooperative task loop.
//
// All widget work runs on one loop: there is no parallelism inside
// the scheduling layer, and "suspension" is always expressed as
// posting a deferred callback to run on a later turn of the same
// loop. Tasks may be posted from any goroutine; they run only on
// the goroutine that pumps the loop.
package loop

import (
	"context"
	"sync"
)

type task struct {
	fn func()

	// nonNestable tasks only run from a top-level pump, never from
	// a nested [Loop.RunPending] call made inside another task.
	nonNestable bool
}

// Loop is a FIFO task queue pumped by a single goroutine.
// The zero value is not usable; call [New].
type Loop struct {
	mu    sync.Mutex
	tasks []task

	// depth is the current pump nesting level, guarded by mu.
	depth int

	// wake signals [Loop.Run] that a task arrived.
	wake chan struct{}
}

// New returns a ready-to-use Loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn to run on a later turn of the loop.
// It is safe to call from any goroutine and never blocks.
func (l *Loop) Post(fn func()) {
	l.post(task{fn: fn})
}

// PostNonNestable enqueues fn like [Loop.Post], but fn is only run
// from a top-level pump, never from a nested RunPending call made
// inside another task. Use this for teardown work that must not run
// while callers further up the stack still hold a reference.
func (l *Loop) PostNonNestable(fn func()) {
	l.post(task{fn: fn, nonNestable: true})
}

func (l *Loop) post(t task) {
	l.mu.Lock()
	l.tasks = append(l.tasks, t)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// RunPending runs queued tasks until none are eligible, including
// tasks posted by the tasks themselves. When called from inside a
// running task it is a nested pump: non-nestable tasks are skipped
// and remain queued, preserving their order, until the top-level
// pump reaches them.
func (l *Loop) RunPending() {
	l.mu.Lock()
	l.depth++
	for {
		i := l.nextEligible()
		if i < 0 {
			break
		}
		t := l.tasks[i]
		l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
		l.mu.Unlock()
		t.fn()
		l.mu.Lock()
	}
	l.depth--
	l.mu.Unlock()
}

// nextEligible returns the index of the first runnable task, or -1.
// Caller must hold mu.
func (l *Loop) nextEligible() int {
	for i, t := range l.tasks {
		if t.nonNestable && l.depth > 1 {
			continue
		}
		return i
	}
	return -1
}

// Run pumps the loop until ctx is canceled, blocking between tasks.
// It returns ctx.Err. Run must be called from exactly one goroutine.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
