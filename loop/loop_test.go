// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPendingFIFO(t *testing.T) {
	l := New()
	var got []int
	for i := range 5 {
		l.Post(func() { got = append(got, i) })
	}
	l.RunPending()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, l.Pending())
}

func TestTasksPostedDuringRunAreDrained(t *testing.T) {
	l := New()
	var got []string
	l.Post(func() {
		got = append(got, "outer")
		l.Post(func() { got = append(got, "inner") })
	})
	l.RunPending()
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestNonNestableDeferredInNestedPump(t *testing.T) {
	l := New()
	var got []string

	l.Post(func() {
		got = append(got, "task")
		l.PostNonNestable(func() { got = append(got, "teardown") })
		l.Post(func() { got = append(got, "nested-ok") })

		// A nested pump must not run the non-nestable task while
		// this task is still on the stack.
		l.RunPending()
		got = append(got, "after-nested")
	})
	l.RunPending()

	assert.Equal(t, []string{"task", "nested-ok", "after-nested", "teardown"}, got)
}

func TestNonNestableRunsAtTopLevel(t *testing.T) {
	l := New()
	ran := false
	l.PostNonNestable(func() { ran = true })
	l.RunPending()
	assert.True(t, ran)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ran := make(chan struct{})
	l.Post(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted task never ran")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestPostFromOtherGoroutine(t *testing.T) {
	l := New()
	ran := make(chan struct{})
	go l.Post(func() { close(ran) })

	deadline := time.Now().Add(2 * time.Second)
	for {
		l.RunPending()
		select {
		case <-ran:
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("task posted from another goroutine never ran")
		}
		time.Sleep(time.Millisecond)
	}
}
