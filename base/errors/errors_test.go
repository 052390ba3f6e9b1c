// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogReturnsError(t *testing.T) {
	err := New("problem")
	assert.Equal(t, err, Log(err))
	assert.NoError(t, Log(nil))
}

func TestLog1ReturnsValue(t *testing.T) {
	assert.Equal(t, 42, Log1(42, New("problem")))
	assert.Equal(t, "ok", Log1("ok", nil))
}

func TestIgnore1(t *testing.T) {
	assert.Equal(t, 7, Ignore1(7, New("dropped")))
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(nil) })
	assert.Panics(t, func() { Must(New("boom")) })
}

func TestWrapping(t *testing.T) {
	base := New("base")
	wrapped := Errorf("context: %w", base)
	assert.True(t, Is(wrapped, base))
}
