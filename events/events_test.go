// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypesString(t *testing.T) {
	assert.Equal(t, "MouseMove", MouseMove.String())
	assert.Equal(t, "RawKeyDown", RawKeyDown.String())
	assert.Equal(t, "Invalid", Types(-1).String())
}

func TestTypesClassification(t *testing.T) {
	assert.True(t, MouseMove.IsContinuous())
	assert.True(t, MouseWheel.IsContinuous())
	assert.False(t, MouseDown.IsContinuous())
	assert.False(t, Char.IsContinuous())

	assert.True(t, RawKeyDown.IsKeyboard())
	assert.True(t, Char.IsKeyboard())
	assert.False(t, MouseUp.IsKeyboard())
}

func TestModifiers(t *testing.T) {
	mods := Shift | Control
	assert.True(t, mods.HasAll(Shift))
	assert.True(t, mods.HasAll(Shift|Control))
	assert.False(t, mods.HasAll(Alt))
	assert.False(t, mods.HasAll(Shift|Alt))
}
