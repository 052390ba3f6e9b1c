// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events defines the input events forwarded from the host
// process to a renderer widget, and the classification rules the
// widget's acknowledgement policy depends on.
package events

import "image"

// Types determines the type of input event. The type includes both
// the source of the event and the action (MouseDown and MouseUp are
// separate types). The set mirrors what a host window system
// delivers; higher-level gestures are synthesized elsewhere.
type Types int32

const (
	// UnknownType is the zero value and means an unrecognized event.
	UnknownType Types = iota

	// MouseMove is sent whenever the pointer moves with no button
	// held. These are numerous, so their acknowledgements are
	// coalesced while a paint is pending.
	MouseMove

	// MouseDown happens when a mouse button is pressed. See Button.
	MouseDown

	// MouseUp happens when a mouse button is released. See Button.
	MouseUp

	// MouseWheel is a scroll-wheel or trackpad scroll tick, with the
	// scroll amount in Delta. Coalesced like MouseMove.
	MouseWheel

	// RawKeyDown is the first, pre-translation key-press transition.
	// The host may mark it as a keyboard-shortcut candidate; if the
	// widget does not consume such a press, the following Char
	// events are suppressed.
	RawKeyDown

	// KeyDown is a translated key press.
	KeyDown

	// KeyUp is a key release.
	KeyUp

	// Char is the character generated by a key press, in Rune.
	Char
)

var typeNames = map[Types]string{
	UnknownType: "Unknown",
	MouseMove:   "MouseMove",
	MouseDown:   "MouseDown",
	MouseUp:     "MouseUp",
	MouseWheel:  "MouseWheel",
	RawKeyDown:  "RawKeyDown",
	KeyDown:     "KeyDown",
	KeyUp:       "KeyUp",
	Char:        "Char",
}

func (t Types) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Invalid"
}

// IsKeyboard returns whether the event type is a keyboard event.
func (t Types) IsKeyboard() bool {
	return t == RawKeyDown || t == KeyDown || t == KeyUp || t == Char
}

// IsContinuous returns whether the event type is a high-frequency
// continuous event whose acknowledgements are rate limited against
// the paint cycle (see the widget's pending-input-ack slot).
func (t Types) IsContinuous() bool {
	return t == MouseMove || t == MouseWheel
}

// Buttons identifies a mouse button.
type Buttons int32

const (
	NoButton Buttons = iota
	Left
	Middle
	Right
)

// Modifiers is a bitset of modifier keys held during an event.
type Modifiers int32

const (
	Shift Modifiers = 1 << iota
	Control
	Alt
	Meta
)

// HasAll returns whether all of the given modifiers are held.
func (m Modifiers) HasAll(mods Modifiers) bool {
	return m&mods == mods
}

// Event is one input event as delivered by the host. Fields beyond
// Type are meaningful only for the types that set them.
type Event struct {
	Type Types `json:"type"`

	// Pos is the pointer position in widget coordinates.
	Pos image.Point `json:"pos"`

	// Delta is the scroll amount for MouseWheel events.
	Delta image.Point `json:"delta,omitzero"`

	// Button is the mouse button for MouseDown and MouseUp.
	Button Buttons `json:"button,omitzero"`

	// Rune is the character for Char events.
	Rune rune `json:"rune,omitzero"`

	Mods Modifiers `json:"mods,omitzero"`

	// ShortcutCandidate marks a RawKeyDown the host considers a
	// browser-level keyboard shortcut.
	ShortcutCandidate bool `json:"shortcut_candidate,omitzero"`
}
