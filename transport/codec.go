// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport carries the host message set across a process
// boundary over a WebSocket connection, with JSON framing. It is
// one concrete realization of the abstract host collaborators: the
// renderer side is a [Client] implementing the Messenger, Creator,
// Router, and WindowQuery capabilities; the host side is a
// [Server].
//
// Transport buffers cannot be shared memory across a socket, so
// FrameUpdate messages get their pixel bytes inlined on the wire.
package transport

import (
	"encoding/json"

	"github.com/dongbu/framepipe/base/errors"
	"github.com/dongbu/framepipe/host"
)

// envelope is one wire frame. Kind selects the exchange pattern:
// one-way messages ("msg"), request calls ("call"), and their
// replies ("reply").
type envelope struct {
	Kind string `json:"kind"`

	// Type names the payload message type for kind "msg" and the
	// procedure for kind "call".
	Type string `json:"type,omitempty"`

	// ID correlates a reply with its call.
	ID uint64 `json:"id,omitempty"`

	Payload json.RawMessage `json:"payload,omitempty"`

	// Error carries a call failure on replies.
	Error string `json:"error,omitempty"`
}

const (
	kindMsg   = "msg"
	kindCall  = "call"
	kindReply = "reply"
)

// Call procedure names.
const (
	callCreateWidget   = "create_widget"
	callWindowRect     = "window_rect"
	callRootWindowRect = "root_window_rect"
)

// msgTypes maps wire type names to constructors for decoding.
var msgTypes = map[string]func() host.Message{
	"frame_update":     func() host.Message { return &host.FrameUpdate{} },
	"frame_update_ack": func() host.Message { return &host.FrameUpdateAck{} },
	"resize":           func() host.Message { return &host.Resize{} },
	"was_hidden":       func() host.Message { return &host.WasHidden{} },
	"was_restored":     func() host.Message { return &host.WasRestored{} },
	"repaint":          func() host.Message { return &host.Repaint{} },
	"input_event":      func() host.Message { return &host.InputEvent{} },
	"input_event_ack":  func() host.Message { return &host.InputEventAck{} },
	"request_move":     func() host.Message { return &host.RequestMove{} },
	"move_ack":         func() host.Message { return &host.MoveAck{} },
	"close":            func() host.Message { return &host.Close{} },
	"close_widget":     func() host.Message { return &host.CloseWidget{} },
	"set_focus":        func() host.Message { return &host.SetFocus{} },
	"blur":             func() host.Message { return &host.Blur{} },
	"show_widget":      func() host.Message { return &host.ShowWidget{} },
	"set_cursor":       func() host.Message { return &host.SetCursor{} },
}

// typeName returns the wire name for a message.
func typeName(msg host.Message) (string, error) {
	switch msg.(type) {
	case *host.FrameUpdate:
		return "frame_update", nil
	case *host.FrameUpdateAck:
		return "frame_update_ack", nil
	case *host.Resize:
		return "resize", nil
	case *host.WasHidden:
		return "was_hidden", nil
	case *host.WasRestored:
		return "was_restored", nil
	case *host.Repaint:
		return "repaint", nil
	case *host.InputEvent:
		return "input_event", nil
	case *host.InputEventAck:
		return "input_event_ack", nil
	case *host.RequestMove:
		return "request_move", nil
	case *host.MoveAck:
		return "move_ack", nil
	case *host.Close:
		return "close", nil
	case *host.CloseWidget:
		return "close_widget", nil
	case *host.SetFocus:
		return "set_focus", nil
	case *host.Blur:
		return "blur", nil
	case *host.ShowWidget:
		return "show_widget", nil
	case *host.SetCursor:
		return "set_cursor", nil
	}
	return "", errors.Errorf("transport: unregistered message type %T", msg)
}

// encodeMsg wraps a message in a "msg" envelope.
func encodeMsg(msg host.Message) ([]byte, error) {
	name, err := typeName(msg)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Errorf("transport: encoding %s: %w", name, err)
	}
	return json.Marshal(envelope{Kind: kindMsg, Type: name, Payload: payload})
}

// decodeMsg decodes the payload of a "msg" envelope. Unknown types
// are an error; the caller drops the frame.
func decodeMsg(env envelope) (host.Message, error) {
	mk, ok := msgTypes[env.Type]
	if !ok {
		return nil, errors.Errorf("transport: unknown message type %q", env.Type)
	}
	msg := mk()
	if err := json.Unmarshal(env.Payload, msg); err != nil {
		return nil, errors.Errorf("transport: decoding %s: %w", env.Type, err)
	}
	return msg, nil
}
