// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/json"
	"image"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dongbu/framepipe/base/errors"
	"github.com/dongbu/framepipe/host"
)

// HostAPI is what a host process plugs into a [Server]: routing-id
// allocation, window geometry answers, and a sink for the
// renderer's asynchronous traffic.
type HostAPI interface {
	host.Creator
	host.WindowQuery

	// OnMessage receives each renderer-to-host message in arrival
	// order.
	OnMessage(msg host.Message)
}

// Server is the host side of the bridge: an HTTP handler upgrading
// one renderer connection to a WebSocket and speaking the envelope
// protocol over it.
type Server struct {
	api      HostAPI
	upgrader websocket.Upgrader

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewServer returns a server backed by the given host API.
func NewServer(api HostAPI) *Server {
	return &Server{api: api}
}

// ServeHTTP upgrades the renderer connection and pumps it until it
// drops. One renderer at a time; a second connection is refused.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("transport: upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.readLoop(conn)

	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
}

// Send sends one host-to-renderer message.
func (s *Server) Send(msg host.Message) error {
	data, err := encodeMsg(msg)
	if err != nil {
		return err
	}
	return s.write(data)
}

func (s *Server) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return errors.New("transport: no renderer connected")
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Debug("transport: renderer connection ended", "err", err)
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			slog.Error("transport: dropping malformed frame", "err", err)
			continue
		}
		switch env.Kind {
		case kindMsg:
			msg, err := decodeMsg(env)
			if err != nil {
				slog.Error("transport: dropping undecodable message", "err", err)
				continue
			}
			s.api.OnMessage(msg)
		case kindCall:
			s.handleCall(env)
		default:
			slog.Error("transport: dropping frame with unknown kind", "kind", env.Kind)
		}
	}
}

// handleCall answers one synchronous call envelope.
func (s *Server) handleCall(env envelope) {
	reply := envelope{Kind: kindReply, ID: env.ID}

	payload, err := s.dispatchCall(env)
	if err != nil {
		reply.Error = err.Error()
	} else {
		reply.Payload = payload
	}

	data, err := json.Marshal(reply)
	if err != nil {
		slog.Error("transport: encoding reply", "err", err)
		return
	}
	errors.Log(s.write(data))
}

func (s *Server) dispatchCall(env envelope) (json.RawMessage, error) {
	switch env.Type {
	case callCreateWidget:
		var args struct {
			Opener host.RoutingID  `json:"opener"`
			Kind   host.WidgetKind `json:"kind"`
		}
		if err := json.Unmarshal(env.Payload, &args); err != nil {
			return nil, err
		}
		id, err := s.api.CreateWidget(args.Opener, args.Kind)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			RoutingID host.RoutingID `json:"routing_id"`
		}{id})

	case callWindowRect, callRootWindowRect:
		var args struct {
			RoutingID host.RoutingID `json:"routing_id"`
		}
		if err := json.Unmarshal(env.Payload, &args); err != nil {
			return nil, err
		}
		var rect image.Rectangle
		var err error
		if env.Type == callWindowRect {
			rect, err = s.api.WindowRect(args.RoutingID)
		} else {
			rect, err = s.api.RootWindowRect(args.RoutingID)
		}
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Rect image.Rectangle `json:"rect"`
		}{rect})
	}
	return nil, errors.Errorf("transport: unknown call %q", env.Type)
}
