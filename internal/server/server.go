// Package server exposes the board over HTTP: row queries, saves, refresh,
// view preferences, snapshots, and an SSE event stream.
package server

import (
	"github.com/oakmontcap/lendboard/internal/board"
	"github.com/oakmontcap/lendboard/internal/presence"
	"github.com/oakmontcap/lendboard/internal/store"
)

// BoardServer serves the HTTP API for a Board.
type BoardServer struct {
	board    *board.Board
	store    store.Store
	hub      *Hub
	presence *presence.Tracker
}

// New returns a BoardServer. store may be nil (preference and snapshot
// endpoints then return 503); hub may be nil (SSE stream disabled).
func New(b *board.Board, st store.Store, hub *Hub) *BoardServer {
	return &BoardServer{board: b, store: st, hub: hub, presence: presence.New()}
}

// Presence exposes the analyst tracker, so callers can start its reaper.
func (s *BoardServer) Presence() *presence.Tracker { return s.presence }

// inputError indicates invalid user input. The transport maps it to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
