package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakmontcap/lendboard/internal/board"
	"github.com/oakmontcap/lendboard/internal/client"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *BoardServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/rows", s.handleListRows)
	mux.HandleFunc("GET /v1/rows/{key}", s.handleGetRow)
	mux.HandleFunc("POST /v1/rows/{key}/save", s.handleSaveRow)
	mux.HandleFunc("GET /v1/rows/{key}/events", s.handleRowEvents)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	mux.HandleFunc("GET /v1/preferences", s.handleListPreferences)
	mux.HandleFunc("GET /v1/preferences/{view}", s.handleGetPreference)
	mux.HandleFunc("PUT /v1/preferences/{view}", s.handleSetPreference)
	mux.HandleFunc("DELETE /v1/preferences/{view}", s.handleDeletePreference)
	mux.HandleFunc("GET /v1/snapshots", s.handleListSnapshots)
	mux.HandleFunc("GET /v1/snapshots/latest", s.handleLatestSnapshot)
	mux.HandleFunc("GET /v1/snapshots/{id}", s.handleGetSnapshot)
	mux.HandleFunc("GET /v1/presence", s.handleListPresence)
	mux.HandleFunc("POST /v1/presence/heartbeat", s.handleHeartbeat)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *BoardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if t := s.board.RefreshedAt(); !t.IsZero() {
		resp["refreshed_at"] = t
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleError maps domain errors onto HTTP status codes.
func handleError(w http.ResponseWriter, err error) {
	var ie inputError
	var ve board.ValidationError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, board.ErrRowNotFound), errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, board.ErrRefreshInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &apiErr):
		// Backend rejected the write; surface its message.
		writeError(w, http.StatusBadGateway, apiErr.Message)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
