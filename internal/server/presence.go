package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// defaultRosterWindow hides analysts idle longer than this unless the client
// asks for a different window.
const defaultRosterWindow = 10 * time.Minute

// handleListPresence handles GET /v1/presence?window=DURATION.
func (s *BoardServer) handleListPresence(w http.ResponseWriter, r *http.Request) {
	window := defaultRosterWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			handleError(w, inputError("invalid window "+raw))
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysts": s.presence.Roster(window),
	})
}

// heartbeatRequest is the body of POST /v1/presence/heartbeat.
type heartbeatRequest struct {
	Actor string `json:"actor"`
	Row   string `json:"row,omitempty"`
}

// handleHeartbeat handles POST /v1/presence/heartbeat.
func (s *BoardServer) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req heartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, inputError("invalid JSON body: "+err.Error()))
		return
	}
	if req.Actor == "" {
		handleError(w, inputError("actor is required"))
		return
	}
	s.presence.Touch(req.Actor, "heartbeat", req.Row)
	w.WriteHeader(http.StatusNoContent)
}
