package server

import (
	"net/http"
	"strconv"
)

// handleListSnapshots handles GET /v1/snapshots?limit=N (metadata only).
func (s *BoardServer) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			handleError(w, inputError("invalid limit "+raw))
			return
		}
		limit = n
	}
	snaps, err := s.store.ListSnapshots(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

// handleLatestSnapshot handles GET /v1/snapshots/latest.
func (s *BoardServer) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	snap, err := s.store.LatestSnapshot(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleGetSnapshot handles GET /v1/snapshots/{id}.
func (s *BoardServer) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handleError(w, inputError("invalid snapshot id"))
		return
	}
	snap, err := s.store.GetSnapshot(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
