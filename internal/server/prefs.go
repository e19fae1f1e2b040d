package server

import (
	"encoding/json"
	"net/http"

	"github.com/oakmontcap/lendboard/internal/model"
)

// requireStore guards the endpoints that need persistence.
func (s *BoardServer) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return false
	}
	return true
}

// handleListPreferences handles GET /v1/preferences.
func (s *BoardServer) handleListPreferences(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	prefs, err := s.store.ListPreferences(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}

// handleGetPreference handles GET /v1/preferences/{view}.
func (s *BoardServer) handleGetPreference(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	pref, err := s.store.GetPreference(r.Context(), r.PathValue("view"))
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// handleSetPreference handles PUT /v1/preferences/{view}.
func (s *BoardServer) handleSetPreference(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var filter model.RowFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		handleError(w, inputError("invalid JSON body: "+err.Error()))
		return
	}
	if filter.Pivot != "" && !filter.Pivot.IsValid() {
		handleError(w, inputError("unknown pivot "+string(filter.Pivot)))
		return
	}

	pref := &model.Preference{View: r.PathValue("view"), Filter: filter}
	if err := s.store.SetPreference(r.Context(), pref); err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pref)
}

// handleDeletePreference handles DELETE /v1/preferences/{view}.
func (s *BoardServer) handleDeletePreference(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.DeletePreference(r.Context(), r.PathValue("view")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
