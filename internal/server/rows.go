package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/oakmontcap/lendboard/internal/model"
)

// handleListRows handles GET /v1/rows.
// Query params: pivot=property|bank|equity, search, stages (comma-separated),
// sort, dir=asc|desc.
func (s *BoardServer) handleListRows(w http.ResponseWriter, r *http.Request) {
	f, err := parseRowFilter(r)
	if err != nil {
		handleError(w, err)
		return
	}
	rows := s.board.Rows(f)
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}

// handleGetRow handles GET /v1/rows/{key}.
func (s *BoardServer) handleGetRow(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	row, err := s.board.Row(key)
	if err != nil {
		handleError(w, err)
		return
	}
	resp := map[string]any{"row": row}
	if dirty := s.board.DirtyFields(key); len(dirty) > 0 {
		resp["dirty_fields"] = dirty
	}
	writeJSON(w, http.StatusOK, resp)
}

// saveRowRequest is the body of POST /v1/rows/{key}/save.
type saveRowRequest struct {
	Changes map[string]string `json:"changes"`
	Actor   string            `json:"actor,omitempty"`
}

// handleSaveRow handles POST /v1/rows/{key}/save.
func (s *BoardServer) handleSaveRow(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req saveRowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, inputError("invalid JSON body: "+err.Error()))
		return
	}

	row, err := s.board.Save(r.Context(), key, req.Changes, req.Actor)
	if err != nil {
		handleError(w, err)
		return
	}
	s.presence.Touch(req.Actor, "save", row.Key.Value)
	writeJSON(w, http.StatusOK, map[string]any{"row": row})
}

// handleRowEvents handles GET /v1/rows/{key}/events (the audit trail).
func (s *BoardServer) handleRowEvents(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	key := r.PathValue("key")
	row, err := s.board.Row(key)
	if err != nil {
		handleError(w, err)
		return
	}
	events, err := s.store.GetRowEvents(r.Context(), row.Key)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// handleRefresh handles POST /v1/refresh. A refresh already in flight maps
// to 409.
func (s *BoardServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	stats, err := s.board.Refresh(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func parseRowFilter(r *http.Request) (model.RowFilter, error) {
	q := r.URL.Query()
	f := model.RowFilter{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}

	if p := q.Get("pivot"); p != "" {
		f.Pivot = model.Pivot(p)
		if !f.Pivot.IsValid() {
			return f, inputError(fmt.Sprintf("unknown pivot %q", p))
		}
	}

	switch d := q.Get("dir"); d {
	case "", "asc":
		f.Dir = model.SortAsc
	case "desc":
		f.Dir = model.SortDesc
	default:
		return f, inputError(fmt.Sprintf("unknown sort direction %q", d))
	}

	if raw := q.Get("stages"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			stage := model.Stage(strings.TrimSpace(part))
			if !stage.IsValid() {
				return f, inputError(fmt.Sprintf("unknown stage %q", part))
			}
			f.Stages = append(f.Stages, stage)
		}
	}

	return f, nil
}
