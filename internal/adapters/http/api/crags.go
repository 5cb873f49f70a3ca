package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/cragcast/internal/domain/types"
)

const defaultTopLimit = 10

// CragDependencies defines the interface for crag ranking reads.
type CragDependencies interface {
	TopCrags(ctx context.Context, n int) ([]types.CragEntry, error)
	CragRank(ctx context.Context, id string) (types.CragEntry, error)
}

// CragsHandler handles crag ranking requests.
type CragsHandler struct {
	deps     CragDependencies
	maxLimit int
}

// NewCragsHandler creates a new crags handler.
func NewCragsHandler(deps CragDependencies, maxLimit int) *CragsHandler {
	return &CragsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTop handles GET /crags/top?limit=N requests.
func (h *CragsHandler) HandleGetTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top_crags"
	n := defaultTopLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopCrags(r.Context(), n)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetCrag handles GET /crags/{id} requests.
func (h *CragsHandler) HandleGetCrag(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_crag"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.CragRank(r.Context(), id)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
