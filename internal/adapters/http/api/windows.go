package api

import (
	"context"
	"net/http"

	service "github.com/okian/cragcast/internal/app"
	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
)

// WindowsDependencies defines the interface for window searches.
type WindowsDependencies interface {
	Windows(ctx context.Context, q service.Query, minRating rating.Category, maxWindows int) ([]conditions.Window, error)
	EvaluateWindows(hourly []model.HourlyReading, rt rock.Type) []conditions.Window
}

// WindowsHandler handles optimal window requests.
type WindowsHandler struct {
	deps WindowsDependencies
}

// NewWindowsHandler creates a new windows handler.
func NewWindowsHandler(deps WindowsDependencies) *WindowsHandler {
	return &WindowsHandler{deps: deps}
}

type windowFilter struct {
	MinRating string `query:"min_rating" validate:"omitempty,oneof=poor ok good great excellent"`
	Max       int    `query:"max" validate:"omitempty,gte=1,lte=24"`
}

func (f windowFilter) values() (rating.Category, int) {
	minRating := conditions.DefaultMinRating
	if c, err := rating.Parse(f.MinRating); err == nil {
		minRating = c
	}
	maxWindows := conditions.DefaultMaxWindows
	if f.Max > 0 {
		maxWindows = f.Max
	}
	return minRating, maxWindows
}

// HandleGetWindows handles GET /windows requests.
func (h *WindowsHandler) HandleGetWindows(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_windows"
	p := &queryParser{values: r.URL.Query()}
	q := parseConditionsQuery(p)
	f := windowFilter{MinRating: p.stringParam("min_rating"), Max: p.intParam("max")}
	if p.err != nil {
		writeFailure(w, r, WrapKind(op, ErrBadRequest, p.err))
		return
	}
	if err := check(op, q); err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := check(op, f); err != nil {
		writeFailure(w, r, err)
		return
	}

	sq := q.query()
	minRating, maxWindows := f.values()
	ws, err := h.deps.Windows(r.Context(), sq, minRating, maxWindows)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, windowsResponse{RockType: rock.ProfileFor(sq.RockType).Type, Windows: newWindowDTOs(ws)})
}

type evaluateWindowsRequest struct {
	RockType string       `json:"rock_type" validate:"omitempty,max=32"`
	Hourly   []readingDTO `json:"hourly" validate:"required,min=1,max=384,dive"`
}

// HandleEvaluateWindows handles POST /windows/evaluate requests.
func (h *WindowsHandler) HandleEvaluateWindows(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_windows"
	var req evaluateWindowsRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	rt := rock.Parse(req.RockType)
	ws := h.deps.EvaluateWindows(readings(req.Hourly), rt)
	writeJSON(w, http.StatusOK, windowsResponse{RockType: rt, Windows: newWindowDTOs(ws)})
}
