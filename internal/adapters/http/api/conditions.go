package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/cragcast/internal/app"
	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
)

// ConditionsDependencies defines the interface for conditions lookups.
type ConditionsDependencies interface {
	Conditions(ctx context.Context, q service.Query) (conditions.Result, error)
	Batch(ctx context.Context, qs []service.Query) ([]service.BatchItem, error)
	Evaluate(snapshot model.WeatherSnapshot, rt rock.Type, recentPrecipMm float64, opts ...conditions.RequestOption) conditions.Result
}

// conditionsQuery is a location lookup, from the query string or a batch body.
type conditionsQuery struct {
	Lat          *float64 `json:"lat" query:"lat" validate:"required,gte=-90,lte=90"`
	Lon          *float64 `json:"lon" query:"lon" validate:"required,gte=-180,lte=180"`
	Timezone     string   `json:"timezone,omitempty" query:"timezone" validate:"omitempty,timezone"`
	RockType     string   `json:"rock_type,omitempty" query:"rock_type" validate:"omitempty,max=32"`
	Days         int      `json:"days,omitempty" query:"days" validate:"omitempty,gte=1,lte=16"`
	IncludeNight *bool    `json:"include_night,omitempty" query:"include_night"`
}

func parseConditionsQuery(p *queryParser) conditionsQuery {
	return conditionsQuery{
		Lat:          p.floatParam("lat"),
		Lon:          p.floatParam("lon"),
		Timezone:     p.stringParam("timezone"),
		RockType:     p.stringParam("rock_type"),
		Days:         p.intParam("days"),
		IncludeNight: p.boolParam("include_night"),
	}
}

func (q conditionsQuery) query() service.Query {
	return service.Query{
		Location:     model.Location{Lat: *q.Lat, Lon: *q.Lon, Timezone: q.Timezone},
		RockType:     rock.Parse(q.RockType),
		Days:         q.Days,
		IncludeNight: q.IncludeNight,
	}
}

// ConditionsHandler handles conditions requests.
type ConditionsHandler struct {
	deps   ConditionsDependencies
	maxAge time.Duration
}

// NewConditionsHandler creates a new conditions handler. Successful lookups
// may be cached by clients for maxAge.
func NewConditionsHandler(deps ConditionsDependencies, maxAge time.Duration) *ConditionsHandler {
	return &ConditionsHandler{deps: deps, maxAge: maxAge}
}

// HandleGetConditions handles GET /conditions requests.
func (h *ConditionsHandler) HandleGetConditions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_conditions"
	p := &queryParser{values: r.URL.Query()}
	q := parseConditionsQuery(p)
	ro := renderFlags(p)
	if p.err != nil {
		writeFailure(w, r, WrapKind(op, ErrBadRequest, p.err))
		return
	}
	if err := check(op, q); err != nil {
		writeFailure(w, r, err)
		return
	}

	res, err := h.deps.Conditions(r.Context(), q.query())
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}
	if h.maxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.maxAge.Seconds())))
	}
	writeJSON(w, http.StatusOK, newConditionsResponse(res, ro))
}

func renderFlags(p *queryParser) renderOptions {
	ro := renderOptions{hourly: true, windows: true}
	if v := p.boolParam("hourly"); v != nil {
		ro.hourly = *v
	}
	if v := p.boolParam("windows"); v != nil {
		ro.windows = *v
	}
	return ro
}

// evaluateRequest rates a caller supplied forecast.
type evaluateRequest struct {
	RockType       string      `json:"rock_type" validate:"omitempty,max=32"`
	RecentPrecipMm float64     `json:"recent_precip_mm" validate:"gte=0,lte=500"`
	SeedAgeHours   float64     `json:"seed_age_hours" validate:"gte=0,lte=720"`
	IncludeNight   *bool       `json:"include_night"`
	Hourly         *bool       `json:"hourly"`
	Windows        bool        `json:"windows"`
	MinRating      string      `json:"min_rating" validate:"omitempty,oneof=poor ok good great excellent"`
	MaxWindows     int         `json:"max_windows" validate:"omitempty,gte=1,lte=24"`
	Weather        snapshotDTO `json:"weather"`
}

func (e evaluateRequest) options() []conditions.RequestOption {
	var opts []conditions.RequestOption
	if e.IncludeNight != nil {
		opts = append(opts, conditions.IncludeNightHours(*e.IncludeNight))
	}
	if e.Hourly != nil && !*e.Hourly {
		opts = append(opts, conditions.WithoutHourly())
	}
	if e.SeedAgeHours > 0 {
		opts = append(opts, conditions.WithSeedAge(time.Duration(e.SeedAgeHours*float64(time.Hour))))
	}
	if e.Windows {
		opts = append(opts, conditions.WithWindows())
		if c, err := rating.Parse(e.MinRating); err == nil && e.MinRating != "" {
			opts = append(opts, conditions.WithWindowRating(c))
		}
		opts = append(opts, conditions.WithWindowLimit(e.MaxWindows))
	}
	return opts
}

// HandleEvaluate handles POST /conditions/evaluate requests.
func (h *ConditionsHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate_conditions"
	var req evaluateRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	res := h.deps.Evaluate(req.Weather.model(), rock.Parse(req.RockType), req.RecentPrecipMm, req.options()...)
	writeJSON(w, http.StatusOK, newConditionsResponse(res, renderOptions{hourly: true, windows: req.Windows}))
}

type batchRequest struct {
	Queries []conditionsQuery `json:"queries" validate:"required,min=1,dive"`
	Hourly  bool              `json:"hourly"`
	Windows bool              `json:"windows"`
}

type batchResult struct {
	Index      int                 `json:"index"`
	Conditions *conditionsResponse `json:"conditions,omitempty"`
	Error      *errorResponse      `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchResult `json:"results"`
}

// HandleBatch handles POST /conditions/batch requests.
func (h *ConditionsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch_conditions"
	var req batchRequest
	if err := decodeBody(op, r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	qs := make([]service.Query, len(req.Queries))
	for i, q := range req.Queries {
		qs[i] = q.query()
	}
	items, err := h.deps.Batch(r.Context(), qs)
	if err != nil {
		writeFailure(w, r, Wrap(op, err))
		return
	}

	ro := renderOptions{hourly: req.Hourly, windows: req.Windows}
	out := batchResponse{Results: make([]batchResult, len(items))}
	for i, item := range items {
		out.Results[i].Index = i
		if item.Err != nil {
			_, code := statusFor(item.Err)
			out.Results[i].Error = &errorResponse{Code: code, Message: item.Err.Error()}
			continue
		}
		c := newConditionsResponse(item.Result, ro)
		out.Results[i].Conditions = &c
	}
	writeJSON(w, http.StatusOK, out)
}

