// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/cragcast/pkg/logger"
)

// DefaultCacheMaxAge is how long clients may reuse a conditions response.
const DefaultCacheMaxAge = time.Hour

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ConditionsDependencies
	WindowsDependencies
	CragDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	conditionsHandler *ConditionsHandler
	windowsHandler    *WindowsHandler
	cragsHandler      *CragsHandler
	log               logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	cacheMaxAge time.Duration
	log         logger.Logger
}

// WithCacheMaxAge sets the Cache-Control max-age of conditions responses.
// Zero disables the header.
func WithCacheMaxAge(d time.Duration) ServerOption {
	return func(c *serverConfig) {
		if d >= 0 {
			c.cacheMaxAge = d
		}
	}
}

// WithLogger sets the logger for route registration.
func WithLogger(l logger.Logger) ServerOption {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int, opts ...ServerOption) *Server {
	cfg := serverConfig{cacheMaxAge: DefaultCacheMaxAge}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		conditionsHandler: NewConditionsHandler(deps, cfg.cacheMaxAge),
		windowsHandler:    NewWindowsHandler(deps),
		cragsHandler:      NewCragsHandler(deps, maxLimit),
		log:               cfg.log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /conditions", MetricsMiddleware(s.conditionsHandler.HandleGetConditions, "conditions"))
	mux.HandleFunc("POST /conditions/evaluate", MetricsMiddleware(s.conditionsHandler.HandleEvaluate, "conditions_evaluate"))
	mux.HandleFunc("POST /conditions/batch", MetricsMiddleware(s.conditionsHandler.HandleBatch, "conditions_batch"))

	mux.HandleFunc("GET /windows", MetricsMiddleware(s.windowsHandler.HandleGetWindows, "windows"))
	mux.HandleFunc("POST /windows/evaluate", MetricsMiddleware(s.windowsHandler.HandleEvaluateWindows, "windows_evaluate"))

	mux.HandleFunc("GET /crags/top", MetricsMiddleware(s.cragsHandler.HandleGetTop, "crags_top"))
	mux.HandleFunc("GET /crags/{id}", MetricsMiddleware(s.cragsHandler.HandleGetCrag, "crag"))

	s.log.Debug(ctx, "api routes registered")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes it; server side failures are logged.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= statusInternalError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
