package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/cragcast/internal/adapters/cache"
	"github.com/okian/cragcast/internal/adapters/http/api"
	"github.com/okian/cragcast/internal/adapters/http/swagger"
	"github.com/okian/cragcast/internal/adapters/weather"
	service "github.com/okian/cragcast/internal/app"
	"github.com/okian/cragcast/internal/config"
	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	"github.com/okian/cragcast/internal/domain/scoring"
	"github.com/okian/cragcast/pkg/logger"
	"github.com/okian/cragcast/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		log.Warn(ctx, "invalid log_format; keeping text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	} else if err := logger.Init(); err == nil {
		log = logger.Get()
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newService builds the conditions service and its collaborators from cfg.
func newService(cfg *config.Config, log logger.Logger) *service.Service {
	client := weather.NewClient(
		weather.WithBaseURL(cfg.WeatherBaseURL),
		weather.WithTimeout(time.Duration(cfg.WeatherTimeoutMS)*time.Millisecond),
		weather.WithRetryPolicy(retryPolicy(cfg.WeatherMaxRetries)),
		weather.WithPastDays(cfg.PastDays),
		weather.WithLogger(log.Named("weather")),
	)

	// Validated by config.Load.
	minRating, _ := rating.Parse(cfg.MinWindowRating)
	engine := conditions.New(
		conditions.WithScorer(scoring.NewFrictionScorer(scoring.WithWeightsFromConfig(cfg.ScoreWeights))),
		conditions.WithMaxWindows(cfg.MaxWindows),
		conditions.WithMinWindowRating(minRating),
		conditions.WithNightHours(cfg.IncludeNightHours),
	)

	results := cache.New[conditions.Result](
		cache.WithTTL(time.Duration(cfg.CacheTTLMinutes)*time.Minute),
		cache.WithMaxSize(cfg.CacheSize),
	)

	return service.New(
		service.WithLogger(log.Named("service")),
		service.WithProvider(client),
		service.WithEngine(engine),
		service.WithCache(results),
		service.WithCrags(crags(cfg.Crags)),
		service.WithForecastDays(cfg.ForecastDays),
		service.WithNightHours(cfg.IncludeNightHours),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithRefreshInterval(time.Duration(cfg.RefreshIntervalMinutes)*time.Minute),
		service.WithBatchLimit(cfg.BatchLimit),
		service.WithMaxCragsLimit(cfg.MaxCragsLimit),
	)
}

// newHandler registers the API and docs routes and wraps them with the
// request id and compression layers.
func newHandler(ctx context.Context, svc *service.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc, cfg.MaxCragsLimit,
		api.WithCacheMaxAge(time.Duration(cfg.CacheTTLMinutes)*time.Minute),
	)
	apiServer.Register(ctx, mux)

	return api.Handler(mux)
}

func retryPolicy(maxRetries int) weather.RetryPolicy {
	p := weather.DefaultRetryPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	return p
}

func crags(in []config.Crag) []model.Crag {
	out := make([]model.Crag, 0, len(in))
	for _, c := range in {
		out = append(out, model.Crag{
			ID:       c.ID,
			Name:     c.Name,
			Location: model.Location{Lat: c.Lat, Lon: c.Lon, Timezone: c.Timezone},
			RockType: rock.Parse(c.RockType),
		})
	}
	return out
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if entries, ok := stats["cacheEntries"].(int64); ok {
		metrics.UpdateCacheEntries(int(entries))
	}
	if ranked, ok := stats["rankedCrags"].(int); ok {
		metrics.UpdateRankedCrags(ranked)
	}
}
