// Package service wires the conditions engine to the weather provider, the
// cache, the crag ranking and the refresh pipeline, and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/okian/cragcast/internal/adapters/cache"
	"github.com/okian/cragcast/internal/adapters/mq/queue"
	"github.com/okian/cragcast/internal/adapters/mq/worker"
	"github.com/okian/cragcast/internal/adapters/repository"
	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	"github.com/okian/cragcast/internal/domain/types"
	"github.com/okian/cragcast/pkg/logger"
	"github.com/okian/cragcast/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Limits and defaults.
const (
	MaxForecastDays     = 16
	defaultForecastDays = 7
	batchConcurrency    = 4
)

// WeatherProvider fetches forecasts.
type WeatherProvider interface {
	Forecast(ctx context.Context, loc model.Location, days int) (model.Forecast, error)
}

// Query identifies a conditions lookup.
type Query struct {
	Location     model.Location
	RockType     rock.Type
	Days         int   // zero uses the service default
	IncludeNight *bool // nil uses the service default
}

// BatchItem is the outcome of one query of a batch.
type BatchItem struct {
	Query  Query
	Result conditions.Result
	Err    error
}

// Service implements the API dependencies for the conditions system.
type Service struct {
	mu sync.RWMutex

	provider WeatherProvider
	engine   *conditions.Engine
	cache    cache.Cache[conditions.Result]
	ranking  repository.Store
	clock    clockwork.Clock
	flight   singleflight.Group

	crags           []model.Crag
	forecastDays    int
	includeNight    bool
	workerCount     int
	queueSize       int
	refreshInterval time.Duration
	batchLimit      int
	maxCragsLimit   int

	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		engine:          conditions.New(),
		clock:           clockwork.NewRealClock(),
		forecastDays:    defaultForecastDays,
		workerCount:     runtime.NumCPU(),
		queueSize:       1000,
		refreshInterval: 30 * time.Minute,
		batchLimit:      20,
		maxCragsLimit:   100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New[conditions.Result](cache.WithClock(s.clock))
	}
	if s.ranking == nil {
		s.ranking = repository.NewTreapStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start launches the refresh workers and the scheduler that enqueues every
// configured crag now and then on every refresh interval.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.ranking)
	s.pool.Start(runCtx)

	s.wg.Add(1)
	go s.schedule(runCtx)

	s.started = true
	s.logger.Info(ctx, "conditions service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("crags", len(s.crags)),
		logger.Duration("refresh_interval", s.refreshInterval),
	)
	return nil
}

// Stop gracefully shuts down the background refresh.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping conditions service...")

	s.cancel()
	s.wg.Wait()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "conditions service stopped")
}

func (s *Service) schedule(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	s.enqueueAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if n := s.cache.Purge(ctx); n > 0 {
				s.logger.Debug(ctx, "purged expired conditions", logger.Int("entries", n))
			}
			s.enqueueAll(ctx)
		}
	}
}

func (s *Service) enqueueAll(ctx context.Context) {
	now := s.clock.Now()
	for _, c := range s.crags {
		if !s.queue.Enqueue(ctx, model.NewRefreshJob(c, now)) {
			metrics.RecordRefreshJob("dropped")
			s.logger.Warn(ctx, "refresh queue full, crag skipped", logger.String("crag_id", c.ID))
		}
	}
}

// Conditions returns the conditions report for q, from the cache when fresh.
func (s *Service) Conditions(ctx context.Context, q Query) (conditions.Result, error) {
	q, err := s.normalize(q)
	if err != nil {
		return conditions.Result{}, err
	}
	key := q.key()
	if res, ok := s.cache.Get(ctx, key); ok {
		return res, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		return s.compute(ctx, q)
	})
	if err != nil {
		return conditions.Result{}, err
	}
	return v.(conditions.Result), nil
}

// Windows returns the best climbing windows for q.
func (s *Service) Windows(ctx context.Context, q Query, minRating rating.Category, maxWindows int) ([]conditions.Window, error) {
	res, err := s.Conditions(ctx, q)
	if err != nil {
		return nil, err
	}
	w := conditions.FindWindows(res.Hourly, minRating, maxWindows)
	metrics.RecordWindowsFound(len(w))
	return w, nil
}

// Evaluate rates a caller supplied snapshot without contacting the provider.
func (s *Service) Evaluate(snapshot model.WeatherSnapshot, rt rock.Type, recentPrecipMm float64, opts ...conditions.RequestOption) conditions.Result {
	start := time.Now()
	res := s.engine.ComputeConditions(snapshot, rt, recentPrecipMm, opts...)
	s.observe(res, start)
	return res
}

// EvaluateWindows finds the best windows of a caller supplied series.
func (s *Service) EvaluateWindows(hourly []model.HourlyReading, rt rock.Type) []conditions.Window {
	w := s.engine.FindOptimalWindows(hourly, rt)
	metrics.RecordWindowsFound(len(w))
	return w
}

// Batch runs the queries concurrently. A failing query is reported in its
// item and does not fail the batch.
func (s *Service) Batch(ctx context.Context, qs []Query) ([]BatchItem, error) {
	if len(qs) > s.batchLimit {
		return nil, fmt.Errorf("%w: %d queries, limit %d", ErrBatchTooLarge, len(qs), s.batchLimit)
	}

	out := make([]BatchItem, len(qs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, q := range qs {
		g.Go(func() error {
			res, err := s.Conditions(gctx, q)
			out[i] = BatchItem{Query: q, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Refresh recomputes a crag's conditions, bypassing the cache, and returns
// its new ranking entry.
func (s *Service) Refresh(ctx context.Context, crag model.Crag) (types.CragEntry, error) {
	q, err := s.normalize(Query{Location: crag.Location, RockType: crag.RockType})
	if err != nil {
		return types.CragEntry{}, err
	}
	res, err := s.compute(ctx, q)
	if err != nil {
		return types.CragEntry{}, err
	}
	return types.CragEntry{
		CragID:    crag.ID,
		Name:      crag.Name,
		RockType:  string(res.RockType),
		Score:     res.Current.Score,
		Rating:    res.Current.Rating,
		UpdatedAt: s.clock.Now(),
	}, nil
}

// TopCrags returns the best ranked crags right now.
func (s *Service) TopCrags(ctx context.Context, n int) ([]types.CragEntry, error) {
	return s.ranking.TopN(ctx, min(n, s.maxCragsLimit))
}

// CragRank returns a crag's current standing.
func (s *Service) CragRank(ctx context.Context, id string) (types.CragEntry, error) {
	return s.ranking.Rank(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"crags":           len(s.crags),
		"rankedCrags":     s.ranking.Count(ctx),
		"cacheEntries":    s.cache.Size(),
		"forecastDays":    s.forecastDays,
		"refreshInterval": s.refreshInterval.String(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}

func (s *Service) compute(ctx context.Context, q Query) (conditions.Result, error) {
	if s.provider == nil {
		return conditions.Result{}, ErrNoProvider
	}
	f, err := s.provider.Forecast(ctx, q.Location, q.Days)
	if err != nil {
		metrics.RecordErrorByComponent("service", "provider")
		return conditions.Result{}, fmt.Errorf("forecast %.4f,%.4f: %w", q.Location.Lat, q.Location.Lon, err)
	}

	start := time.Now()
	res := s.engine.ComputeConditions(f.Snapshot, q.RockType, f.RecentPrecipMm,
		conditions.IncludeNightHours(*q.IncludeNight),
		conditions.WithWindows(),
		conditions.WithSeedAge(f.SeedAge),
	)
	s.observe(res, start)

	s.cache.Put(ctx, q.key(), res)
	return res, nil
}

func (s *Service) observe(res conditions.Result, start time.Time) {
	metrics.RecordEvaluation(string(res.RockType), float64(time.Since(start).Microseconds())/1000)
	metrics.RecordCurrentRating(res.Current.Rating.String())
}

func (s *Service) normalize(q Query) (Query, error) {
	l := q.Location
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lon) || l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
		return q, fmt.Errorf("%w: coordinates %v,%v out of range", ErrInvalidQuery, l.Lat, l.Lon)
	}
	if q.Days == 0 {
		q.Days = s.forecastDays
	}
	if q.Days < 1 || q.Days > MaxForecastDays {
		return q, fmt.Errorf("%w: days must be within 1..%d", ErrInvalidQuery, MaxForecastDays)
	}
	if q.IncludeNight == nil {
		night := s.includeNight
		q.IncludeNight = &night
	}
	q.RockType = rock.ProfileFor(q.RockType).Type
	return q, nil
}

func (q Query) key() string {
	return cache.Key(q.Location.Lat, q.Location.Lon, q.Location.Timezone, string(q.RockType), q.Days, q.IncludeNight != nil && *q.IncludeNight)
}
