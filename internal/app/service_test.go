package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	service "github.com/okian/cragcast/internal/app"
	"github.com/okian/cragcast/internal/adapters/repository"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	"github.com/okian/cragcast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// fakeProvider serves 48 dry, mild hours and counts its calls.
type fakeProvider struct {
	calls atomic.Int32
	fail  map[float64]error
	mu    sync.Mutex
	days  []int
}

func (p *fakeProvider) Forecast(_ context.Context, loc model.Location, days int) (model.Forecast, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.days = append(p.days, days)
	p.mu.Unlock()
	if err := p.fail[loc.Lat]; err != nil {
		return model.Forecast{}, err
	}
	hourly := make([]model.HourlyReading, 48)
	for i := range hourly {
		hourly[i] = model.HourlyReading{
			Time:        day.Add(time.Duration(i) * time.Hour),
			TempC:       16,
			HumidityPct: 40,
			WindKph:     8,
		}
	}
	return model.Forecast{Snapshot: model.WeatherSnapshot{Current: hourly[10], Hourly: hourly}}, nil
}

func query(lat float64) service.Query {
	return service.Query{Location: model.Location{Lat: lat, Lon: 11}, RockType: rock.Granite}
}

func TestService_Conditions(t *testing.T) {
	Convey("Given a service with a fake provider", t, func() {
		provider := &fakeProvider{}
		svc := service.New(service.WithProvider(provider))
		ctx := context.Background()

		Convey("When conditions are requested", func() {
			res, err := svc.Conditions(ctx, query(46))

			Convey("Then the engine rates the forecast", func() {
				So(err, ShouldBeNil)
				So(res.RockType, ShouldEqual, rock.Granite)
				So(res.Current.Rating, ShouldBeGreaterThanOrEqualTo, rating.Great)
				So(res.Hourly, ShouldNotBeEmpty)
				So(res.OptimalWindows, ShouldNotBeEmpty)
			})

			Convey("Then night hours are left out by default", func() {
				for _, h := range res.Hourly {
					So(h.Daylight, ShouldBeTrue)
				}
			})

			Convey("Then the default forecast length is requested", func() {
				So(provider.days, ShouldResemble, []int{7})
			})

			Convey("Then a repeated lookup is served from the cache", func() {
				_, err := svc.Conditions(ctx, query(46))
				So(err, ShouldBeNil)
				So(provider.calls.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the same place is asked for in two timezones", func() {
			rome, tokyo := query(46), query(46)
			rome.Location.Timezone = "Europe/Rome"
			tokyo.Location.Timezone = "Asia/Tokyo"
			_, err := svc.Conditions(ctx, rome)
			So(err, ShouldBeNil)
			_, err = svc.Conditions(ctx, tokyo)
			So(err, ShouldBeNil)

			Convey("Then each zone gets its own cached result", func() {
				So(provider.calls.Load(), ShouldEqual, 2)
				_, _ = svc.Conditions(ctx, tokyo)
				So(provider.calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When night hours are asked for", func() {
			night := true
			q := query(46)
			q.IncludeNight = &night
			res, err := svc.Conditions(ctx, q)

			Convey("Then every hour is returned", func() {
				So(err, ShouldBeNil)
				So(len(res.Hourly), ShouldEqual, 48)
			})
		})

		Convey("When the coordinates are out of range", func() {
			_, err := svc.Conditions(ctx, query(123))

			Convey("Then the query is rejected without calling the provider", func() {
				So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
				So(provider.calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When too many days are asked for", func() {
			q := query(46)
			q.Days = 30
			_, err := svc.Conditions(ctx, q)

			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})

		Convey("When the provider fails", func() {
			provider.fail = map[float64]error{10: errors.New("boom")}
			_, err := svc.Conditions(ctx, query(10))

			Convey("Then the error is passed on and nothing is cached", func() {
				So(err, ShouldNotBeNil)
				_, _ = svc.Conditions(ctx, query(10))
				So(provider.calls.Load(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a service without a provider", t, func() {
		_, err := service.New().Conditions(context.Background(), query(46))
		So(errors.Is(err, service.ErrNoProvider), ShouldBeTrue)
	})
}

func TestService_Windows(t *testing.T) {
	Convey("Given a service with a fake provider", t, func() {
		svc := service.New(service.WithProvider(&fakeProvider{}))

		Convey("When windows are requested with a limit of one", func() {
			w, err := svc.Windows(context.Background(), query(46), rating.Good, 1)

			Convey("Then a single daytime window is returned", func() {
				So(err, ShouldBeNil)
				So(w, ShouldHaveLength, 1)
				So(w[0].DurationHours, ShouldBeGreaterThan, 0)
				So(w[0].Rating, ShouldBeGreaterThanOrEqualTo, rating.Good)
			})
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a caller supplied snapshot", t, func() {
		provider := &fakeProvider{}
		svc := service.New(service.WithProvider(provider))
		snap := model.WeatherSnapshot{Current: model.HourlyReading{TempC: 17, HumidityPct: 60, WindKph: 5, PrecipMm: 2}}

		Convey("When it is evaluated", func() {
			res := svc.Evaluate(snap, rock.Sandstone, 0)

			Convey("Then wet sandstone is poor and the provider is not used", func() {
				So(res.Current.Rating, ShouldEqual, rating.Poor)
				So(provider.calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When a bare series is searched for windows", func() {
			f, _ := provider.Forecast(context.Background(), model.Location{}, 2)
			w := svc.EvaluateWindows(f.Snapshot.Hourly, rock.Granite)

			So(w, ShouldNotBeEmpty)
		})
	})
}

func TestService_Batch(t *testing.T) {
	Convey("Given a service with a batch limit of three", t, func() {
		provider := &fakeProvider{fail: map[float64]error{20: errors.New("down")}}
		svc := service.New(service.WithProvider(provider), service.WithBatchLimit(3))

		Convey("When a batch with one failing query runs", func() {
			items, err := svc.Batch(context.Background(), []service.Query{query(10), query(20), query(30)})

			Convey("Then the failure stays in its item", func() {
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 3)
				So(items[0].Err, ShouldBeNil)
				So(items[1].Err, ShouldNotBeNil)
				So(items[2].Err, ShouldBeNil)
				So(items[2].Query.Location.Lat, ShouldEqual, 30)
			})
		})

		Convey("When the batch is too large", func() {
			_, err := svc.Batch(context.Background(), []service.Query{query(1), query(2), query(3), query(4)})

			So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
		})
	})
}

func TestService_Refresh(t *testing.T) {
	Convey("Given a started service tracking two crags", t, func() {
		clock := clockwork.NewFakeClockAt(day)
		provider := &fakeProvider{}
		crags := []model.Crag{
			{ID: "ceuse", Name: "Ceuse", Location: model.Location{Lat: 44.5, Lon: 5.9}, RockType: rock.Limestone},
			{ID: "bugaboos", Name: "Bugaboos", Location: model.Location{Lat: 50.7, Lon: -116.8}, RockType: rock.Granite},
		}
		svc := service.New(
			service.WithProvider(provider),
			service.WithClock(clock),
			service.WithCrags(crags),
			service.WithWorkerCount(2),
			service.WithRefreshInterval(time.Minute),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then both crags get ranked", func() {
			So(eventually(func() bool { return svc.GetStats()["rankedCrags"] == 2 }), ShouldBeTrue)

			top, err := svc.TopCrags(ctx, 10)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 2)
			So(top[0].Rank, ShouldEqual, 1)
			So(top[0].UpdatedAt, ShouldEqual, day)

			e, err := svc.CragRank(ctx, "ceuse")
			So(err, ShouldBeNil)
			So(e.Name, ShouldEqual, "Ceuse")
			So(e.RockType, ShouldEqual, "limestone")
		})

		Convey("Then the next tick refreshes them again", func() {
			So(eventually(func() bool { return provider.calls.Load() == 2 }), ShouldBeTrue)
			So(clock.BlockUntilContext(ctx, 1), ShouldBeNil)
			clock.Advance(time.Minute)
			So(eventually(func() bool { return provider.calls.Load() == 4 }), ShouldBeTrue)
		})

		Convey("Then an unknown crag is not found", func() {
			_, err := svc.CragRank(ctx, "nowhere")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("Then stats report the running pipeline", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["crags"], ShouldEqual, 2)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithProvider(&fakeProvider{}))

		Convey("When started twice and stopped twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then it ends up stopped", func() {
				So(svc.GetStats()["started"], ShouldBeFalse)
			})
		})
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
