package conditions_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	. "github.com/smartystreets/goconvey/convey"
)

var start = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// series builds n hours of weather from a per-hour generator.
func series(n int, gen func(i int) model.HourlyReading) []model.HourlyReading {
	out := make([]model.HourlyReading, n)
	for i := range out {
		r := gen(i)
		r.Time = start.Add(time.Duration(i) * time.Hour)
		out[i] = r
	}
	return out
}

func ideal(int) model.HourlyReading {
	return model.HourlyReading{TempC: 14, HumidityPct: 50, WindKph: 8}
}

func hot(int) model.HourlyReading {
	return model.HourlyReading{TempC: 34, HumidityPct: 90, WindKph: 8}
}

func TestComputeConditions(t *testing.T) {
	engine := conditions.New()

	Convey("Given dry granite at 18C with 40% humidity and 10 kph wind", t, func() {
		snap := model.WeatherSnapshot{Current: model.HourlyReading{TempC: 18, HumidityPct: 40, WindKph: 10}}
		res := engine.ComputeConditions(snap, rock.Granite, 0)

		Convey("Then the current rating is great or excellent without warnings", func() {
			So(res.Current.Rating, ShouldBeGreaterThanOrEqualTo, rating.Great)
			So(res.Current.Reasons, ShouldContain, rating.PerfectTemp{TempC: 18})
			So(res.Current.Reasons, ShouldContain, rating.LowHumidityGranite{Pct: 40})
			So(res.Current.Warnings, ShouldBeEmpty)
		})

		Convey("Then the empty series yields empty, non-nil results", func() {
			So(res.Hourly, ShouldNotBeNil)
			So(res.Hourly, ShouldBeEmpty)
			So(res.Daily, ShouldBeEmpty)
		})
	})

	Convey("Given sandstone with rain falling now", t, func() {
		snap := model.WeatherSnapshot{Current: model.HourlyReading{TempC: 17, HumidityPct: 60, WindKph: 5, PrecipMm: 2}}
		res := engine.ComputeConditions(snap, rock.Sandstone, 0)

		So(res.Current.Rating, ShouldEqual, rating.Poor)
		So(res.Current.Warnings, ShouldContain, rating.CurrentlyWetDangerous{})
	})

	Convey("Given limestone two hours after 5mm of rain", t, func() {
		hourly := series(3, func(i int) model.HourlyReading {
			r := model.HourlyReading{TempC: 15, HumidityPct: 60, WindKph: 5}
			if i == 0 {
				r.PrecipMm = 5
			}
			return r
		})
		snap := model.WeatherSnapshot{Current: hourly[2], Hourly: hourly}
		res := engine.ComputeConditions(snap, rock.Limestone, 0, conditions.IncludeNightHours(true))

		Convey("Then the rock is partly wet with about 5.5 hours to dry", func() {
			w := res.Current.Wetness
			So(w.Fraction, ShouldBeBetween, 0, 1)
			So(w.HoursToDry, ShouldNotBeNil)
			So(*w.HoursToDry, ShouldAlmostEqual, 5.5, 1e-9)
			So(res.Current.Reasons, ShouldContain, rating.ReadyInHours{Hours: 6})
		})
	})

	Convey("Given a recent precipitation seed and a dry series", t, func() {
		hourly := series(12, ideal)
		snap := model.WeatherSnapshot{Current: hourly[0], Hourly: hourly}
		res := engine.ComputeConditions(snap, rock.Limestone, 4, conditions.IncludeNightHours(true))

		Convey("Then the first hours are wet and the rock dries monotonically", func() {
			So(res.Hourly[0].Wetness.Fraction, ShouldEqual, 1)
			prev := 1.0
			for _, h := range res.Hourly {
				So(h.Wetness.Fraction, ShouldBeLessThanOrEqualTo, prev)
				prev = h.Wetness.Fraction
			}
			So(res.Hourly[11].Wetness.Fraction, ShouldEqual, 0)
		})
	})

	Convey("Given granite in a 70 kph wind", t, func() {
		snap := model.WeatherSnapshot{Current: model.HourlyReading{TempC: 18, HumidityPct: 40, WindKph: 70}}
		res := engine.ComputeConditions(snap, rock.Granite, 0)

		So(res.Current.Warnings, ShouldContain, rating.VeryHighWind{Kph: 70})
		So(res.Current.Rating, ShouldEqual, rating.Poor)
	})

	Convey("Given an unknown rock type", t, func() {
		snap := model.WeatherSnapshot{Current: model.HourlyReading{TempC: 15, HumidityPct: 50, WindKph: 5}}
		res := engine.ComputeConditions(snap, rock.Type("marble"), 0)

		Convey("Then the generic profile is used", func() {
			So(res.RockType, ShouldEqual, rock.Unknown)
			So(res.Current.Valid, ShouldBeTrue)
		})
	})

	Convey("Given a full day of ideal weather", t, func() {
		hourly := series(24, ideal)
		snap := model.WeatherSnapshot{Current: hourly[10], Hourly: hourly}

		Convey("When night hours are excluded", func() {
			res := engine.ComputeConditions(snap, rock.Granite, 0, conditions.WithWindows())

			Convey("Then only daylight hours are returned", func() {
				So(len(res.Hourly), ShouldEqual, 15)
				for _, h := range res.Hourly {
					So(h.Daylight, ShouldBeTrue)
				}
			})

			Convey("Then the day forms a single window", func() {
				So(res.OptimalWindows, ShouldHaveLength, 1)
				So(res.OptimalWindows[0].DurationHours, ShouldEqual, 15)
				So(res.OptimalWindows[0].Start, ShouldEqual, start.Add(6*time.Hour))
			})

			Convey("Then the day is summarized", func() {
				So(res.Daily, ShouldHaveLength, 1)
				So(res.Daily[0].ClimbableHours, ShouldEqual, 15)
				So(res.Daily[0].HighC, ShouldEqual, 14)
				So(res.Daily[0].Rating, ShouldEqual, rating.Excellent)
			})
		})

		Convey("When night hours are included", func() {
			res := engine.ComputeConditions(snap, rock.Granite, 0, conditions.IncludeNightHours(true))
			So(len(res.Hourly), ShouldEqual, 24)
		})

		Convey("When the series is left out", func() {
			res := engine.ComputeConditions(snap, rock.Granite, 0, conditions.WithoutHourly())
			So(res.Hourly, ShouldBeEmpty)
			So(res.Daily, ShouldHaveLength, 1)
		})
	})

	Convey("Given the same inputs twice", t, func() {
		hourly := series(48, func(i int) model.HourlyReading {
			r := ideal(i)
			r.TempC = 5 + float64(i%24)
			if i%17 == 0 {
				r.PrecipMm = 1
			}
			return r
		})
		snap := model.WeatherSnapshot{Current: hourly[5], Hourly: hourly}
		a := engine.ComputeConditions(snap, rock.Sandstone, 3, conditions.WithWindows())
		b := engine.ComputeConditions(snap, rock.Sandstone, 3, conditions.WithWindows())

		So(a, ShouldResemble, b)

		Convey("Then wet sandstone never rates above poor", func() {
			for _, h := range a.Hourly {
				if h.Wetness.Fraction > 0 {
					So(h.Rating, ShouldEqual, rating.Poor)
				}
			}
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a series with a corrupt reading", t, func() {
		hourly := series(6, ideal)
		hourly[3].HumidityPct = math.NaN()
		hours := conditions.Evaluate(hourly, rock.Granite, 0, conditions.EvaluateOptions{IncludeNightHours: true})

		Convey("Then the reading is marked missing and the rest is scored", func() {
			So(hours, ShouldHaveLength, 6)
			So(hours[3].Valid, ShouldBeFalse)
			So(hours[3].Warnings, ShouldContain, rating.MissingData{})
			So(hours[2].Valid, ShouldBeTrue)
			So(hours[2].Score, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given unordered timestamps", t, func() {
		hourly := series(4, ideal)
		hourly[0].PrecipMm = 2
		hourly[2].Time = hourly[0].Time
		hours := conditions.Evaluate(hourly, rock.Granite, 0, conditions.EvaluateOptions{IncludeNightHours: true})

		Convey("Then the index distance is used and evaluation completes", func() {
			So(hours, ShouldHaveLength, 4)
			So(hours[2].Wetness.HoursToDry, ShouldBeNil)
			So(hours[1].Wetness.Fraction, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given sandstone soaked by 10mm and a later drizzle", t, func() {
		mild := func(int) model.HourlyReading {
			return model.HourlyReading{TempC: 17, HumidityPct: 40, WindKph: 5}
		}
		soaked := series(8, mild)
		soaked[0].PrecipMm = 10
		drizzled := series(8, mild)
		drizzled[0].PrecipMm = 10
		drizzled[2].PrecipMm = 0.1

		opts := conditions.EvaluateOptions{IncludeNightHours: true}
		before := conditions.Evaluate(soaked, rock.Sandstone, 0, opts)
		after := conditions.Evaluate(drizzled, rock.Sandstone, 0, opts)

		Convey("Then the drizzle does not dry the rock", func() {
			for i := 3; i <= 5; i++ {
				So(after[i].Rating, ShouldEqual, rating.Poor)
				So(after[i].Wetness.Fraction, ShouldBeGreaterThanOrEqualTo, before[i].Wetness.Fraction)
				So(after[i].Wetness.Fraction, ShouldBeGreaterThan, 0.5)
				So(after[i].Warnings, ShouldContain, rating.WetDangerous{RockType: rock.Sandstone})
			}
		})
	})

	Convey("Given an empty series", t, func() {
		hours := conditions.Evaluate(nil, rock.Granite, 10, conditions.EvaluateOptions{})
		So(hours, ShouldNotBeNil)
		So(hours, ShouldBeEmpty)
	})
}
