package conditions_test

import (
	"testing"
	"time"

	"github.com/okian/cragcast/internal/domain/conditions"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/rock"
	. "github.com/smartystreets/goconvey/convey"
)

func scored(idx int, score float64) conditions.AnnotatedHour {
	return conditions.AnnotatedHour{
		Index:   idx,
		Reading: model.HourlyReading{Time: start.Add(time.Duration(idx) * time.Hour)},
		Valid:   true,
		Score:   score,
		Rating:  rating.ForScore(score),
	}
}

func TestFindOptimalWindows(t *testing.T) {
	Convey("Given 48 hours with one good run from hour 10 to 13", t, func() {
		hourly := series(48, func(i int) model.HourlyReading {
			if i >= 10 && i <= 13 {
				return ideal(i)
			}
			return hot(i)
		})
		windows := conditions.New().FindOptimalWindows(hourly, rock.Granite)

		Convey("Then exactly one window spans those hours", func() {
			So(windows, ShouldHaveLength, 1)
			So(windows[0].Start, ShouldEqual, start.Add(10*time.Hour))
			So(windows[0].End, ShouldEqual, start.Add(14*time.Hour))
			So(windows[0].DurationHours, ShouldEqual, 4)
			So(windows[0].Rating, ShouldBeGreaterThanOrEqualTo, rating.Good)
		})
	})

	Convey("Given 48 hours stamped at +09:00, good from 10:00 to 13:00 local", t, func() {
		jst := time.FixedZone("JST", 9*60*60)
		first := time.Date(2025, 6, 1, 0, 0, 0, 0, jst)
		hourly := make([]model.HourlyReading, 48)
		for i := range hourly {
			if i >= 10 && i <= 13 {
				hourly[i] = ideal(i)
			} else {
				hourly[i] = hot(i)
			}
			hourly[i].Time = first.Add(time.Duration(i) * time.Hour)
		}
		windows := conditions.New().FindOptimalWindows(hourly, rock.Granite)

		Convey("Then the local daytime hours form the window", func() {
			So(windows, ShouldHaveLength, 1)
			So(windows[0].Start.Equal(first.Add(10*time.Hour)), ShouldBeTrue)
			So(windows[0].DurationHours, ShouldEqual, 4)
		})
	})

	Convey("Given a series with no good hour", t, func() {
		windows := conditions.New().FindOptimalWindows(series(24, hot), rock.Granite)

		Convey("Then the result is empty", func() {
			So(windows, ShouldNotBeNil)
			So(windows, ShouldBeEmpty)
		})
	})
}

func TestFindWindows(t *testing.T) {
	Convey("Given several qualifying runs", t, func() {
		hours := []conditions.AnnotatedHour{
			scored(0, 3.0), scored(1, 3.0), // avg 3.0, 2h
			scored(2, 1.0),
			scored(3, 4.5), // avg 4.5, 1h
			scored(4, 0.5),
			scored(5, 3.0), scored(6, 3.0), scored(7, 3.0), // avg 3.0, 3h
			scored(8, 0.5),
			scored(9, 3.0), scored(10, 3.0), // avg 3.0, 2h, later
		}

		Convey("Then they are ranked by average, then duration, then start", func() {
			windows := conditions.FindWindows(hours, rating.Good, 5)
			So(windows, ShouldHaveLength, 4)
			So(windows[0].Start, ShouldEqual, start.Add(3*time.Hour))
			So(windows[1].DurationHours, ShouldEqual, 3)
			So(windows[2].Start, ShouldEqual, start)
			So(windows[3].Start, ShouldEqual, start.Add(9*time.Hour))
		})

		Convey("Then the result is truncated to the limit", func() {
			So(conditions.FindWindows(hours, rating.Good, 2), ShouldHaveLength, 2)
		})

		Convey("Then a zero limit falls back to the default", func() {
			So(conditions.FindWindows(hours, rating.Good, 0), ShouldHaveLength, 4)
		})

		Convey("Then a stricter minimum keeps only the best run", func() {
			windows := conditions.FindWindows(hours, rating.Excellent, 5)
			So(windows, ShouldHaveLength, 1)
			So(windows[0].AverageScore, ShouldEqual, 4.5)
		})
	})

	Convey("Given qualifying hours separated by a filtered-out hour", t, func() {
		hours := []conditions.AnnotatedHour{scored(0, 4), scored(1, 4), scored(3, 4)}

		Convey("Then the gap splits the run", func() {
			windows := conditions.FindWindows(hours, rating.Good, 5)
			So(windows, ShouldHaveLength, 2)
			So(windows[0].DurationHours, ShouldEqual, 2)
		})
	})

	Convey("Given an invalid hour inside a run", t, func() {
		bad := scored(1, 4)
		bad.Valid = false
		hours := []conditions.AnnotatedHour{scored(0, 4), bad, scored(2, 4)}

		Convey("Then it is never part of a window, even at the lowest threshold", func() {
			windows := conditions.FindWindows(hours, rating.Poor, 5)
			So(windows, ShouldHaveLength, 2)
			for _, w := range windows {
				So(w.DurationHours, ShouldEqual, 1)
			}
		})
	})
}
