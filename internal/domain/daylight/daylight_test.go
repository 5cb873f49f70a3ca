package daylight_test

import (
	"testing"
	"time"

	"github.com/okian/cragcast/internal/domain/daylight"
	"github.com/okian/cragcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestElevation(t *testing.T) {
	Convey("Given Yosemite Valley in midsummer", t, func() {
		// 37.74N 119.59W, UTC-7 in July
		noon := time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)
		midnight := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

		So(daylight.Elevation(37.74, -119.59, noon), ShouldBeGreaterThan, 60)
		So(daylight.Elevation(37.74, -119.59, midnight), ShouldBeLessThan, -20)

		s := daylight.Solar{Lat: 37.74, Lon: -119.59}
		So(s.IsDay(noon), ShouldBeTrue)
		So(s.IsDay(midnight), ShouldBeFalse)
	})
}

func TestHours(t *testing.T) {
	Convey("Given the fixed-hours classifier", t, func() {
		h := daylight.Hours{First: 6, Last: 20, Zone: time.UTC}
		So(h.IsDay(time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)), ShouldBeTrue)
		So(h.IsDay(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)), ShouldBeTrue)
		So(h.IsDay(time.Date(2025, 1, 1, 21, 0, 0, 0, time.UTC)), ShouldBeFalse)
		So(h.IsDay(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)), ShouldBeFalse)
	})

	Convey("Given the fixed-hours classifier without a zone", t, func() {
		h := daylight.Hours{First: 6, Last: 20}
		jst := time.FixedZone("JST", 9*60*60)

		Convey("Then timestamps are read in their own offset", func() {
			So(h.IsDay(time.Date(2025, 1, 1, 10, 0, 0, 0, jst)), ShouldBeTrue)
			So(h.IsDay(time.Date(2025, 1, 1, 2, 0, 0, 0, jst)), ShouldBeFalse)
		})
	})
}

func TestForSnapshot(t *testing.T) {
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	Convey("Given a snapshot with provider sunrise and sunset", t, func() {
		snap := model.WeatherSnapshot{DailySummaries: []model.DailyWeather{{
			Date:    day,
			Sunrise: day.Add(7*time.Hour + 15*time.Minute),
			Sunset:  day.Add(19*time.Hour + 40*time.Minute),
		}}}
		c := daylight.ForSnapshot(snap)

		Convey("Then hours are split at sunrise and sunset", func() {
			So(c.IsDay(day.Add(6*time.Hour)), ShouldBeFalse)
			So(c.IsDay(day.Add(7*time.Hour)), ShouldBeTrue)
			So(c.IsDay(day.Add(19*time.Hour)), ShouldBeTrue)
			So(c.IsDay(day.Add(20*time.Hour)), ShouldBeFalse)
		})

		Convey("Then days without sun times use fixed hours", func() {
			So(c.IsDay(day.Add(24*time.Hour+12*time.Hour)), ShouldBeTrue)
			So(c.IsDay(day.Add(24*time.Hour+23*time.Hour)), ShouldBeFalse)
		})
	})

	Convey("Given a snapshot with only a location", t, func() {
		snap := model.WeatherSnapshot{Location: &model.Location{Lat: 0, Lon: 0}}
		c := daylight.ForSnapshot(snap)
		So(c.IsDay(day.Add(12*time.Hour)), ShouldBeTrue)
		So(c.IsDay(day.Add(0*time.Hour)), ShouldBeFalse)
	})

	Convey("Given a snapshot without a location and +09:00 timestamps", t, func() {
		jst := time.FixedZone("JST", 9*60*60)
		c := daylight.ForSnapshot(model.WeatherSnapshot{})

		Convey("Then the fixed hours follow the local clock", func() {
			So(c.IsDay(time.Date(2025, 4, 10, 9, 0, 0, 0, jst)), ShouldBeTrue)
			So(c.IsDay(time.Date(2025, 4, 10, 22, 0, 0, 0, jst)), ShouldBeFalse)
		})
	})
}
