package scoring_test

import (
	"testing"

	"github.com/okian/cragcast/internal/domain/drying"
	"github.com/okian/cragcast/internal/domain/model"
	"github.com/okian/cragcast/internal/domain/rock"
	scoring "github.com/okian/cragcast/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func reading(tempC, humidity, wind float64) model.HourlyReading {
	return model.HourlyReading{TempC: tempC, HumidityPct: humidity, WindKph: wind}
}

func TestFrictionScorer_Score(t *testing.T) {
	Convey("Given a default friction scorer", t, func() {
		scorer := scoring.NewFrictionScorer()
		granite := rock.ProfileFor(rock.Granite)
		sandstone := rock.ProfileFor(rock.Sandstone)

		Convey("When granite is dry at 18C, 40% humidity and light wind", func() {
			res := scorer.Score(scoring.Input{Reading: reading(18, 40, 10), Profile: granite})

			Convey("Then every term is maxed and the score is the maximum", func() {
				So(res.Terms, ShouldResemble, scoring.Terms{Temperature: 1, Humidity: 1, Wind: 1, Dryness: 1})
				So(res.Score, ShouldEqual, scoring.MaxScore)
				So(res.Capped, ShouldBeFalse)
			})
		})

		Convey("When the rock is fully wet", func() {
			res := scorer.Score(scoring.Input{Reading: reading(14, 40, 5), Profile: granite, Wetness: drying.Raining()})

			Convey("Then it scores zero regardless of the other terms", func() {
				So(res.Score, ShouldEqual, 0)
			})
		})

		Convey("When sandstone is only slightly damp in perfect weather", func() {
			hours := 0.5
			res := scorer.Score(scoring.Input{
				Reading: reading(17, 30, 5),
				Profile: sandstone,
				Wetness: drying.Wetness{Fraction: 0.01, HoursToDry: &hours},
			})

			Convey("Then the score is capped at the safety ceiling", func() {
				So(res.Score, ShouldBeLessThanOrEqualTo, scoring.SafetyCeiling)
				So(res.Capped, ShouldBeTrue)
			})
		})

		Convey("When the wind exceeds the danger threshold", func() {
			res := scorer.Score(scoring.Input{Reading: reading(18, 40, 70), Profile: granite})

			Convey("Then the score is capped at the safety ceiling", func() {
				So(res.Score, ShouldEqual, scoring.SafetyCeiling)
				So(res.Capped, ShouldBeTrue)
			})
		})

		Convey("Scores always stay within 0 and 5", func() {
			for _, temp := range []float64{-30, 0, 10, 20, 35, 45} {
				for _, hum := range []float64{0, 30, 60, 90, 100} {
					for _, wind := range []float64{0, 20, 40, 80} {
						s := scorer.Score(scoring.Input{Reading: reading(temp, hum, wind), Profile: granite}).Score
						So(s, ShouldBeBetweenOrEqual, 0, scoring.MaxScore)
					}
				}
			}
		})
	})
}

func TestTerms(t *testing.T) {
	granite := rock.ProfileFor(rock.Granite)

	Convey("Temperature term", t, func() {
		So(scoring.TemperatureTerm(granite.OptimalTemp.Midpoint(), granite), ShouldEqual, 1)
		So(scoring.TemperatureTerm(granite.OptimalTemp.Max, granite), ShouldEqual, 0)
		So(scoring.TemperatureTerm(40, granite), ShouldEqual, 0)

		Convey("Cold falls off more gently than heat", func() {
			mid := granite.OptimalTemp.Midpoint()
			hot := scoring.TemperatureTerm(mid+8, granite)
			cold := scoring.TemperatureTerm(mid-8, granite)
			So(cold, ShouldBeGreaterThan, hot)
		})
	})

	Convey("Humidity term", t, func() {
		So(scoring.HumidityTerm(granite.IdealHumidityMax, granite), ShouldEqual, 1)
		So(scoring.HumidityTerm(80, granite), ShouldAlmostEqual, 0.5, 1e-9)
		So(scoring.HumidityTerm(100, granite), ShouldEqual, 0)
	})

	Convey("Wind term", t, func() {
		So(scoring.WindTerm(10, granite), ShouldEqual, 1)
		So(scoring.WindTerm(granite.WindHighKph, granite), ShouldAlmostEqual, 0.7, 1e-9)
		So(scoring.WindTerm(granite.WindDangerKph, granite), ShouldAlmostEqual, 0.3, 1e-9)
		So(scoring.WindTerm(200, granite), ShouldEqual, 0)
	})
}

func TestWithWeightsFromConfig(t *testing.T) {
	Convey("Given weights that only value the wind", t, func() {
		scorer := scoring.NewFrictionScorer(scoring.WithWeightsFromConfig(map[string]float64{
			"temperature": 0,
			"humidity":    0,
			"wind":        2,
		}))
		granite := rock.ProfileFor(rock.Granite)

		Convey("Then a hot, humid but calm hour scores the maximum", func() {
			So(scorer.Score(scoring.Input{Reading: reading(35, 95, 0), Profile: granite}).Score, ShouldEqual, scoring.MaxScore)
		})
	})

	Convey("Given an all-zero weight set the defaults are kept", t, func() {
		scorer := scoring.NewFrictionScorer(scoring.WithWeights(0, 0, 0))
		So(scorer.Score(scoring.Input{Reading: reading(35, 95, 0), Profile: rock.ProfileFor(rock.Granite)}).Score, ShouldBeLessThan, scoring.MaxScore)
	})
}
