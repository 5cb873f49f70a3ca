package conditions

import (
	"sort"
	"time"

	"github.com/okian/cragcast/internal/domain/rating"
	"github.com/okian/cragcast/internal/domain/scoring"
	"gonum.org/v1/gonum/stat"
)

// Window defaults.
const (
	DefaultMaxWindows = 5
	DefaultMinRating  = rating.Good
)

// Window is a run of consecutive climbable hours.
type Window struct {
	Start         time.Time
	End           time.Time // end of the last hour
	DurationHours int
	AverageScore  float64
	Rating        rating.Category
}

// FindWindows merges adjacent valid hours rated at least minRating into
// windows and returns the best maxWindows of them, ranked by average score,
// then duration, then start time. Hours are adjacent when their Index values
// are consecutive, so hours dropped from the series break a run.
func FindWindows(hours []AnnotatedHour, minRating rating.Category, maxWindows int) []Window {
	if maxWindows <= 0 {
		maxWindows = DefaultMaxWindows
	}
	windows := []Window{}
	var run []AnnotatedHour
	flush := func() {
		if len(run) > 0 {
			windows = append(windows, newWindow(run))
			run = run[:0]
		}
	}

	for _, h := range hours {
		if !h.Valid || h.Rating < minRating {
			flush()
			continue
		}
		if len(run) > 0 && run[len(run)-1].Index+1 != h.Index {
			flush()
		}
		run = append(run, h)
	}
	flush()

	sort.SliceStable(windows, func(i, j int) bool {
		a, b := windows[i], windows[j]
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		if a.DurationHours != b.DurationHours {
			return a.DurationHours > b.DurationHours
		}
		return a.Start.Before(b.Start)
	})
	if len(windows) > maxWindows {
		windows = windows[:maxWindows]
	}
	return windows
}

func newWindow(run []AnnotatedHour) Window {
	scores := make([]float64, len(run))
	for i, h := range run {
		scores[i] = h.Score
	}
	avg := scoring.Round(stat.Mean(scores, nil))
	last := run[len(run)-1].Reading
	return Window{
		Start:         run[0].Reading.Time,
		End:           last.End(),
		DurationHours: len(run),
		AverageScore:  avg,
		Rating:        rating.ForScore(avg),
	}
}
