// Package rating turns friction scores into categorical ratings and
// explains them with structured reason and warning codes.
package rating

import (
	"fmt"
	"strings"
)

// Category is an ordered climbing rating.
type Category int

// Ratings from worst to best.
const (
	Poor Category = iota
	OK
	Good
	Great
	Excellent
)

// Score thresholds, lower bound inclusive.
const (
	ExcellentFrom = 4.2
	GreatFrom     = 3.5
	GoodFrom      = 2.7
	OKFrom        = 1.8
)

var names = [...]string{"poor", "ok", "good", "great", "excellent"}

// ForScore maps a score in [0,5] onto its category.
func ForScore(score float64) Category {
	switch {
	case score >= ExcellentFrom:
		return Excellent
	case score >= GreatFrom:
		return Great
	case score >= GoodFrom:
		return Good
	case score >= OKFrom:
		return OK
	default:
		return Poor
	}
}

func (c Category) String() string {
	if c < Poor || c > Excellent {
		return fmt.Sprintf("rating(%d)", int(c))
	}
	return names[c]
}

// Parse reads a category name, case-insensitively.
func Parse(s string) (Category, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == want {
			return Category(i), nil
		}
	}
	return Poor, fmt.Errorf("%w: %q", ErrUnknownRating, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
