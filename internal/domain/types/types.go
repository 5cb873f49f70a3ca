// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/cragcast/internal/domain/rating"
)

// CragEntry is one row of the crag ranking: how good a crag is right now.
type CragEntry struct {
	Rank      int             `json:"rank"`
	CragID    string          `json:"crag_id"`
	Name      string          `json:"name,omitempty"`
	RockType  string          `json:"rock_type"`
	Score     float64         `json:"score"`
	Rating    rating.Category `json:"rating"`
	UpdatedAt time.Time       `json:"updated_at"`
}
