// Package repository ranks crags by how good their conditions are right now.
package repository

import (
	"context"

	"github.com/okian/cragcast/internal/domain/types"
)

// Store provides read/write access to the crag ranking.
type Store interface {
	// Upsert sets the crag's current score, replacing any previous one.
	Upsert(ctx context.Context, e types.CragEntry) error
	// Remove drops a crag. Returns ErrNotFound if the crag is unknown.
	Remove(ctx context.Context, cragID string) error

	// Rank returns the current rank and score for a crag.
	// Returns ErrNotFound if the crag is unknown.
	Rank(ctx context.Context, cragID string) (types.CragEntry, error)

	// TopN returns the top-N crags ordered by score desc.
	TopN(ctx context.Context, n int) ([]types.CragEntry, error)

	// Count returns the number of crags ranked.
	Count(ctx context.Context) int
}
