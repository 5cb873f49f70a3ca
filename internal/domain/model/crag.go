package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/cragcast/internal/domain/rock"
)

// Crag is a climbing area tracked by the refresh pipeline.
type Crag struct {
	ID       string
	Name     string
	Location Location
	RockType rock.Type
}

// RefreshJob asks a worker to recompute a crag's conditions.
type RefreshJob struct {
	ID         uuid.UUID
	Crag       Crag
	EnqueuedAt time.Time
}

// NewRefreshJob creates a job for crag with a fresh id.
func NewRefreshJob(crag Crag, now time.Time) RefreshJob {
	return RefreshJob{ID: uuid.New(), Crag: crag, EnqueuedAt: now}
}
