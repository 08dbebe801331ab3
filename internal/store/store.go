package store

import (
	"context"

	"github.com/me/lottsched/pkg/model"
)

// Store defines the persistence layer for simulation runs.
type Store interface {
	// Run CRUD
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error)
	DeleteRun(ctx context.Context, id string) error

	// Per-unit results
	ListUnitStats(ctx context.Context, runID string) ([]model.UnitStats, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
