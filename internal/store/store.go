// Package store persists the routing core's job/vehicle tables and solved
// route snapshots, and caches duration/cost/distance matrices.
package store

import (
	"context"
	"errors"

	"gpsnav/internal/routing"
)

// ErrNotFound is returned when a lookup by id finds nothing.
var ErrNotFound = errors.New("not found")

// RouteSnapshot is one vehicle's committed job-rank sequence from a solved
// run, alongside the Eval it was costed at.
type RouteSnapshot struct {
	RunID       string
	VehicleRank int
	JobRanks    []int
	Eval        routing.Eval
}

// RunSummary is the persisted RepairBudget outcome for a run.
type RunSummary struct {
	RunID     string
	Densified int
	Shed      int
	Dropped   int
}

// JobVehicleStore is the durable source of truth for job/vehicle tables,
// keyed by an arbitrary caller-chosen input id (one input id groups the
// jobs and vehicles solved together in a single run).
type JobVehicleStore interface {
	SaveJobs(ctx context.Context, inputID string, jobs []routing.Job) error
	LoadJobs(ctx context.Context, inputID string) ([]routing.Job, error)

	SaveVehicles(ctx context.Context, inputID string, vehicles []routing.Vehicle) error
	LoadVehicles(ctx context.Context, inputID string) ([]routing.Vehicle, error)
}

// RunStore persists solved route snapshots and repair outcomes.
type RunStore interface {
	SaveRouteSnapshots(ctx context.Context, runID string, snapshots []RouteSnapshot) error
	ListRouteSnapshots(ctx context.Context, runID string) ([]RouteSnapshot, error)

	SaveRunSummary(ctx context.Context, summary RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (RunSummary, error)
}

// Store bundles both halves of the persistence surface.
type Store interface {
	JobVehicleStore
	RunStore
}

// MatrixCache caches a duration/cost/distance matrix triple for a profile,
// keyed by an externally-computed cache key (the solve handler uses the
// profile name).
type MatrixCache interface {
	Get(ctx context.Context, key string) (duration, cost, distance routing.Matrix, ok bool, err error)
	Set(ctx context.Context, key string, duration, cost, distance routing.Matrix) error
}
