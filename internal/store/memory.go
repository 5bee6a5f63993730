package store

import (
	"context"
	"sync"

	"gpsnav/internal/routing"
)

// Memory is a simple in-memory Store used when no DATABASE_URL is set,
// handy for local runs and tests.
type Memory struct {
	mu         sync.Mutex
	jobs       map[string][]routing.Job
	vehicles   map[string][]routing.Vehicle
	snapshots  map[string][]RouteSnapshot
	summaries  map[string]RunSummary
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		jobs:      map[string][]routing.Job{},
		vehicles:  map[string][]routing.Vehicle{},
		snapshots: map[string][]RouteSnapshot{},
		summaries: map[string]RunSummary{},
	}
}

func (m *Memory) SaveJobs(ctx context.Context, inputID string, jobs []routing.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[inputID] = append([]routing.Job(nil), jobs...)
	return nil
}

func (m *Memory) LoadJobs(ctx context.Context, inputID string) ([]routing.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs, ok := m.jobs[inputID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]routing.Job(nil), jobs...), nil
}

func (m *Memory) SaveVehicles(ctx context.Context, inputID string, vehicles []routing.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[inputID] = append([]routing.Vehicle(nil), vehicles...)
	return nil
}

func (m *Memory) LoadVehicles(ctx context.Context, inputID string) ([]routing.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vehicles, ok := m.vehicles[inputID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]routing.Vehicle(nil), vehicles...), nil
}

func (m *Memory) SaveRouteSnapshots(ctx context.Context, runID string, snapshots []RouteSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[runID] = append([]RouteSnapshot(nil), snapshots...)
	return nil
}

func (m *Memory) ListRouteSnapshots(ctx context.Context, runID string) ([]RouteSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps, ok := m.snapshots[runID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]RouteSnapshot(nil), snaps...), nil
}

func (m *Memory) SaveRunSummary(ctx context.Context, summary RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summary.RunID] = summary
	return nil
}

func (m *Memory) GetRunSummary(ctx context.Context, runID string) (RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[runID]
	if !ok {
		return RunSummary{}, ErrNotFound
	}
	return s, nil
}
