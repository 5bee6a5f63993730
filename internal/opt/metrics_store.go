package opt

import "sync"

var (
	mu    sync.Mutex
	store = map[string]Metrics{}
)

// RecordMetrics stashes a Solve run's Metrics under runID for later
// inspection (served by GET /v1/runs/{id}/metrics).
func RecordMetrics(runID string, m Metrics) {
	mu.Lock()
	store[runID] = m
	mu.Unlock()
}

// GetMetrics returns the Metrics recorded for runID, if any.
func GetMetrics(runID string) (Metrics, bool) {
	mu.Lock()
	defer mu.Unlock()
	m, ok := store[runID]
	return m, ok
}
