package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gpsnav/internal/config"
	"gpsnav/internal/routing"
	"gpsnav/internal/store"
	"gpsnav/internal/stream"
)

func newTestServer() *Server {
	return &Server{
		Store:  store.NewMemory(),
		Config: config.Default(),
		Broker: stream.NewBroker(),
	}
}

// fakeMatrixCache is a map-backed store.MatrixCache stand-in for tests;
// the real implementation (store.RedisMatrixCache) needs a live Redis.
type fakeMatrixCache struct {
	duration, cost, distance map[string]routing.Matrix
}

func newFakeMatrixCache() *fakeMatrixCache {
	return &fakeMatrixCache{
		duration: map[string]routing.Matrix{},
		cost:     map[string]routing.Matrix{},
		distance: map[string]routing.Matrix{},
	}
}

func (f *fakeMatrixCache) Get(_ context.Context, key string) (duration, cost, distance routing.Matrix, ok bool, err error) {
	duration, ok = f.duration[key]
	if !ok {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, false, nil
	}
	return duration, f.cost[key], f.distance[key], true, nil
}

func (f *fakeMatrixCache) Set(_ context.Context, key string, duration, cost, distance routing.Matrix) error {
	f.duration[key] = duration
	f.cost[key] = cost
	f.distance[key] = distance
	return nil
}

func TestSolveHandlerEmptyJobsReturnsEmptyRoutes(t *testing.T) {
	s := newTestServer()

	req := solveRequest{
		InputID: "in-1",
		Vehicles: []routing.Vehicle{
			{ID: 1, Profile: "car"},
		},
		Matrices: map[string]matrixPayload{
			"car": {N: 1, Duration: []int64{0}, Cost: []int64{0}, Distance: []int64{0}},
		},
		AmountDimension: 1,
	}
	body, _ := json.Marshal(req)

	rr := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body))
	s.SolveHandler(rr, httpReq)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rr.Code, rr.Body.String())
	}
	var resp solveResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Fatalf("expected a non-empty run id")
	}
	if len(resp.Routes) != 1 || len(resp.Routes[0]) != 0 {
		t.Fatalf("Routes = %+v, want one empty route", resp.Routes)
	}
	if len(resp.Unassigned) != 0 {
		t.Fatalf("Unassigned = %+v, want none", resp.Unassigned)
	}
}

func TestSolveHandlerRejectsNoVehicles(t *testing.T) {
	s := newTestServer()
	body, _ := json.Marshal(solveRequest{})

	rr := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body))
	s.SolveHandler(rr, httpReq)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestRunHandlerReturnsPersistedSnapshot(t *testing.T) {
	s := newTestServer()

	solveReq := solveRequest{
		Vehicles: []routing.Vehicle{{ID: 1, Profile: "car"}},
		Matrices: map[string]matrixPayload{
			"car": {N: 1, Duration: []int64{0}, Cost: []int64{0}, Distance: []int64{0}},
		},
		AmountDimension: 1,
	}
	body, _ := json.Marshal(solveReq)
	solveRR := httptest.NewRecorder()
	s.SolveHandler(solveRR, httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body)))

	var solveResp solveResponse
	if err := json.Unmarshal(solveRR.Body.Bytes(), &solveResp); err != nil {
		t.Fatalf("decode solve response: %v", err)
	}

	runRR := httptest.NewRecorder()
	s.RunHandler(runRR, httptest.NewRequest(http.MethodGet, "/v1/runs/"+solveResp.RunID, nil))
	if runRR.Code != http.StatusOK {
		t.Fatalf("run status = %d, want 200; body=%s", runRR.Code, runRR.Body.String())
	}

	metricsRR := httptest.NewRecorder()
	s.RunHandler(metricsRR, httptest.NewRequest(http.MethodGet, "/v1/runs/"+solveResp.RunID+"/metrics", nil))
	if metricsRR.Code != http.StatusOK {
		t.Fatalf("run metrics status = %d, want 200; body=%s", metricsRR.Code, metricsRR.Body.String())
	}
}

func TestRunMetricsHandlerMissingReturns404(t *testing.T) {
	s := newTestServer()
	rr := httptest.NewRecorder()
	s.RunHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/does-not-exist/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestRunHandlerMissingRunReturns404(t *testing.T) {
	s := newTestServer()
	rr := httptest.NewRecorder()
	s.RunHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/does-not-exist", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestSolveHandlerReusesCachedMatrixForMissingProfile(t *testing.T) {
	s := newTestServer()
	cache := newFakeMatrixCache()
	s.Cache = cache

	first := solveRequest{
		Vehicles: []routing.Vehicle{{ID: 1, Profile: "car"}},
		Matrices: map[string]matrixPayload{
			"car": {N: 1, Duration: []int64{0}, Cost: []int64{0}, Distance: []int64{0}},
		},
		AmountDimension: 1,
	}
	body, _ := json.Marshal(first)
	rr := httptest.NewRecorder()
	s.SolveHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("first solve status = %d, want 200; body=%s", rr.Code, rr.Body.String())
	}
	if _, ok := cache.duration["car"]; !ok {
		t.Fatalf("expected the first solve to populate the matrix cache for profile car")
	}

	// Second request omits matrices entirely; the handler should fall
	// back to what the first request cached.
	second := solveRequest{
		Vehicles:        []routing.Vehicle{{ID: 1, Profile: "car"}},
		AmountDimension: 1,
	}
	body, _ = json.Marshal(second)
	rr = httptest.NewRecorder()
	s.SolveHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("second solve status = %d, want 200; body=%s", rr.Code, rr.Body.String())
	}
}

func TestHealthHandlerAlwaysOK(t *testing.T) {
	s := newTestServer()
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
