package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gpsnav/internal/buildinfo"
	"gpsnav/internal/opt"
	"gpsnav/internal/routing"
	"gpsnav/internal/store"
	"gpsnav/internal/stream"
)

type matrixPayload struct {
	N        int     `json:"n"`
	Duration []int64 `json:"duration"`
	Cost     []int64 `json:"cost"`
	Distance []int64 `json:"distance"`
}

func (m matrixPayload) toMatrix(data []int64) routing.Matrix {
	mat := routing.NewMatrix(m.N)
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			mat.Set(i, j, data[i*m.N+j])
		}
	}
	return mat
}

type solveRequest struct {
	InputID         string                    `json:"inputId"`
	Jobs            []routing.Job             `json:"jobs"`
	Vehicles        []routing.Vehicle         `json:"vehicles"`
	Matrices        map[string]matrixPayload  `json:"matrices"`
	AmountDimension int                       `json:"amountDimension"`
}

type solveResponse struct {
	RunID      string      `json:"runId"`
	Routes     [][]int     `json:"routes"`
	Unassigned []int       `json:"unassigned"`
	Metrics    opt.Metrics `json:"metrics"`
}

// SolveHandler handles POST /v1/solve: it builds a routing.Input from the
// request body, runs the construction-and-repair driver, persists the
// result and publishes it to stream subscribers of the new run ID.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if len(req.Vehicles) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", "at least one vehicle is required", r.URL.Path)
		return
	}

	amountDim := req.AmountDimension
	if amountDim <= 0 {
		amountDim = s.Config.AmountDimension
	}

	input := &routing.Input{
		Jobs:                      req.Jobs,
		Vehicles:                  req.Vehicles,
		DurationMatrices:          map[string]routing.Matrix{},
		CostMatrices:              map[string]routing.Matrix{},
		DistanceMatrices:          map[string]routing.Matrix{},
		AmountDimension:           amountDim,
		IncludeActionTimeInBudget: s.Config.IncludeActionTimeInBudget,
		BudgetDensifyCandidatesK:  s.Config.BudgetDensifyCandidatesK,
	}
	for profile, mp := range req.Matrices {
		duration := mp.toMatrix(mp.Duration)
		cost := mp.toMatrix(mp.Cost)
		distance := mp.toMatrix(mp.Distance)
		input.DurationMatrices[profile] = duration
		input.CostMatrices[profile] = cost
		input.DistanceMatrices[profile] = distance
		if s.Cache != nil {
			_ = s.Cache.Set(r.Context(), profile, duration, cost, distance)
		}
	}
	// Profiles named by a vehicle but missing from the request body fall
	// back to a previously cached matrix triple, if one is available.
	if s.Cache != nil {
		for _, v := range req.Vehicles {
			if _, ok := input.DurationMatrices[v.Profile]; ok {
				continue
			}
			duration, cost, distance, ok, err := s.Cache.Get(r.Context(), v.Profile)
			if err == nil && ok {
				input.DurationMatrices[v.Profile] = duration
				input.CostMatrices[v.Profile] = cost
				input.DistanceMatrices[v.Profile] = distance
			}
		}
	}

	timeBudget := time.Duration(s.Config.SolveTimeBudgetSeconds) * time.Second
	sol, metrics := opt.Solve(input, 0, timeBudget)

	runID := uuid.NewString()
	ctx := r.Context()

	inputID := req.InputID
	if inputID == "" {
		inputID = runID
	}
	if err := s.Store.SaveJobs(ctx, inputID, req.Jobs); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save jobs failed", err.Error(), r.URL.Path)
		return
	}
	if err := s.Store.SaveVehicles(ctx, inputID, req.Vehicles); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save vehicles failed", err.Error(), r.URL.Path)
		return
	}

	snapshots := make([]store.RouteSnapshot, len(sol.Routes))
	for vr, ranks := range sol.Routes {
		snapshots[vr] = store.RouteSnapshot{
			RunID:       runID,
			VehicleRank: vr,
			JobRanks:    ranks,
			Eval:        routing.RouteEvalForVehicle(input, vr, ranks),
		}
	}
	if err := s.Store.SaveRouteSnapshots(ctx, runID, snapshots); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save route snapshots failed", err.Error(), r.URL.Path)
		return
	}
	summary := store.RunSummary{
		RunID:     runID,
		Densified: metrics.Repair.Densified,
		Shed:      metrics.Repair.Shed,
		Dropped:   metrics.Repair.Dropped,
	}
	if err := s.Store.SaveRunSummary(ctx, summary); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save run summary failed", err.Error(), r.URL.Path)
		return
	}

	s.Broker.Publish(stream.Event{RunID: runID, Snapshots: snapshots, Summary: &summary})
	opt.RecordMetrics(runID, metrics)

	writeJSON(w, http.StatusOK, solveResponse{
		RunID:      runID,
		Routes:     sol.Routes,
		Unassigned: sol.Unassigned,
		Metrics:    metrics,
	})
}

// RunHandler handles GET /v1/runs/{runId}: it returns the persisted route
// snapshots and repair summary for a previously solved run. Requests for
// /v1/runs/{runId}/metrics are delegated to RunMetricsHandler.
func (s *Server) RunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if strings.HasSuffix(r.URL.Path, "/metrics") {
		s.RunMetricsHandler(w, r)
		return
	}
	runID := runIDFromPath(r.URL.Path)
	if runID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing run id", "", r.URL.Path)
		return
	}
	snaps, err := s.Store.ListRouteSnapshots(r.Context(), runID)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Run not found", err.Error(), r.URL.Path)
		return
	}
	summary, err := s.Store.GetRunSummary(r.Context(), runID)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Run not found", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "summary": summary})
}

func runIDFromPath(path string) string {
	const prefix = "/v1/runs/"
	if len(path) <= len(prefix) {
		return ""
	}
	return path[len(prefix):]
}

// RunMetricsHandler handles GET /v1/runs/{runId}/metrics: it returns the
// Solve-time Metrics recorded in the process's own metrics cache, if the
// run was solved since this process started (RecordMetrics is in-memory
// and not persisted, unlike RunHandler's store-backed lookup).
func (s *Server) RunMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	runID := strings.TrimSuffix(runIDFromPath(r.URL.Path), "/metrics")
	if runID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing run id", "", r.URL.Path)
		return
	}
	m, ok := opt.GetMetrics(runID)
	if !ok {
		writeProblem(w, http.StatusNotFound, "Metrics not found for run", "", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HealthHandler answers liveness probes.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler answers readiness probes; unlike HealthHandler it reflects
// whether the store is reachable.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Store.GetRunSummary(r.Context(), "__readyz__"); err != nil && err != store.ErrNotFound {
		writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
