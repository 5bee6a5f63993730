package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the solver.
	Registry = prometheus.NewRegistry()

	// RouteEvalCost records the cost component of RouteEvalForVehicle
	// results, by vehicle profile.
	RouteEvalCost = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "route_eval_cost", Help: "Route evaluation cost by profile.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
		[]string{"profile"},
	)
	// RouteEvalDuration records the duration component of RouteEvalForVehicle
	// results, by vehicle profile.
	RouteEvalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "route_eval_duration_seconds", Help: "Route evaluation duration by profile.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
		[]string{"profile"},
	)
	// RouteEvalDistance records the distance component of RouteEvalForVehicle
	// results, by vehicle profile.
	RouteEvalDistance = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "route_eval_distance_meters", Help: "Route evaluation distance by profile.", Buckets: prometheus.ExponentialBuckets(1, 4, 10)},
		[]string{"profile"},
	)

	// BudgetRepairOutcomes counts RepairBudget outcomes by action: densify,
	// shed or drop.
	BudgetRepairOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "budget_repair_outcomes_total", Help: "RepairBudget actions taken, by kind."},
		[]string{"action"},
	)
	// FeasibilityChecks counts calls into the feasibility predicates, by
	// predicate name and result.
	FeasibilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "feasibility_checks_total", Help: "Feasibility predicate evaluations, by predicate and result."},
		[]string{"predicate", "result"},
	)
	// SolveDuration records wall-clock time spent in opt.Solve.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Wall-clock time spent constructing and repairing a solution.", Buckets: prometheus.DefBuckets},
	)
	// UnassignedJobs records how many jobs were left unassigned at the end
	// of a solve.
	UnassignedJobs = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "unassigned_jobs", Help: "Jobs left unassigned after a solve.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100}},
	)
)

// RegisterDefault registers collectors to Registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(RouteEvalCost)
		Registry.MustRegister(RouteEvalDuration)
		Registry.MustRegister(RouteEvalDistance)
		Registry.MustRegister(BudgetRepairOutcomes)
		Registry.MustRegister(FeasibilityChecks)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(UnassignedJobs)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
