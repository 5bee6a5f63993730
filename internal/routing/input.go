package routing

// Matrix is a square, row-major matrix of internal-unit values (duration,
// cost or distance) indexed by location index.
type Matrix struct {
	n    int
	data []int64
}

// NewMatrix returns an n x n matrix of zeros.
func NewMatrix(n int) Matrix {
	return Matrix{n: n, data: make([]int64, n*n)}
}

// At returns the value travelling from location i to location j.
func (m Matrix) At(i, j int) int64 {
	return m.data[i*m.n+j]
}

// Set stores the value travelling from location i to location j.
func (m Matrix) Set(i, j int, v int64) {
	m.data[i*m.n+j] = v
}

// Size returns the matrix's location count.
func (m Matrix) Size() int { return m.n }

// Flatten returns the row-major backing data, for serialization.
func (m Matrix) Flatten() []int64 { return m.data }

// Input bundles the read-only job table, vehicle table and the
// duration/cost/distance matrices keyed by profile. It is the core's only
// point of contact with externally-parsed data, per the "Job table" /
// "Vehicle table" / "Duration / cost / distance matrices" external
// interfaces.
type Input struct {
	Jobs     []Job
	Vehicles []Vehicle

	DurationMatrices map[string]Matrix
	CostMatrices     map[string]Matrix
	DistanceMatrices map[string]Matrix

	AmountDimension int

	// IncludeActionTimeInBudget controls whether route_eval_for_vehicle's
	// internal cost includes an action-time-derived cost term.
	IncludeActionTimeInBudget bool

	// BudgetDensifyCandidatesK bounds the densify candidate list size in
	// RepairBudget (default 20 when zero).
	BudgetDensifyCandidatesK int
}

func (in *Input) Duration(profile string, from, to int) int64 {
	return in.DurationMatrices[profile].At(from, to)
}

func (in *Input) Cost(profile string, from, to int) int64 {
	return in.CostMatrices[profile].At(from, to)
}

func (in *Input) Distance(profile string, from, to int) int64 {
	return in.DistanceMatrices[profile].At(from, to)
}

func (in *Input) densifyK() int {
	if in.BudgetDensifyCandidatesK > 0 {
		return in.BudgetDensifyCandidatesK
	}
	return 20
}

// actionCostFromDuration converts an action-time duration into a cost
// term. Grounded on the original engine's action_cost_from_duration: cost
// and duration share the same internal scale at the per-second level, so
// the conversion is the identity; a distinct helper keeps the call sites
// self-documenting and gives future unit-scaling a single seam.
func actionCostFromDuration(d int64) int64 {
	return d
}
