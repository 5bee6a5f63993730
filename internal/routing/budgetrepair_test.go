package routing

import "testing"

// TestRepairBudgetDensifiesProfitableUnassignedJob mirrors the densify
// scenario: a route runs a small budget deficit, and an unassigned job
// with a large budget can be inserted to cover it.
func TestRepairBudgetDensifiesProfitableUnassignedJob(t *testing.T) {
	input := simpleInput(3, 1)
	v := basicVehicle(1, 1000, TimeWindow{0, 1000})
	v.HasStart = true
	v.StartLocationIndex = 0
	input.Vehicles = []Vehicle{v}

	jobA := singleJob(1, 1, 0, 0, TimeWindow{0, 1000})
	jobA.Budget = 0 // route cost (1) exceeds budget (0): deficit of 1
	jobB := singleJob(2, 2, 0, 0, TimeWindow{0, 1000})
	jobB.Budget = 5 // comfortably covers the deficit once inserted
	input.Jobs = []Job{jobA, jobB}

	sol := &Solution{
		Routes:     [][]int{{0}},
		Unassigned: []int{1},
	}

	summary := RepairBudget(input, sol)

	if summary.Densified != 1 {
		t.Fatalf("Densified = %d, want 1", summary.Densified)
	}
	if summary.Dropped != 0 {
		t.Fatalf("Dropped = %d, want 0", summary.Dropped)
	}
	if len(sol.Routes[0]) != 2 {
		t.Fatalf("route after densify = %v, want both jobs assigned", sol.Routes[0])
	}
	if len(sol.Unassigned) != 0 {
		t.Fatalf("unassigned after densify = %v, want empty", sol.Unassigned)
	}

	newCost := internalCost(input, 0, sol.Routes[0])
	newBudget := routeBudgetSum(input, sol.Routes[0])
	if newBudget < newCost {
		t.Fatalf("post-densify budget %d still below cost %d", newBudget, newCost)
	}
}

// TestRepairBudgetShedsThenDropsUnrepairableRoute mirrors the shed/drop
// fallback scenario: a single-job route whose fixed cost alone exceeds any
// achievable budget cannot be repaired by shedding its only job, so the
// whole route is dropped.
func TestRepairBudgetShedsThenDropsUnrepairableRoute(t *testing.T) {
	input := simpleInput(3, 1)
	v := basicVehicle(1, 1000, TimeWindow{0, 1000})
	v.HasStart = true
	v.StartLocationIndex = 0
	v.FixedCost = 10
	input.Vehicles = []Vehicle{v}

	jobC := singleJob(1, 1, 0, 0, TimeWindow{0, 1000})
	jobC.Budget = 0
	input.Jobs = []Job{jobC}

	sol := &Solution{
		Routes:     [][]int{{0}},
		Unassigned: nil,
	}

	summary := RepairBudget(input, sol)

	if summary.Shed != 1 {
		t.Fatalf("Shed = %d, want 1", summary.Shed)
	}
	if summary.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1", summary.Dropped)
	}
	if len(sol.Routes[0]) != 0 {
		t.Fatalf("route after drop = %v, want empty", sol.Routes[0])
	}
	found := false
	for _, r := range sol.Unassigned {
		if r == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("shed job should end up in Unassigned, got %v", sol.Unassigned)
	}
}

// TestRepairBudgetSkipsRouteAlreadyWithinBudget checks the fast path: a
// route whose budget already covers its cost is left untouched.
func TestRepairBudgetSkipsRouteAlreadyWithinBudget(t *testing.T) {
	input := simpleInput(2, 1)
	v := basicVehicle(1, 1000, TimeWindow{0, 1000})
	v.HasStart = true
	input.Vehicles = []Vehicle{v}

	job := singleJob(1, 1, 0, 0, TimeWindow{0, 1000})
	job.Budget = 100
	input.Jobs = []Job{job}

	sol := &Solution{Routes: [][]int{{0}}}
	summary := RepairBudget(input, sol)

	if summary.Densified != 0 || summary.Shed != 0 || summary.Dropped != 0 {
		t.Fatalf("expected no repair activity, got %+v", summary)
	}
	if len(sol.Routes[0]) != 1 {
		t.Fatalf("route should be untouched, got %v", sol.Routes[0])
	}
}
