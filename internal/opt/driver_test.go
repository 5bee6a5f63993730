package opt

import (
	"testing"
	"time"

	"gpsnav/internal/routing"
)

func uniform(n int, unit int64) routing.Matrix {
	m := routing.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.Set(i, j, unit)
			}
		}
	}
	return m
}

func TestSolveSeedsAllFeasibleJobs(t *testing.T) {
	input := &routing.Input{
		AmountDimension:  1,
		DurationMatrices: map[string]routing.Matrix{"car": uniform(3, 2)},
		CostMatrices:     map[string]routing.Matrix{"car": uniform(3, 2)},
		DistanceMatrices: map[string]routing.Matrix{"car": uniform(3, 2)},
		Vehicles: []routing.Vehicle{
			{ID: 1, Type: "car", Profile: "car", Capacity: routing.Amount{10}, TimeWindow: routing.TimeWindow{Start: 0, End: 1000}, HasStart: true, StartLocationIndex: 0},
		},
		Jobs: []routing.Job{
			{ID: 1, Type: routing.Single, LocationIndex: 1, PickupAmount: routing.Amount{2}, DeliveryAmount: routing.Amount{0}, TimeWindows: []routing.TimeWindow{{Start: 0, End: 1000}}, Budget: 100},
			{ID: 2, Type: routing.Single, LocationIndex: 2, PickupAmount: routing.Amount{2}, DeliveryAmount: routing.Amount{0}, TimeWindows: []routing.TimeWindow{{Start: 0, End: 1000}}, Budget: 100},
		},
	}

	sol, metrics := Solve(input, 0, time.Second)

	if len(sol.Unassigned) != 0 {
		t.Fatalf("Unassigned = %v, want none", sol.Unassigned)
	}
	total := 0
	for _, r := range sol.Routes {
		total += len(r)
	}
	if total != 2 {
		t.Fatalf("total assigned jobs = %d, want 2", total)
	}
	if metrics.Seeded != 2 {
		t.Fatalf("Metrics.Seeded = %d, want 2", metrics.Seeded)
	}
}

func TestSolveLeavesInfeasibleJobUnassigned(t *testing.T) {
	input := &routing.Input{
		AmountDimension:  1,
		DurationMatrices: map[string]routing.Matrix{"car": uniform(2, 1)},
		CostMatrices:     map[string]routing.Matrix{"car": uniform(2, 1)},
		DistanceMatrices: map[string]routing.Matrix{"car": uniform(2, 1)},
		Vehicles: []routing.Vehicle{
			{ID: 1, Type: "car", Profile: "car", Capacity: routing.Amount{1}, TimeWindow: routing.TimeWindow{Start: 0, End: 1000}},
		},
		Jobs: []routing.Job{
			{ID: 1, Type: routing.Single, LocationIndex: 1, PickupAmount: routing.Amount{5}, DeliveryAmount: routing.Amount{0}, TimeWindows: []routing.TimeWindow{{Start: 0, End: 1000}}},
		},
	}

	sol, metrics := Solve(input, 0, time.Second)

	if len(sol.Unassigned) != 1 {
		t.Fatalf("Unassigned = %v, want the one over-capacity job", sol.Unassigned)
	}
	if metrics.Unassigned != 1 {
		t.Fatalf("Metrics.Unassigned = %d, want 1", metrics.Unassigned)
	}
}

func TestSolvePolishKeepsAllJobsFeasible(t *testing.T) {
	n := 5
	m := routing.NewMatrix(n)
	// A non-uniform matrix gives 2-opt something to actually improve.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.Set(i, j, int64(1+(i*3+j*7)%11))
			}
		}
	}
	input := &routing.Input{
		AmountDimension:  1,
		DurationMatrices: map[string]routing.Matrix{"car": m},
		CostMatrices:     map[string]routing.Matrix{"car": m},
		DistanceMatrices: map[string]routing.Matrix{"car": m},
		Vehicles: []routing.Vehicle{
			{ID: 1, Type: "car", Profile: "car", Capacity: routing.Amount{100}, TimeWindow: routing.TimeWindow{Start: 0, End: 100000}, HasStart: true, StartLocationIndex: 0},
		},
	}
	for i := 1; i < n; i++ {
		input.Jobs = append(input.Jobs, routing.Job{
			ID: i, Type: routing.Single, LocationIndex: i,
			PickupAmount:   routing.Amount{0},
			DeliveryAmount: routing.Amount{1},
			TimeWindows:    []routing.TimeWindow{{Start: 0, End: 100000}},
			Budget:         100,
		})
	}

	sol, metrics := Solve(input, 0, time.Second)

	if len(sol.Unassigned) != 0 {
		t.Fatalf("Unassigned = %v, want none", sol.Unassigned)
	}
	if metrics.Seeded != n-1 {
		t.Fatalf("Metrics.Seeded = %d, want %d", metrics.Seeded, n-1)
	}
	seen := map[int]bool{}
	for _, r := range sol.Routes {
		for _, jr := range r {
			if seen[jr] {
				t.Fatalf("job rank %d appears twice across routes after polish", jr)
			}
			seen[jr] = true
		}
	}
	if len(seen) != n-1 {
		t.Fatalf("polish lost or duplicated jobs: saw %d of %d", len(seen), n-1)
	}
}

func TestTwoOptImproveNeverWorsensDistance(t *testing.T) {
	input := &routing.Input{
		DurationMatrices: map[string]routing.Matrix{"car": uniform(4, 3)},
		CostMatrices:     map[string]routing.Matrix{"car": uniform(4, 3)},
		DistanceMatrices: map[string]routing.Matrix{"car": uniform(4, 3)},
		Vehicles: []routing.Vehicle{
			{ID: 1, Type: "car", Profile: "car", HasStart: true, StartLocationIndex: 0},
		},
		Jobs: []routing.Job{
			{ID: 1, LocationIndex: 1},
			{ID: 2, LocationIndex: 2},
			{ID: 3, LocationIndex: 3},
		},
	}
	before := pathDistance(input, 0, []int{0, 1, 2})
	after := TwoOptImprove(input, 0, []int{0, 1, 2}, 5)
	afterDist := pathDistance(input, 0, after)
	if afterDist > before {
		t.Fatalf("2-opt worsened distance: %d -> %d", before, afterDist)
	}
}
