// Package opt provides a deliberately thin construction-and-repair driver
// over the routing core: a greedy nearest-feasible-insertion seed followed
// by a single budget-repair pass. It is not an adaptive large neighbourhood
// search; there is no operator weighting, no destroy/repair cycling and no
// simulated annealing acceptance.
package opt

import (
	"time"

	"gpsnav/internal/metrics"
	"gpsnav/internal/routing"
)

// Metrics reports what one Solve call did, for observability.
type Metrics struct {
	Seeded     int
	Unassigned int
	Repair     routing.RepairSummary
	BestCost   int64
	Elapsed    time.Duration
}

// unit is one insertable task: a plain job, or a pickup/delivery pair that
// must move together.
type unit struct {
	ranks []int
}

// Solve builds a feasible assignment from scratch: every job is considered
// in input order and inserted at the cheapest feasible (vehicle, position)
// found by exhaustive scan, then the whole solution is passed through
// RepairBudget. seed is accepted for interface symmetry with solvers that
// do use randomness; this driver is deterministic and ignores it.
func Solve(input *routing.Input, seed int64, timeBudget time.Duration) (routing.Solution, Metrics) {
	start := time.Now()
	_ = seed
	_ = timeBudget

	routes, err := buildTWRoutes(input)
	if err != nil {
		return routing.Solution{}, Metrics{}
	}

	units := buildUnits(input)
	var unassigned []int

	for _, u := range units {
		if !insertBest(input, routes, u) {
			unassigned = append(unassigned, u.ranks...)
		}
	}

	sol := routing.Solution{
		Routes:     make([][]int, len(routes)),
		Unassigned: unassigned,
	}
	for vr, tw := range routes {
		sol.Routes[vr] = append([]int(nil), tw.Route()...)
	}

	summary := routing.RepairBudget(input, &sol)
	metrics.BudgetRepairOutcomes.WithLabelValues("densify").Add(float64(summary.Densified))
	metrics.BudgetRepairOutcomes.WithLabelValues("shed").Add(float64(summary.Shed))
	metrics.BudgetRepairOutcomes.WithLabelValues("drop").Add(float64(summary.Dropped))

	for vr, ranks := range sol.Routes {
		sol.Routes[vr] = twoOptPolish(input, vr, ranks)
	}

	var bestCost int64
	for vr, ranks := range sol.Routes {
		ev := routing.RouteEvalForVehicle(input, vr, ranks)
		bestCost += ev.Cost
		profile := input.Vehicles[vr].Profile
		metrics.RouteEvalCost.WithLabelValues(profile).Observe(float64(ev.Cost))
		metrics.RouteEvalDuration.WithLabelValues(profile).Observe(float64(ev.Duration))
		metrics.RouteEvalDistance.WithLabelValues(profile).Observe(float64(ev.Distance))
	}

	elapsed := time.Since(start)
	metrics.SolveDuration.Observe(elapsed.Seconds())
	metrics.UnassignedJobs.Observe(float64(len(sol.Unassigned)))

	return sol, Metrics{
		Seeded:     len(units) - len(unassigned),
		Unassigned: len(sol.Unassigned),
		Repair:     summary,
		BestCost:   bestCost,
		Elapsed:    elapsed,
	}
}

// twoOptPolish runs a bounded 2-opt distance pass over vr's job order and
// keeps the result only if every position re-validates under
// IsValidAdditionForTW: TwoOptImprove reasons purely about distance, so its
// candidate order is replayed rank-by-rank through a fresh TWRoute and
// discarded at the first infeasible step. Routes carrying a pickup/delivery
// pair are left untouched, since 2-opt has no notion of pair adjacency and
// could split one across the swap.
func twoOptPolish(input *routing.Input, vr int, order []int) []int {
	if len(order) < 3 {
		return order
	}
	for _, jr := range order {
		if input.Jobs[jr].Type != routing.Single {
			return order
		}
	}

	candidate := TwoOptImprove(input, vr, order, 10)

	tw, err := routing.NewTWRoute(input, vr)
	if err != nil {
		return order
	}
	tw.SeedRelaxedFromJobRanks(nil)
	for i, jr := range candidate {
		sum := routing.NewAmount(input.AmountDimension).Add(input.Jobs[jr].DeliveryAmount)
		if !tw.IsValidAdditionForTW(sum, []int{jr}, i, i, true) {
			return order
		}
		tw.Replace([]int{jr}, i, i, true)
	}
	return candidate
}

func buildTWRoutes(input *routing.Input) ([]*routing.TWRoute, error) {
	routes := make([]*routing.TWRoute, len(input.Vehicles))
	for vr := range input.Vehicles {
		tw, err := routing.NewTWRoute(input, vr)
		if err != nil {
			return nil, err
		}
		tw.SeedRelaxedFromJobRanks(nil)
		routes[vr] = tw
	}
	return routes, nil
}

// buildUnits groups pickup/delivery pairs together, in job-table order.
func buildUnits(input *routing.Input) []unit {
	var units []unit
	for jr, job := range input.Jobs {
		switch job.Type {
		case routing.Single:
			units = append(units, unit{ranks: []int{jr}})
		case routing.Pickup:
			units = append(units, unit{ranks: []int{jr, jr + 1}})
		case routing.Delivery:
			// consumed as the second half of the preceding Pickup unit
		}
	}
	return units
}

// insertBest scans every vehicle and every candidate position for the
// cheapest feasible insertion of u, committing the best one found.
func insertBest(input *routing.Input, routes []*routing.TWRoute, u unit) bool {
	type best struct {
		vr       int
		at       int
		deliverAt int
		gain     int64
		found    bool
	}
	var chosen best
	chosen.gain = 1<<62

	deliverySum := deliverySumOf(input, u.ranks)

	for vr, tw := range routes {
		n := tw.Size()
		if len(u.ranks) == 1 {
			for at := 0; at <= n; at++ {
				if !tw.IsValidAdditionForTW(deliverySum, u.ranks, at, at, true) {
					metrics.FeasibilityChecks.WithLabelValues("tw_addition_single", "rejected").Inc()
					continue
				}
				metrics.FeasibilityChecks.WithLabelValues("tw_addition_single", "accepted").Inc()
				delta := insertionDelta(input, vr, tw.Route(), u.ranks, at, at)
				if delta < chosen.gain {
					chosen = best{vr: vr, at: at, deliverAt: at, gain: delta, found: true}
				}
			}
			continue
		}
		// Pickup/delivery pair: this driver only tries adjacent placement
		// (both ranks inserted together at the same position); scanning
		// non-adjacent positions would require two independent Replace
		// calls, which the thin driver does not attempt.
		pair := []int{u.ranks[0], u.ranks[1]}
		for at := 0; at <= n; at++ {
			if !tw.IsValidAdditionForTW(deliverySum, pair, at, at, true) {
				metrics.FeasibilityChecks.WithLabelValues("tw_addition_pair", "rejected").Inc()
				continue
			}
			metrics.FeasibilityChecks.WithLabelValues("tw_addition_pair", "accepted").Inc()
			delta := insertionDelta(input, vr, tw.Route(), pair, at, at)
			if delta < chosen.gain {
				chosen = best{vr: vr, at: at, deliverAt: at, gain: delta, found: true}
			}
		}
	}

	if !chosen.found {
		return false
	}
	tw := routes[chosen.vr]
	tw.Replace(u.ranks, chosen.at, chosen.at, true)
	return true
}

func deliverySumOf(input *routing.Input, ranks []int) routing.Amount {
	sum := routing.NewAmount(input.AmountDimension)
	for _, jr := range ranks {
		job := input.Jobs[jr]
		if job.Type == routing.Single {
			sum = sum.Add(job.DeliveryAmount)
		}
	}
	return sum
}

// insertionDelta estimates the cost of inserting ranks at [at,at) by
// comparing RouteEvalForVehicle before and after, on the route's current
// job sequence, a straightforward but O(n) probe suitable for the
// exhaustive scan a construction heuristic performs once per unit.
func insertionDelta(input *routing.Input, vr int, route []int, ranks []int, at, _ int) int64 {
	before := routing.RouteEvalForVehicle(input, vr, route)
	candidate := append(append(append([]int(nil), route[:at]...), ranks...), route[at:]...)
	after := routing.RouteEvalForVehicle(input, vr, candidate)
	return after.Cost - before.Cost
}
