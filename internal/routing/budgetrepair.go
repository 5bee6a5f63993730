package routing

import "sort"

// Solution is the finalized assignment RepairBudget operates over: one
// job-rank sequence per vehicle rank, plus the ranks left unassigned.
type Solution struct {
	Routes     [][]int // Routes[vehicleRank] = job ranks, in route order
	Unassigned []int
}

// RepairSummary reports what RepairBudget did, for observability.
type RepairSummary struct {
	Densified int
	Shed      int
	Dropped   int
}

// RouteEvalForVehicle returns the Eval triple for an arbitrary ordering of
// job ranks assigned to vehicleRank, including the vehicle's fixed cost
// and, when Input.IncludeActionTimeInBudget is set, an action-time cost
// term (see the actionCostFromDuration
// helper).
func RouteEvalForVehicle(input *Input, vehicleRank int, ranks []int) Eval {
	v := input.Vehicles[vehicleRank]
	var cost, duration, distance int64
	prevLoc := -1
	if v.HasStart {
		prevLoc = v.StartLocationIndex
	}
	for _, jr := range ranks {
		job := input.Jobs[jr]
		if prevLoc >= 0 {
			cost += input.Cost(v.Profile, prevLoc, job.LocationIndex)
			duration += input.Duration(v.Profile, prevLoc, job.LocationIndex)
			distance += input.Distance(v.Profile, prevLoc, job.LocationIndex)
		}
		if p, ok := job.VehiclePenalties[v.ID]; ok {
			cost += p
		}
		prevLoc = job.LocationIndex
	}
	if v.HasEnd && prevLoc >= 0 {
		cost += input.Cost(v.Profile, prevLoc, v.EndLocationIndex)
		duration += input.Duration(v.Profile, prevLoc, v.EndLocationIndex)
		distance += input.Distance(v.Profile, prevLoc, v.EndLocationIndex)
	}
	cost += v.FixedCost

	if input.IncludeActionTimeInBudget {
		var action int64
		prevLoc = -1
		if v.HasStart {
			prevLoc = v.StartLocationIndex
		}
		for _, jr := range ranks {
			job := input.Jobs[jr]
			if prevLoc == job.LocationIndex {
				action += job.Service(v.Type)
			} else {
				action += job.Setup(v.Type) + job.Service(v.Type)
			}
			prevLoc = job.LocationIndex
		}
		cost += actionCostFromDuration(action)
	}

	return Eval{Cost: cost, Duration: duration, Distance: distance}
}

func internalCost(input *Input, vehicleRank int, ranks []int) int64 {
	return RouteEvalForVehicle(input, vehicleRank, ranks).Cost
}

func routeBudgetSum(input *Input, ranks []int) int64 {
	var sum int64
	for _, jr := range ranks {
		job := input.Jobs[jr]
		if job.Type != Delivery {
			sum += job.Budget
		}
	}
	return sum
}

// densifyCandidate is either a single job or a pickup/delivery pair drawn
// from the unassigned set.
type densifyCandidate struct {
	pickupRank   int
	deliveryRank int // -1 for a plain single
	budget       int64
}

func buildDensifyCandidates(input *Input, unassigned []int, k int) []densifyCandidate {
	byRank := map[int]bool{}
	for _, r := range unassigned {
		byRank[r] = true
	}
	var out []densifyCandidate
	for _, r := range unassigned {
		job := input.Jobs[r]
		switch job.Type {
		case Single:
			out = append(out, densifyCandidate{pickupRank: r, deliveryRank: -1, budget: job.Budget})
		case Pickup:
			if byRank[r+1] {
				out = append(out, densifyCandidate{pickupRank: r, deliveryRank: r + 1, budget: job.Budget})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].budget > out[j].budget })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// RepairBudget enforces, for every route, sum(job.budget) >=
// internal_cost(route) by densifying, then shedding, then dropping routes
// that cannot be repaired (post-solve repair pass). It mutates sol in place and never
// raises; a route that cannot be repaired degrades to empty, its tasks
// moving to Unassigned.
func RepairBudget(input *Input, sol *Solution) RepairSummary {
	var summary RepairSummary

	for vr := range sol.Routes {
		route := sol.Routes[vr]
		if len(route) == 0 {
			continue
		}
		budget := routeBudgetSum(input, route)
		cost := internalCost(input, vr, route)
		if budget >= cost {
			continue
		}

		route, sol.Unassigned, budget, cost = densify(input, vr, route, sol.Unassigned, budget, cost, &summary)
		route, sol.Unassigned, budget, cost = shed(input, vr, route, sol.Unassigned, budget, cost, &summary)

		if budget < cost {
			sol.Unassigned = append(sol.Unassigned, route...)
			route = nil
			summary.Dropped++
		}
		sol.Routes[vr] = route
	}

	return summary
}

func densify(input *Input, vr int, route, unassigned []int, budget, cost int64, summary *RepairSummary) ([]int, []int, int64, int64) {
	candidates := buildDensifyCandidates(input, unassigned, input.densifyK())
	if len(candidates) == 0 {
		return route, unassigned, budget, cost
	}

	type move struct {
		cand       densifyCandidate
		atPickup   int
		atDelivery int
		gain       int64
		newBudget  int64
		newCost    int64
	}
	var best *move

	tryRanks := func(c densifyCandidate, pickupAt, deliveryAt int, ranksToInsert []int) {
		var candidateRoute []int
		if c.deliveryRank < 0 {
			candidateRoute = insertAt(route, ranksToInsert, pickupAt, deliveryAt)
		} else {
			candidateRoute = insertPair(route, c.pickupRank, c.deliveryRank, pickupAt, deliveryAt)
		}
		if !rangeFeasible(input, vr, route, candidateRoute) {
			return
		}
		newCost := internalCost(input, vr, candidateRoute)
		newBudget := budget + c.budget
		gain := newBudget - newCost - (budget - cost)
		if newBudget < newCost {
			return
		}
		if gain <= 0 {
			return
		}
		if best == nil || gain > best.gain {
			best = &move{cand: c, gain: gain, newBudget: newBudget, newCost: newCost}
			best.atPickup, best.atDelivery = pickupAt, deliveryAt
		}
	}

	for _, c := range candidates {
		if c.deliveryRank < 0 {
			for at := 0; at <= len(route); at++ {
				tryRanks(c, at, -1, []int{c.pickupRank})
			}
			continue
		}
		for pAt := 0; pAt <= len(route); pAt++ {
			for dAt := pAt; dAt <= len(route); dAt++ {
				tryRanks(c, pAt, dAt, nil)
			}
		}
	}

	if best == nil {
		return route, unassigned, budget, cost
	}

	var newRoute []int
	if best.cand.deliveryRank < 0 {
		newRoute = insertAt(route, []int{best.cand.pickupRank}, best.atPickup, -1)
	} else {
		newRoute = insertPair(route, best.cand.pickupRank, best.cand.deliveryRank, best.atPickup, best.atDelivery)
	}
	newUnassigned := removeRanks(unassigned, best.cand.pickupRank, best.cand.deliveryRank)
	summary.Densified++
	return newRoute, newUnassigned, best.newBudget, best.newCost
}

func shed(input *Input, vr int, route, unassigned []int, budget, cost int64, summary *RepairSummary) ([]int, []int, int64, int64) {
	for budget < cost && len(route) > 0 {
		v := input.Vehicles[vr]
		type removal struct {
			at, count int
			gain      int64
			newBudget int64
			newCost   int64
		}
		var best *removal

		for i, jr := range route {
			job := input.Jobs[jr]
			if job.Pinned {
				continue
			}
			count := 1
			if job.Type == Pickup && i+1 < len(route) && route[i+1] == jr+1 {
				count = 2
			}
			if job.Type == Delivery {
				continue
			}
			candidateRoute := append(append([]int(nil), route[:i]...), route[i+count:]...)
			if !pinnedBoundaryOK(v, route, i, i+count, nil) {
				continue
			}
			newCost := internalCost(input, vr, candidateRoute)
			newBudget := budget - routeBudgetSumOf(input, route[i:i+count])
			gain := (newBudget - newCost) - (budget - cost)
			if best == nil || gain > best.gain {
				best = &removal{at: i, count: count, gain: gain, newBudget: newBudget, newCost: newCost}
			}
		}
		if best == nil {
			break
		}
		removedRanks := append([]int(nil), route[best.at:best.at+best.count]...)
		route = append(append([]int(nil), route[:best.at]...), route[best.at+best.count:]...)
		unassigned = append(unassigned, removedRanks...)
		budget, cost = best.newBudget, best.newCost
		summary.Shed++
	}
	return route, unassigned, budget, cost
}

func routeBudgetSumOf(input *Input, ranks []int) int64 {
	var sum int64
	for _, jr := range ranks {
		job := input.Jobs[jr]
		if job.Type != Delivery {
			sum += job.Budget
		}
	}
	return sum
}

func insertAt(route []int, ranks []int, at, _ int) []int {
	out := append([]int(nil), route[:at]...)
	out = append(out, ranks...)
	out = append(out, route[at:]...)
	return out
}

func insertPair(route []int, pickup, delivery, pAt, dAt int) []int {
	withPickup := append(append([]int(nil), route[:pAt]...), append([]int{pickup}, route[pAt:]...)...)
	shiftedDAt := dAt + 1
	out := append(append([]int(nil), withPickup[:shiftedDAt]...), append([]int{delivery}, withPickup[shiftedDAt:]...)...)
	return out
}

func removeRanks(unassigned []int, a, b int) []int {
	out := make([]int, 0, len(unassigned))
	for _, r := range unassigned {
		if r == a || r == b {
			continue
		}
		out = append(out, r)
	}
	return out
}

// rangeFeasible re-validates a densify candidate in full: a fresh TWRoute
// is seeded and the candidate order replayed rank-by-rank through
// IsValidAdditionForTW/Replace, so a candidate that only satisfies
// capacity but arrives outside a job's or break's time window is rejected
// the same way the construction driver's own insertion loop would reject
// it.
func rangeFeasible(input *Input, vr int, oldRoute, candidateRoute []int) bool {
	_ = oldRoute
	tw, err := NewTWRoute(input, vr)
	if err != nil {
		return false
	}
	tw.SeedRelaxedFromJobRanks(nil)
	for i, jr := range candidateRoute {
		job := input.Jobs[jr]
		sum := NewAmount(input.AmountDimension)
		if job.Type == Single {
			sum = sum.Add(job.DeliveryAmount)
		}
		if !tw.IsValidAdditionForTW(sum, []int{jr}, i, i, true) {
			return false
		}
		tw.Replace([]int{jr}, i, i, true)
	}
	return true
}
