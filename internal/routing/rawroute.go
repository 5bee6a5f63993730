package routing

// RawRoute is the load profile for a single vehicle: the task sequence and
// every array needed to answer capacity feasibility in O(amount
// dimension) per probe. TWRoute embeds it and adds time/break awareness.
type RawRoute struct {
	input       *Input
	vehicleRank int

	route []int // job ranks, length n

	fwdPickups    []Amount // cumulative SINGLE pickups over [0,i]
	fwdDeliveries []Amount // cumulative SINGLE deliveries over [0,i]
	pdLoads       []Amount // shipment balance carried at i
	nbPickups     []int
	nbDeliveries  []int

	bwdPickups    []Amount // cumulative SINGLE pickups over (i,n)
	bwdDeliveries []Amount // cumulative SINGLE deliveries over (i,n)

	currentLoads []Amount // size n+1, load between jobs
	fwdPeaks     []Amount // size n+1, running componentwise max from 0
	bwdPeaks     []Amount // size n+1, running componentwise max from n

	deliveryMargin Amount // capacity - current_loads[0]
	pickupMargin   Amount // capacity - fwd_pickups[n-1]

	exclusiveTagCounts map[string]int
}

// NewRawRoute returns an empty route bound to the given vehicle.
func NewRawRoute(input *Input, vehicleRank int) *RawRoute {
	r := &RawRoute{input: input, vehicleRank: vehicleRank}
	r.SetRoute(nil)
	return r
}

func (r *RawRoute) vehicle() Vehicle {
	return r.input.Vehicles[r.vehicleRank]
}

func (r *RawRoute) dim() int {
	return r.input.AmountDimension
}

// Size returns the number of tasks currently in the route.
func (r *RawRoute) Size() int {
	return len(r.route)
}

// Empty reports whether the route carries no tasks.
func (r *RawRoute) Empty() bool {
	return len(r.route) == 0
}

// Route returns the current job-rank sequence. Callers must not mutate the
// returned slice.
func (r *RawRoute) Route() []int {
	return r.route
}

func (r *RawRoute) FwdPickups() []Amount    { return r.fwdPickups }
func (r *RawRoute) FwdDeliveries() []Amount { return r.fwdDeliveries }
func (r *RawRoute) PdLoads() []Amount       { return r.pdLoads }
func (r *RawRoute) NbPickups() []int        { return r.nbPickups }
func (r *RawRoute) NbDeliveries() []int     { return r.nbDeliveries }
func (r *RawRoute) BwdPickups() []Amount    { return r.bwdPickups }
func (r *RawRoute) BwdDeliveries() []Amount { return r.bwdDeliveries }
func (r *RawRoute) CurrentLoads() []Amount  { return r.currentLoads }
func (r *RawRoute) FwdPeaks() []Amount      { return r.fwdPeaks }
func (r *RawRoute) BwdPeaks() []Amount      { return r.bwdPeaks }
func (r *RawRoute) DeliveryMargin() Amount  { return r.deliveryMargin }
func (r *RawRoute) PickupMargin() Amount    { return r.pickupMargin }

// ExclusiveTagCount returns how many tasks in the route currently carry
// tag t.
func (r *RawRoute) ExclusiveTagCount(tag string) int {
	return r.exclusiveTagCounts[tag]
}

// SetRoute replaces the whole sequence and recomputes every load array.
func (r *RawRoute) SetRoute(jobs []int) {
	r.route = append([]int(nil), jobs...)
	r.updateAmounts()
}

// updateAmounts is the RawRoute update algorithm: a forward
// pass builds the cumulative SINGLE/shipment sums, a backward pass builds
// the symmetric bwd_* sums and current_loads, and two peak scans build
// fwd_peaks/bwd_peaks.
func (r *RawRoute) updateAmounts() {
	n := len(r.route)
	dim := r.dim()
	zero := NewAmount(dim)

	r.fwdPickups = make([]Amount, n)
	r.fwdDeliveries = make([]Amount, n)
	r.pdLoads = make([]Amount, n)
	r.nbPickups = make([]int, n)
	r.nbDeliveries = make([]int, n)
	r.bwdPickups = make([]Amount, n)
	r.bwdDeliveries = make([]Amount, n)
	r.currentLoads = make([]Amount, n+1)
	r.fwdPeaks = make([]Amount, n+1)
	r.bwdPeaks = make([]Amount, n+1)
	r.exclusiveTagCounts = make(map[string]int)

	// Forward pass.
	runningPickup := zero.Clone()
	runningDelivery := zero.Clone()
	runningPD := zero.Clone()
	pCount, dCount := 0, 0
	for i := 0; i < n; i++ {
		j := r.jobAt(i)
		switch j.Type {
		case Single:
			runningPickup = runningPickup.Add(j.PickupAmount)
			runningDelivery = runningDelivery.Add(j.DeliveryAmount)
		case Pickup:
			runningPD = runningPD.Add(j.PickupAmount)
			pCount++
		case Delivery:
			runningPD = runningPD.Sub(j.DeliveryAmount)
			dCount++
		}
		r.fwdPickups[i] = runningPickup.Clone()
		r.fwdDeliveries[i] = runningDelivery.Clone()
		r.pdLoads[i] = runningPD.Clone()
		r.nbPickups[i] = pCount
		r.nbDeliveries[i] = dCount
		for _, tag := range j.ExclusiveTags {
			r.exclusiveTagCounts[tag]++
		}
	}

	// Backward pass: bwd_* sums, then current_loads via a forward delta
	// simulation (equivalent to fwd_pickups[s-1]+pd_loads[s-1]+bwd_deliveries[s-1]
	// but computed with a single running delta to avoid dominance
	// assumptions on intermediate subtraction).
	runningPickupB := zero.Clone()
	runningDeliveryB := zero.Clone()
	for i := n - 1; i >= 0; i-- {
		r.bwdPickups[i] = runningPickupB.Clone()
		r.bwdDeliveries[i] = runningDeliveryB.Clone()
		j := r.jobAt(i)
		if j.Type == Single {
			runningPickupB = runningPickupB.Add(j.PickupAmount)
			runningDeliveryB = runningDeliveryB.Add(j.DeliveryAmount)
		}
	}

	cur := zero.Clone()
	if n > 0 {
		cur = r.fwdDeliveries[n-1].Clone()
	}
	r.currentLoads[0] = cur.Clone()
	for i := 0; i < n; i++ {
		j := r.jobAt(i)
		next := cur.Clone()
		for d := 0; d < dim; d++ {
			switch j.Type {
			case Single:
				next[d] = cur[d] + j.PickupAmount[d] - j.DeliveryAmount[d]
			case Pickup:
				next[d] = cur[d] + j.PickupAmount[d]
			case Delivery:
				next[d] = cur[d] - j.DeliveryAmount[d]
			}
		}
		cur = next
		r.currentLoads[i+1] = cur.Clone()
	}

	r.fwdPeaks[0] = r.currentLoads[0].Clone()
	for s := 1; s <= n; s++ {
		r.fwdPeaks[s] = r.fwdPeaks[s-1].Max(r.currentLoads[s])
	}
	r.bwdPeaks[n] = r.currentLoads[n].Clone()
	for s := n - 1; s >= 0; s-- {
		r.bwdPeaks[s] = r.bwdPeaks[s+1].Max(r.currentLoads[s])
	}

	capacity := r.vehicle().Capacity
	r.deliveryMargin = capacity.Sub(r.currentLoads[0])
	if n > 0 {
		r.pickupMargin = capacity.Sub(r.fwdPickups[n-1])
	} else {
		r.pickupMargin = capacity.Clone()
	}
}

func (r *RawRoute) jobAt(rank int) Job {
	return r.input.Jobs[r.route[rank]]
}

// IsValidAdditionForCapacity reports whether inserting a task contributing
// pickup/delivery amounts at route-rank `rank` respects capacity
// throughout the route.
func (r *RawRoute) IsValidAdditionForCapacity(pickup, delivery Amount, rank int) bool {
	capacity := r.vehicle().Capacity
	if !r.fwdPeaks[rank].Add(delivery).LessEq(capacity) {
		return false
	}
	return r.bwdPeaks[rank].Add(pickup).LessEq(capacity)
}

// IsValidAdditionForLoad reports whether current_loads[rank] + pickup
// stays within capacity (an empty route uses zero for current_loads[0]).
func (r *RawRoute) IsValidAdditionForLoad(pickup Amount, rank int) bool {
	capacity := r.vehicle().Capacity
	return r.currentLoads[rank].Add(pickup).LessEq(capacity)
}

// IsValidAdditionForCapacityMargins checks capacity for replacing
// [firstRank, lastRank) with a range contributing the given aggregate
// pickup/delivery, accounting for the loads that disappear with the
// removed tasks by anchoring on the peaks just outside the replaced
// range.
func (r *RawRoute) IsValidAdditionForCapacityMargins(pickup, delivery Amount, firstRank, lastRank int) bool {
	capacity := r.vehicle().Capacity
	if !r.fwdPeaks[firstRank].Add(delivery).LessEq(capacity) {
		return false
	}
	return r.bwdPeaks[lastRank].Add(pickup).LessEq(capacity)
}

// IsValidAdditionForCapacityInclusion simulates the componentwise load
// trajectory through the jobs that would replace [firstRank, lastRank),
// starting from current_loads[firstRank] adjusted for the deliveries
// carried by the replaced range, and checks every intermediate load
// against capacity as well as the peak after the inserted range.
func (r *RawRoute) IsValidAdditionForCapacityInclusion(deliverySum Amount, jobRanks []int, firstRank, lastRank int) bool {
	capacity := r.vehicle().Capacity
	dim := r.dim()

	removedDelivery := deliverySumOfRemoved(r, firstRank, lastRank, dim)
	start := r.currentLoads[firstRank].Clone()
	for d := 0; d < dim; d++ {
		start[d] = start[d] - removedDelivery[d] + deliverySum[d]
	}
	if !start.LessEq(capacity) {
		return false
	}

	cur := start.Clone()
	for _, jr := range jobRanks {
		j := r.input.Jobs[jr]
		next := cur.Clone()
		for d := 0; d < dim; d++ {
			switch j.Type {
			case Single:
				next[d] = cur[d] + j.PickupAmount[d] - j.DeliveryAmount[d]
			case Pickup:
				next[d] = cur[d] + j.PickupAmount[d]
			case Delivery:
				next[d] = cur[d] - j.DeliveryAmount[d]
			}
		}
		cur = next
		if !cur.LessEq(capacity) {
			return false
		}
	}

	return r.bwdPeaks[lastRank].LessEq(capacity)
}

func deliverySumOfRemoved(r *RawRoute, firstRank, lastRank, dim int) Amount {
	sum := NewAmount(dim)
	for i := firstRank; i < lastRank; i++ {
		j := r.jobAt(i)
		if j.Type == Single {
			sum = sum.Add(j.DeliveryAmount)
		}
	}
	return sum
}

// checkExclusiveTags enforces the exclusive-tag rule: the tag histogram of the inserted
// range, minus the histogram of the removed range, must not push any tag
// count above its per-route limit.
func (r *RawRoute) checkExclusiveTags(insertedRanks []int, firstRank, lastRank int) bool {
	v := r.vehicle()
	delta := map[string]int{}
	for _, jr := range insertedRanks {
		for _, tag := range r.input.Jobs[jr].ExclusiveTags {
			delta[tag]++
		}
	}
	for i := firstRank; i < lastRank; i++ {
		for _, tag := range r.jobAt(i).ExclusiveTags {
			delta[tag]--
		}
	}
	for tag, d := range delta {
		newCount := r.exclusiveTagCounts[tag] + d
		if newCount > v.ExclusiveTagLimit(tag) {
			return false
		}
	}
	return true
}

// checkFirstLegDistanceCap enforces the first-leg distance cap:
// if inserting at the head and the vehicle has a max first-leg distance,
// the distance from the vehicle start to the first inserted job must not
// exceed it.
func (r *RawRoute) checkFirstLegDistanceCap(insertedRanks []int, firstRank int) bool {
	v := r.vehicle()
	if firstRank != 0 || v.MaxFirstLegDistance == nil || len(insertedRanks) == 0 || !v.HasStart {
		return true
	}
	firstJob := r.input.Jobs[insertedRanks[0]]
	dist := r.input.Distance(v.Profile, v.StartLocationIndex, firstJob.LocationIndex)
	return dist <= *v.MaxFirstLegDistance
}

// pinnedBoundaryOK enforces the pinned_first/pinned_last
// requirements. IsValidAdditionForTW consults it before any other check,
// and budget repair's shed step consults it per removal; the RawRoute
// capacity and load predicates do not consult it. route is the route
// BEFORE mutation; newJobs is the job-rank sequence that would replace
// [firstRank, lastRank).
func pinnedBoundaryOK(v Vehicle, route []int, firstRank, lastRank int, newJobs []int) bool {
	newLen := len(route) - (lastRank - firstRank) + len(newJobs)
	get := func(rank int) (int, bool) {
		switch {
		case rank < firstRank:
			return route[rank], true
		case rank < firstRank+len(newJobs):
			return newJobs[rank-firstRank], true
		case rank < newLen:
			return route[rank-len(newJobs)+(lastRank-firstRank)], true
		default:
			return 0, false
		}
	}

	if v.PinnedFirst.Active {
		if v.PinnedFirst.Pair {
			// No insertion at rank 1 may dislodge the anchored pair, and
			// rank 0/1 must hold the pair whenever the route is long
			// enough to have them.
			if firstRank == 1 && lastRank == 1 && len(newJobs) > 0 {
				return false
			}
			if newLen >= 1 {
				r0, _ := get(0)
				if r0 != v.PinnedFirst.PickupJobRank {
					return false
				}
			}
			if newLen >= 2 {
				r1, _ := get(1)
				if r1 != v.PinnedFirst.DeliveryJobRank {
					return false
				}
			}
		} else {
			if newLen >= 1 {
				r0, _ := get(0)
				if r0 != v.PinnedFirst.JobRank {
					return false
				}
			}
		}
	}

	if v.PinnedLast.Active {
		if v.PinnedLast.Pair {
			if firstRank == newLen-1 && lastRank == newLen-1 && len(newJobs) > 0 {
				return false
			}
			if newLen >= 2 {
				rl1, _ := get(newLen - 2)
				if rl1 != v.PinnedLast.PickupJobRank {
					return false
				}
			}
			if newLen >= 1 {
				rl, _ := get(newLen - 1)
				if rl != v.PinnedLast.DeliveryJobRank {
					return false
				}
			}
		} else {
			if newLen >= 1 {
				rl, _ := get(newLen - 1)
				if rl != v.PinnedLast.JobRank {
					return false
				}
			}
		}
	}

	return true
}

// Add inserts job rank jobRank at route-rank `at`. The caller must have
// already established feasibility via the matching predicate; Add does
// not re-check it.
func (r *RawRoute) Add(jobRank, at int) {
	route := append([]int(nil), r.route[:at]...)
	route = append(route, jobRank)
	route = append(route, r.route[at:]...)
	r.SetRoute(route)
}

// Remove deletes `count` tasks starting at route-rank `at`.
func (r *RawRoute) Remove(at, count int) {
	route := append([]int(nil), r.route[:at]...)
	route = append(route, r.route[at+count:]...)
	r.SetRoute(route)
}

// Replace substitutes [firstRank, lastRank) with jobRanks.
func (r *RawRoute) Replace(jobRanks []int, firstRank, lastRank int) {
	route := append([]int(nil), r.route[:firstRank]...)
	route = append(route, jobRanks...)
	route = append(route, r.route[lastRank:]...)
	r.SetRoute(route)
}
