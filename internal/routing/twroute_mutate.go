package routing

// rangeWalkResult is the outcome of interleaving a candidate job sequence
// with the breaks that must be rescheduled around it.
type rangeWalkResult struct {
	ok bool

	earliestByRank map[int]int64 // local rank within jobRanks -> earliest
	actionByRank   map[int]int64
	breakPlacement map[int]int     // local rank (0..len(jobRanks)) -> break count placed immediately before it
	breakStart     map[int]int64   // break index -> earliest start

	finalEarliest   int64 // time ready to depart after the walked range
	finalActionTime int64
	finalLocation   int
	load            Amount
}

// walkInsertedRange interleaves jobRanks with pendingBreaks (breaks that
// were scheduled inside the replaced range and must be re-placed),
// applying order_choice at every step. nextLatest
// bounds reachability of the eventual next surviving step or vehicle end.
func (t *TWRoute) walkInsertedRange(
	startEarliest, startActionTime int64,
	startLocation int,
	pendingBreaks []int,
	jobRanks []int,
	nextLatest int64,
	checkMaxLoad bool,
	startLoad Amount,
) rangeWalkResult {
	v := t.vehicle()
	res := rangeWalkResult{
		earliestByRank: make(map[int]int64),
		actionByRank:   make(map[int]int64),
		breakPlacement: make(map[int]int),
		breakStart:     make(map[int]int64),
	}

	current := startEarliest
	prevActionTime := startActionTime
	prevLoc := startLocation
	load := startLoad.Clone()
	pending := append([]int(nil), pendingBreaks...)

	for idx, jr := range jobRanks {
		job := t.input.Jobs[jr]

		for len(pending) > 0 {
			br := v.Breaks[pending[0]]
			travelToJob := t.input.Duration(v.Profile, prevLoc, job.LocationIndex)

			var nextJobPtr *Job
			var travelJobToNext int64
			if job.Type == Pickup && idx+1 < len(jobRanks) {
				nj := t.input.Jobs[jobRanks[idx+1]]
				nextJobPtr = &nj
				travelJobToNext = t.input.Duration(v.Profile, job.LocationIndex, nj.LocationIndex)
			}

			ctx := orderContext{
				vehicleType:     v.Type,
				prevEarliest:    current,
				prevActionTime:  prevActionTime,
				travelToJob:     travelToJob,
				job:             job,
				br:              br,
				nextLatest:      nextLatest,
				checkMaxLoad:    checkMaxLoad,
				currentLoad:     load,
				nextJob:         nextJobPtr,
				travelJobToNext: travelJobToNext,
			}

			breakFirst, feasible, outcome := orderChoice(ctx)
			if !feasible {
				return rangeWalkResult{ok: false}
			}
			if !breakFirst {
				break
			}
			res.breakPlacement[idx]++
			res.breakStart[pending[0]] = outcome.breakStart
			current = outcome.breakStart + br.Service
			prevActionTime = 0
			pending = pending[1:]
		}

		travel := t.input.Duration(v.Profile, prevLoc, job.LocationIndex)
		arrival := current + prevActionTime + travel
		twStart, ok := job.EarliestTWStart(arrival)
		if !ok {
			return rangeWalkResult{ok: false}
		}
		if arrival < twStart {
			arrival = twStart
		}
		res.earliestByRank[idx] = arrival

		var action int64
		if prevLoc == job.LocationIndex {
			action = job.Service(v.Type)
		} else {
			action = job.Setup(v.Type) + job.Service(v.Type)
		}
		res.actionByRank[idx] = action

		switch job.Type {
		case Single:
			load = load.Add(job.PickupAmount).Sub(job.DeliveryAmount)
		case Pickup:
			load = load.Add(job.PickupAmount)
		case Delivery:
			load = load.Sub(job.DeliveryAmount)
		}
		if checkMaxLoad && !load.LessEq(t.vehicle().Capacity) {
			return rangeWalkResult{ok: false}
		}

		current = arrival
		prevActionTime = action
		prevLoc = job.LocationIndex
	}

	for _, bi := range pending {
		br := v.Breaks[bi]
		current += prevActionTime
		start, ok := br.EarliestTWStart(current)
		if !ok {
			return rangeWalkResult{ok: false}
		}
		if current < start {
			current = start
		}
		if checkMaxLoad && !br.IsValidForLoad(load) {
			return rangeWalkResult{ok: false}
		}
		res.breakStart[bi] = current
		res.breakPlacement[len(jobRanks)]++
		prevActionTime = br.Service
	}

	if current+prevActionTime > nextLatest && len(pending) == 0 && len(jobRanks) == 0 {
		return rangeWalkResult{ok: false}
	}

	res.ok = true
	res.finalEarliest = current
	res.finalActionTime = prevActionTime
	res.finalLocation = prevLoc
	res.load = load
	return res
}

// pendingBreaksForRange returns the break indices currently scheduled in
// slots [firstRank, lastRank] (inclusive of the slot immediately after
// the replaced range, whose predecessor task is changing).
func (t *TWRoute) pendingBreaksForRange(firstRank, lastRank int) []int {
	bStart := t.breaksCounts[firstRank] - t.breaksAtRank[firstRank]
	bEnd := t.breaksCounts[lastRank]
	out := make([]int, 0, bEnd-bStart)
	for bi := bStart; bi < bEnd; bi++ {
		out = append(out, bi)
	}
	return out
}

// IsValidAdditionForTW checks, without mutating, whether replacing
// [firstRank, lastRank) with jobRanks yields a TW-feasible route.
// deliverySum is the aggregate delivery amount of the inserted range, used
// by the capacity-inclusion gate.
func (t *TWRoute) IsValidAdditionForTW(deliverySum Amount, jobRanks []int, firstRank, lastRank int, checkMaxLoad bool) bool {
	n := t.Size()
	if firstRank < 0 || lastRank < firstRank || lastRank > n {
		return false
	}
	v := t.vehicle()

	if !pinnedBoundaryOK(v, t.route, firstRank, lastRank, jobRanks) {
		return false
	}
	if v.SoftPinEnabled && v.PinnedFirst.Active && v.SoftPinViolationBudget == 0 && firstRank == 0 && len(jobRanks) > 0 {
		return false
	}
	if !t.checkFirstLegDistanceCap(jobRanks, firstRank) {
		return false
	}
	if !t.checkExclusiveTags(jobRanks, firstRank, lastRank) {
		return false
	}
	if !t.IsValidAdditionForCapacityInclusion(deliverySum, jobRanks, firstRank, lastRank) {
		return false
	}

	startEarliest := int64(0)
	startAction := int64(0)
	startLocation := 0
	if firstRank == 0 {
		if v.HasStart {
			startLocation = v.StartLocationIndex
		} else if len(jobRanks) > 0 {
			startLocation = t.input.Jobs[jobRanks[0]].LocationIndex
		}
		startEarliest = v.TimeWindow.Start
	} else {
		startEarliest = t.earliest[firstRank-1]
		startAction = t.actionTime[firstRank-1]
		startLocation = t.jobAt(firstRank - 1).LocationIndex
	}

	nextLatest := v.TimeWindow.End
	var nextTravel int64
	nextLoc := -1
	if lastRank < n {
		nextLatest = t.latest[lastRank]
		nextLoc = t.jobAt(lastRank).LocationIndex
	} else if v.HasEnd {
		nextLoc = v.EndLocationIndex
	}

	pending := t.pendingBreaksForRange(firstRank, lastRank)
	startLoad := t.currentLoads[firstRank]

	res := t.walkInsertedRange(startEarliest, startAction, startLocation, pending, jobRanks, nextLatest, checkMaxLoad, startLoad)
	if !res.ok {
		return false
	}

	if nextLoc >= 0 {
		nextTravel = t.input.Duration(v.Profile, res.finalLocation, nextLoc)
	}
	finalArrival := res.finalEarliest + res.finalActionTime + nextTravel
	if finalArrival > nextLatest {
		return false
	}

	if !t.softPinSlackOK(lastRank, finalArrival) {
		return false
	}

	return true
}

// softPinSlackOK enforces the violation-budget timing relaxation: when
// soft-pinned timing is enabled with a violation budget B, it scans
// forward for the nearest pinned step and ensures the added delay there
// stays within min(B, tw.end-baseline). No mutator marks a step as pinned:
// isPinnedStep starts all false and Replace only carries existing flags
// over, so the scan finds no pinned step and this check accepts every
// insertion.
func (t *TWRoute) softPinSlackOK(fromRank int, newArrivalAtFromRank int64) bool {
	v := t.vehicle()
	if !v.SoftPinEnabled {
		return true
	}
	for i := fromRank; i < t.Size(); i++ {
		if !t.isPinnedStep[i] {
			continue
		}
		delta := newArrivalAtFromRank - t.baselineServiceStart[i]
		if delta <= 0 {
			return true
		}
		allowed := v.SoftPinViolationBudget
		twEnd := t.jobAt(i).LastTWEnd()
		if slack := twEnd - t.baselineServiceStart[i]; slack < allowed {
			allowed = slack
		}
		return delta <= allowed
	}
	return true
}

// Replace mirrors IsValidAdditionForTW but writes the resulting state,
// the same way. Callers must have already established feasibility via
// IsValidAdditionForTW with the same arguments.
func (t *TWRoute) Replace(jobRanks []int, firstRank, lastRank int, checkMaxLoad bool) {
	n := t.Size()
	v := t.vehicle()

	startEarliest := int64(0)
	startAction := int64(0)
	startLocation := 0
	if firstRank == 0 {
		if v.HasStart {
			startLocation = v.StartLocationIndex
		} else if len(jobRanks) > 0 {
			startLocation = t.input.Jobs[jobRanks[0]].LocationIndex
		}
		startEarliest = v.TimeWindow.Start
	} else {
		startEarliest = t.earliest[firstRank-1]
		startAction = t.actionTime[firstRank-1]
		startLocation = t.jobAt(firstRank - 1).LocationIndex
	}

	nextLatest := v.TimeWindow.End
	if lastRank < n {
		nextLatest = t.latest[lastRank]
	}

	pending := t.pendingBreaksForRange(firstRank, lastRank)
	startLoad := t.currentLoads[firstRank]
	res := t.walkInsertedRange(startEarliest, startAction, startLocation, pending, jobRanks, nextLatest, checkMaxLoad, startLoad)

	oldBreaksAtRank := t.breaksAtRank
	oldBreaksCounts := t.breaksCounts
	oldEarliest := t.earliest
	oldLatest := t.latest
	oldIsPinned := t.isPinnedStep
	oldBaseline := t.baselineServiceStart

	// Rebuild the underlying job sequence.
	t.RawRoute.Replace(jobRanks, firstRank, lastRank)
	newN := t.Size()
	t.resetTimingArrays()

	// Copy the untouched prefix.
	for i := 0; i < firstRank; i++ {
		t.earliest[i] = oldEarliest[i]
		t.latest[i] = oldLatest[i]
		t.isPinnedStep[i] = oldIsPinned[i]
		t.baselineServiceStart[i] = oldBaseline[i]
		t.breaksAtRank[i] = oldBreaksAtRank[i]
	}
	// Copy the untouched suffix, shifted by the rank delta. The breaks of
	// slot lastRank were re-placed by the walk, so that slot is not copied;
	// the route-end slot n is copied when it lies outside the replaced range.
	shift := len(jobRanks) - (lastRank - firstRank)
	for i := lastRank; i < n; i++ {
		ni := i + shift
		t.earliest[ni] = oldEarliest[i]
		t.latest[ni] = oldLatest[i]
		t.isPinnedStep[ni] = oldIsPinned[i]
		t.baselineServiceStart[ni] = oldBaseline[i]
		if i > lastRank {
			t.breaksAtRank[ni] = oldBreaksAtRank[i]
		}
	}
	if lastRank < n {
		t.breaksAtRank[newN] = oldBreaksAtRank[n]
	}
	_ = oldBreaksCounts

	// Write the inserted range using the walk's results.
	for idx := range jobRanks {
		ni := firstRank + idx
		t.earliest[ni] = res.earliestByRank[idx]
		t.actionTime[ni] = res.actionByRank[idx]
		t.breaksAtRank[ni] = res.breakPlacement[idx]
	}
	t.breaksAtRank[firstRank+len(jobRanks)] += res.breakPlacement[len(jobRanks)]

	sum := 0
	for i := 0; i <= newN; i++ {
		sum += t.breaksAtRank[i]
		t.breaksCounts[i] = sum
	}
	for bi, start := range res.breakStart {
		t.breakEarliest[bi] = start
	}

	t.updateActionTimes()
	if firstRank > 0 {
		t.fwdUpdateEarliestFromRank(firstRank - 1)
	} else if newN > 0 {
		if e, ok := res.earliestByRank[0]; ok {
			t.earliest[0] = e
		} else if v.HasStart {
			t.earliest[0] = v.TimeWindow.Start + t.travelBetweenRanks(-1, 0)
		} else {
			t.earliest[0] = v.TimeWindow.Start
		}
		t.fwdUpdateEarliestFromRank(0)
	}
	if shift != 0 || lastRank >= n {
		t.updateLastLatestDate()
	} else {
		t.bwdUpdateLatestFromRank(newN - 1)
	}
	t.updateBreaksLoadMargins()
}
