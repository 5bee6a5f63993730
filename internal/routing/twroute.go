package routing

// TWRoute extends RawRoute with time-window propagation, break placement
// and the smallest forward/backward break-load margins needed to keep
// max-load-constrained breaks feasible under capacity changes.
type TWRoute struct {
	*RawRoute

	earliest   []int64
	latest     []int64
	actionTime []int64

	breaksAtRank []int // size n+1, breaks scheduled immediately before rank i
	breaksCounts []int // size n+1, prefix sum of breaksAtRank

	breakEarliest []int64 // size = len(vehicle.Breaks)
	breakLatest   []int64

	fwdSmallestBreaksLoadMargin []Amount // size = len(vehicle.Breaks)
	bwdSmallestBreaksLoadMargin []Amount

	isPinnedStep         []bool
	baselineServiceStart []int64
}

// NewTWRoute validates the vehicle's break definitions against its time
// window and returns an empty timed route. Construction fails with
// InconsistentBreaksError when breaks cannot be sequenced within the
// vehicle's time window in either direction.
func NewTWRoute(input *Input, vehicleRank int) (*TWRoute, error) {
	v := input.Vehicles[vehicleRank]
	if err := validateBreaks(v); err != nil {
		return nil, err
	}
	t := &TWRoute{RawRoute: NewRawRoute(input, vehicleRank)}
	t.resetTimingArrays()
	return t, nil
}

func validateBreaks(v Vehicle) error {
	if len(v.Breaks) == 0 {
		return nil
	}
	totalService := int64(0)
	for _, b := range v.Breaks {
		if len(b.TimeWindows) == 0 {
			return &InconsistentBreaksError{VehicleID: v.ID}
		}
		if b.LastTWEnd() < v.TimeWindow.Start || b.TimeWindows[0].Start > v.TimeWindow.End {
			return &InconsistentBreaksError{VehicleID: v.ID}
		}
		totalService += b.Service
	}
	if totalService > v.TimeWindow.End-v.TimeWindow.Start {
		return &InconsistentBreaksError{VehicleID: v.ID}
	}
	return nil
}

func (t *TWRoute) resetTimingArrays() {
	n := t.Size()
	v := t.vehicle()
	nb := len(v.Breaks)

	t.earliest = make([]int64, n)
	t.latest = make([]int64, n)
	t.actionTime = make([]int64, n)
	t.breaksAtRank = make([]int, n+1)
	t.breaksCounts = make([]int, n+1)
	t.breakEarliest = make([]int64, nb)
	t.breakLatest = make([]int64, nb)
	t.fwdSmallestBreaksLoadMargin = make([]Amount, nb)
	t.bwdSmallestBreaksLoadMargin = make([]Amount, nb)
	t.isPinnedStep = make([]bool, n)
	t.baselineServiceStart = make([]int64, n)
}

// Accessors.
func (t *TWRoute) Earliest() []int64             { return t.earliest }
func (t *TWRoute) Latest() []int64               { return t.latest }
func (t *TWRoute) ActionTime() []int64           { return t.actionTime }
func (t *TWRoute) BreaksAtRank() []int           { return t.breaksAtRank }
func (t *TWRoute) BreaksCounts() []int           { return t.breaksCounts }
func (t *TWRoute) BreakEarliest() []int64        { return t.breakEarliest }
func (t *TWRoute) BreakLatest() []int64          { return t.breakLatest }
func (t *TWRoute) IsPinnedStep() []bool          { return t.isPinnedStep }
func (t *TWRoute) BaselineServiceStart() []int64 { return t.baselineServiceStart }

func (t *TWRoute) locationAt(rank int) int {
	if rank < 0 {
		v := t.vehicle()
		if v.HasStart {
			return v.StartLocationIndex
		}
		return t.jobAt(0).LocationIndex
	}
	return t.jobAt(rank).LocationIndex
}

func (t *TWRoute) travelBetweenRanks(from, to int) int64 {
	v := t.vehicle()
	return t.input.Duration(v.Profile, t.locationAt(from), t.locationAt(to))
}

// actionTimeFor computes spec invariant 5: service if the previous
// location (or vehicle start at rank 0) matches this job's location, else
// setup+service.
func (t *TWRoute) actionTimeFor(rank int) int64 {
	v := t.vehicle()
	job := t.jobAt(rank)
	prevLocation := -1
	if rank == 0 {
		if v.HasStart {
			prevLocation = v.StartLocationIndex
		} else {
			prevLocation = job.LocationIndex
		}
	} else {
		prevLocation = t.jobAt(rank - 1).LocationIndex
	}
	if prevLocation == job.LocationIndex {
		return job.Service(v.Type)
	}
	return job.Setup(v.Type) + job.Service(v.Type)
}

func (t *TWRoute) updateActionTimes() {
	for i := range t.route {
		t.actionTime[i] = t.actionTimeFor(i)
	}
}

// SeedRelaxedFromJobRanks builds a relaxed seed: all vehicle breaks are
// placed immediately before route end (the break-ordering policy is not
// applied), earliest is propagated forward and latest backward over the
// whole route, and the resulting earliest dates become the baseline
// service starts. Earliest dates are raised to job TW starts.
func (t *TWRoute) SeedRelaxedFromJobRanks(jobRanks []int) {
	t.RawRoute.SetRoute(jobRanks)
	t.resetTimingArrays()

	n := t.Size()
	v := t.vehicle()
	nb := len(v.Breaks)
	for i := 0; i < n; i++ {
		t.breaksAtRank[i] = 0
	}
	t.breaksAtRank[n] = nb
	sum := 0
	for i := 0; i <= n; i++ {
		sum += t.breaksAtRank[i]
		t.breaksCounts[i] = sum
	}

	start := v.TimeWindow.Start
	if n > 0 {
		t.earliest[0] = start
		if v.HasStart {
			t.earliest[0] += t.travelBetweenRanks(-1, 0)
		}
		if twStart, ok := t.jobAt(0).EarliestTWStart(t.earliest[0]); ok && t.earliest[0] < twStart {
			t.earliest[0] = twStart
		}
		t.baselineServiceStart[0] = t.earliest[0]
		t.updateActionTimes()
		t.fwdUpdateEarliestFromRank(0)
		t.bwdUpdateLatestFromRank(n - 1)
		t.updateLastLatestDate()
		for i := range t.baselineServiceStart {
			t.baselineServiceStart[i] = t.earliest[i]
		}
	}
	t.updateBreaksLoadMargins()
}

// fwdUpdateEarliestFromRank propagates `earliest` forward starting at
// `rank`, walking breaks already committed to their slots (breaksAtRank),
// per step. Propagation stops early once earliest[i] is unchanged
// (monotone fixed point).
func (t *TWRoute) fwdUpdateEarliestFromRank(rank int) {
	n := t.Size()
	v := t.vehicle()
	for i := rank + 1; i < n; i++ {
		current := t.earliest[i-1]
		prevActionTime := t.actionTime[i-1]

		bStart := t.breaksCounts[i] - t.breaksAtRank[i]
		bEnd := t.breaksCounts[i]
		for bi := bStart; bi < bEnd; bi++ {
			current += prevActionTime
			br := v.Breaks[bi]
			twStart, ok := br.EarliestTWStart(current)
			if !ok {
				if !v.SoftPinEnabled {
					// Infeasibility should have been caught by the
					// matching predicate; clamp defensively rather than
					// propagate an unbounded value.
				}
				current = br.LastTWEnd()
				t.breakEarliest[bi] = current
				prevActionTime = br.Service
				if v.SoftPinEnabled {
					break
				}
				continue
			}
			if current < twStart {
				current = twStart
			}
			t.breakEarliest[bi] = current
			prevActionTime = br.Service
		}

		travel := t.travelBetweenRanks(i-1, i)
		current += prevActionTime + travel
		job := t.jobAt(i)
		newEarliest := current
		if twStart, ok := job.EarliestTWStart(current); ok {
			if current < twStart {
				newEarliest = twStart
			}
		} else if v.SoftPinEnabled {
			newEarliest = job.LastTWEnd()
		}

		if newEarliest == t.earliest[i] {
			break
		}
		t.earliest[i] = newEarliest
	}
	t.handleLastBreaksEarliest()
}

// handleLastBreaksEarliest computes break_earliest for breaks scheduled
// after the last job (slot n).
func (t *TWRoute) handleLastBreaksEarliest() {
	n := t.Size()
	v := t.vehicle()
	bStart := t.breaksCounts[n] - t.breaksAtRank[n]
	bEnd := t.breaksCounts[n]
	current := v.TimeWindow.Start
	prevActionTime := int64(0)
	if n > 0 {
		current = t.earliest[n-1]
		prevActionTime = t.actionTime[n-1]
	}
	for bi := bStart; bi < bEnd; bi++ {
		current += prevActionTime
		br := v.Breaks[bi]
		twStart, ok := br.EarliestTWStart(current)
		if !ok {
			current = br.LastTWEnd()
		} else if current < twStart {
			current = twStart
		}
		t.breakEarliest[bi] = current
		prevActionTime = br.Service
	}
}

// bwdUpdateLatestFromRank propagates `latest` backward starting at
// `rank`, symmetric to fwdUpdateEarliestFromRank.
func (t *TWRoute) bwdUpdateLatestFromRank(rank int) {
	v := t.vehicle()
	for i := rank - 1; i >= 0; i-- {
		next := t.latest[i+1]
		actionTimeNext := t.actionTime[i+1]
		travel := t.travelBetweenRanks(i, i+1)

		bStart := t.breaksCounts[i+1] - t.breaksAtRank[i+1]
		bEnd := t.breaksCounts[i+1]
		current := next
		for bi := bEnd - 1; bi >= bStart; bi-- {
			br := v.Breaks[bi]
			current -= br.Service
			if current < br.TimeWindows[0].Start {
				current = br.TimeWindows[0].Start
			}
			t.breakLatest[bi] = current
		}
		_ = actionTimeNext

		candidate := current - travel - t.actionTime[i]
		if candidate > t.jobAt(i).LastTWEnd() {
			candidate = t.jobAt(i).LastTWEnd()
		}
		if candidate == t.latest[i] {
			break
		}
		if candidate < t.earliest[i] {
			// Soft-pin drift: clamp latest up to earliest rather than
			// violate invariant 3.
			candidate = t.earliest[i]
		}
		t.latest[i] = candidate
	}
	t.handleHeadBreaksLatest()
}

func (t *TWRoute) handleHeadBreaksLatest() {
	v := t.vehicle()
	n := t.Size()
	if n == 0 {
		return
	}
	bStart := t.breaksCounts[0] - t.breaksAtRank[0]
	bEnd := t.breaksCounts[0]
	current := t.latest[0]
	for bi := bEnd - 1; bi >= bStart; bi-- {
		br := v.Breaks[bi]
		current -= br.Service
		if current < br.TimeWindows[0].Start {
			current = br.TimeWindows[0].Start
		}
		t.breakLatest[bi] = current
	}
}

// updateLastLatestDate computes the latest date for the last job plus any
// breaks scheduled before route end, anchored on the vehicle's own time
// window end (and end location travel, if any).
func (t *TWRoute) updateLastLatestDate() {
	n := t.Size()
	if n == 0 {
		return
	}
	v := t.vehicle()
	end := v.TimeWindow.End
	if v.HasEnd {
		end -= t.input.Duration(v.Profile, t.jobAt(n-1).LocationIndex, v.EndLocationIndex)
	}

	bStart := t.breaksCounts[n] - t.breaksAtRank[n]
	bEnd := t.breaksCounts[n]
	current := end
	for bi := bEnd - 1; bi >= bStart; bi-- {
		br := v.Breaks[bi]
		current -= br.Service
		if current < br.TimeWindows[0].Start {
			current = br.TimeWindows[0].Start
		}
		t.breakLatest[bi] = current
	}

	if current > t.jobAt(n - 1).LastTWEnd() {
		current = t.jobAt(n - 1).LastTWEnd()
	}
	t.latest[n-1] = current
	t.bwdUpdateLatestFromRank(n - 1)
}

// updateBreaksLoadMargins recomputes fwd/bwd smallest breaks load margin
// (componentwise min, across breaks 0..b resp. b..end, of max_load -
// current_load_at_break) for every break in the vehicle.
func (t *TWRoute) updateBreaksLoadMargins() {
	v := t.vehicle()
	dim := t.dim()
	nb := len(v.Breaks)
	if nb == 0 {
		return
	}
	hugeMargin := func() Amount {
		a := NewAmount(dim)
		for d := range a {
			a[d] = 1 << 50
		}
		return a
	}

	// Forward: approximate the load at each break by the current_loads
	// value at the rank it is scheduled before.
	running := hugeMargin()
	for rank := 0; rank <= t.Size(); rank++ {
		bStart := t.breaksCounts[rank] - t.breaksAtRank[rank]
		bEnd := t.breaksCounts[rank]
		for bi := bStart; bi < bEnd; bi++ {
			br := v.Breaks[bi]
			if br.MaxLoad != nil {
				margin := br.MaxLoad.Sub(t.currentLoads[rank])
				running = running.Min(margin)
			}
			t.fwdSmallestBreaksLoadMargin[bi] = running.Clone()
		}
	}
	running = hugeMargin()
	for rank := t.Size(); rank >= 0; rank-- {
		bStart := t.breaksCounts[rank] - t.breaksAtRank[rank]
		bEnd := t.breaksCounts[rank]
		for bi := bEnd - 1; bi >= bStart; bi-- {
			br := v.Breaks[bi]
			if br.MaxLoad != nil {
				margin := br.MaxLoad.Sub(t.currentLoads[rank])
				running = running.Min(margin)
			}
			t.bwdSmallestBreaksLoadMargin[bi] = running.Clone()
		}
	}
}
