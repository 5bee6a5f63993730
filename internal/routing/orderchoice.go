package routing

// orderContext carries everything order_choice needs to decide, for one
// due break and the next task, whether the break goes before or after
// that task (break-ordering policy).
type orderContext struct {
	vehicleType string

	prevEarliest   int64
	prevActionTime int64
	travelToJob    int64

	job Job
	br  Break

	// nextLatest bounds reachability of the step after job (the next rank,
	// or vehicle end if job is the last task).
	nextLatest int64

	checkMaxLoad bool
	currentLoad  Amount // load just before job's own pickup/delivery effect

	// Lookahead used only for the PICKUP special case: the job immediately
	// following in the walk, and the travel to reach it. nil when job is
	// not a PICKUP or no such lookahead is available.
	nextJob        *Job
	travelJobToNext int64
}

type orderOutcome struct {
	ok            bool
	breakStart    int64
	earliestAtJob int64
	end           int64 // earliest time the whole (break,job) pair is done, in this ordering
}

// simulateBreakThenJob computes the outcome of scheduling the break before
// the job. end is break_then_job_end: the job's own earliest completion
// once the break has run first.
func simulateBreakThenJob(ctx orderContext) orderOutcome {
	current := ctx.prevEarliest + ctx.prevActionTime
	start, ok := ctx.br.EarliestTWStart(current)
	if !ok {
		return orderOutcome{}
	}
	if current < start {
		current = start
	}
	breakStart := current
	if ctx.checkMaxLoad && !ctx.br.IsValidForLoad(ctx.currentLoad) {
		return orderOutcome{}
	}
	current += ctx.br.Service + ctx.travelToJob
	twStart, ok := ctx.job.EarliestTWStart(current)
	if !ok {
		return orderOutcome{}
	}
	if current < twStart {
		current = twStart
	}
	earliestAtJob := current
	end := current + ctx.job.Service(ctx.vehicleType)
	if end > ctx.nextLatest {
		return orderOutcome{}
	}
	return orderOutcome{ok: true, breakStart: breakStart, earliestAtJob: earliestAtJob, end: end}
}

// simulateJobThenBreak computes the outcome of scheduling the job before
// the break. end is job_then_break_end: the break's own earliest
// completion once the job has run first.
func simulateJobThenBreak(ctx orderContext) orderOutcome {
	current := ctx.prevEarliest + ctx.prevActionTime + ctx.travelToJob
	twStart, ok := ctx.job.EarliestTWStart(current)
	if !ok {
		return orderOutcome{}
	}
	if current < twStart {
		current = twStart
	}
	earliestAtJob := current

	jobAction := ctx.job.Service(ctx.vehicleType)
	current += jobAction
	start, ok := ctx.br.EarliestTWStart(current)
	if !ok {
		return orderOutcome{}
	}
	if current < start {
		current = start
	}
	breakStart := current
	if ctx.checkMaxLoad {
		load := ctx.currentLoad
		switch ctx.job.Type {
		case Single:
			load = load.Add(ctx.job.PickupAmount).Sub(ctx.job.DeliveryAmount)
		case Pickup:
			load = load.Add(ctx.job.PickupAmount)
		case Delivery:
			load = load.Sub(ctx.job.DeliveryAmount)
		}
		if !ctx.br.IsValidForLoad(load) {
			return orderOutcome{}
		}
	}
	end := current + ctx.br.Service
	if end > ctx.nextLatest {
		return orderOutcome{}
	}
	return orderOutcome{ok: true, breakStart: breakStart, earliestAtJob: earliestAtJob, end: end}
}

// orderChoice decides whether the break goes before or after the job,
// following the ordering policy. It returns breakFirst and whether
// any ordering is feasible at all.
func orderChoice(ctx orderContext) (breakFirst bool, feasible bool, outcome orderOutcome) {
	bf := simulateBreakThenJob(ctx)
	jf := simulateJobThenBreak(ctx)

	switch {
	case !bf.ok && !jf.ok:
		return false, false, orderOutcome{}
	case bf.ok && !jf.ok:
		return true, true, bf
	case !bf.ok && jf.ok:
		return false, true, jf
	}

	if ctx.job.Type == Pickup {
		// Prefer pickup-then-break unless it would strand the subsequent
		// delivery: check both legal sub-orderings pickup->break->delivery
		// and pickup->delivery->break before committing to job-first.
		if ctx.nextJob != nil {
			deliveryCtx := ctx
			deliveryCtx.job = *ctx.nextJob
			deliveryCtx.prevEarliest = jf.earliestAtJob
			deliveryCtx.prevActionTime = ctx.job.Service(ctx.vehicleType)
			deliveryCtx.travelToJob = ctx.travelJobToNext
			deliveryCtx.currentLoad = ctx.currentLoad.Add(ctx.job.PickupAmount)

			pickupDeliveryBreak := simulateJobThenBreak(deliveryCtx)
			pickupBreakDelivery := simulateBreakThenJob(deliveryCtx)
			if pickupDeliveryBreak.ok || pickupBreakDelivery.ok {
				return false, true, jf
			}
			return true, true, bf
		}
		return false, true, jf
	}

	// SINGLE or DELIVERY: minimise the resulting end date for the sequence
	// (job_then_break_end vs break_then_job_end), not the arrival at job.
	if jf.end < bf.end {
		return false, true, jf
	}
	if bf.end < jf.end {
		return true, true, bf
	}
	// Tie: a DELIVERY always goes job-first, since postponing a delivery
	// with no TW constraint of its own can introduce unbounded waiting
	// between zero-max_load breaks. A SINGLE job goes job-first only when
	// its own TW deadline is no later than the break's; otherwise it waits
	// behind the break.
	if ctx.job.Type == Delivery {
		return false, true, jf
	}
	jEnd, jOK := ctx.job.EarliestTWEnd(ctx.prevEarliest + ctx.prevActionTime + ctx.travelToJob)
	bEnd, bOK := ctx.br.EarliestTWEnd(ctx.prevEarliest + ctx.prevActionTime)
	if jOK && bOK && jEnd <= bEnd {
		return false, true, jf
	}
	return true, true, bf
}
