package routing

// JobType distinguishes a one-stop job from the two halves of a shipment.
// A PICKUP at rank r is always paired with its DELIVERY at rank r+1 in the
// job array.
type JobType int

const (
	Single JobType = iota
	Pickup
	Delivery
)

// PinnedPosition names a hard boundary requirement for a job.
type PinnedPosition int

const (
	PinnedNone PinnedPosition = iota
	PinnedPositionFirst
	PinnedPositionLast
)

// TimeWindow is a closed interval [Start, End] in internal duration units.
type TimeWindow struct {
	Start int64
	End   int64
}

// Contains reports whether t lies within the window.
func (w TimeWindow) Contains(t int64) bool {
	return w.Start <= t && t <= w.End
}

// Job is one task in the input job table. Of a shipment, the pickup half
// carries the shipped load in PickupAmount and the delivery half carries
// the same load in DeliveryAmount; budget is counted on the pickup half
// only.
type Job struct {
	ID                    int
	Type                  JobType
	LocationIndex         int
	DefaultSetup          int64
	DefaultService        int64
	SetupPerVehicleType   map[string]int64
	ServicePerVehicleType map[string]int64
	PickupAmount          Amount
	DeliveryAmount        Amount
	Skills                map[int]struct{}
	Priority              int
	TimeWindows           []TimeWindow
	Description           string

	Pinned         bool
	PinnedPosition PinnedPosition
	AllowedVehicles []int

	// VehiclePenalties applies a signed internal-cost adjustment when this
	// job is assigned to the given vehicle id.
	VehiclePenalties map[int]int64

	// ExclusiveTags: at most one task per tag may appear in a route, unless
	// the vehicle's ExclusiveTagLimits sets a different limit for the tag.
	ExclusiveTags []string

	// Budget is the per-task monetary allowance used by budget repair.
	Budget int64
}

// Setup returns the setup duration for the given vehicle type, falling
// back to DefaultSetup when no per-type override exists.
func (j Job) Setup(vehicleType string) int64 {
	if d, ok := j.SetupPerVehicleType[vehicleType]; ok {
		return d
	}
	return j.DefaultSetup
}

// Service returns the service duration for the given vehicle type, falling
// back to DefaultService when no per-type override exists.
func (j Job) Service(vehicleType string) int64 {
	if d, ok := j.ServicePerVehicleType[vehicleType]; ok {
		return d
	}
	return j.DefaultService
}

// IsValidStart reports whether t falls inside one of the job's time
// windows.
func (j Job) IsValidStart(t int64) bool {
	for _, tw := range j.TimeWindows {
		if tw.Contains(t) {
			return true
		}
	}
	return false
}

// EarliestTWStart returns the start of the first time window whose end is
// >= t, and whether one was found. This mirrors the original engine's
// search for "the first job-TW admitting the arrival" used during forward
// propagation.
func (j Job) EarliestTWStart(t int64) (int64, bool) {
	for _, tw := range j.TimeWindows {
		if tw.End >= t {
			return tw.Start, true
		}
	}
	return 0, false
}

// LastTWEnd returns the end of the last time window, used as the soft-pin
// clamp ceiling.
func (j Job) LastTWEnd() int64 {
	return j.TimeWindows[len(j.TimeWindows)-1].End
}

// EarliestTWEnd returns the end of the first time window whose end is >= t,
// and whether one was found; it is EarliestTWStart's sibling, used to
// compare two candidate windows by deadline rather than by start.
func (j Job) EarliestTWEnd(t int64) (int64, bool) {
	for _, tw := range j.TimeWindows {
		if tw.End >= t {
			return tw.End, true
		}
	}
	return 0, false
}

// Break is one scheduled rest period belonging to a vehicle.
type Break struct {
	ID          int
	TimeWindows []TimeWindow
	Service     int64
	// MaxLoad is nil when the break has no load restriction.
	MaxLoad Amount
}

// IsValidForLoad reports whether load respects the break's max-load
// constraint, if any.
func (b Break) IsValidForLoad(load Amount) bool {
	if b.MaxLoad == nil {
		return true
	}
	return load.LessEq(b.MaxLoad)
}

func (b Break) EarliestTWStart(t int64) (int64, bool) {
	for _, tw := range b.TimeWindows {
		if tw.End >= t {
			return tw.Start, true
		}
	}
	return 0, false
}

func (b Break) LastTWEnd() int64 {
	return b.TimeWindows[len(b.TimeWindows)-1].End
}

// EarliestTWEnd is Job.EarliestTWEnd's sibling for breaks.
func (b Break) EarliestTWEnd(t int64) (int64, bool) {
	for _, tw := range b.TimeWindows {
		if tw.End >= t {
			return tw.End, true
		}
	}
	return 0, false
}
