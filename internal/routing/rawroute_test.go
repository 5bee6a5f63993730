package routing

import "testing"

// TestCapacityOverflowRejected mirrors the capacity scenario: a vehicle with
// capacity 10 can carry job J1 (amount 4) but adding J2 (amount 7) after it
// overflows capacity (4+7 > 10).
func TestCapacityOverflowRejected(t *testing.T) {
	input := simpleInput(3, 1)
	input.Vehicles = []Vehicle{basicVehicle(1, 10, TimeWindow{0, 100})}
	input.Jobs = []Job{
		singleJob(1, 1, 4, 0, TimeWindow{0, 100}),
		singleJob(2, 2, 7, 0, TimeWindow{0, 100}),
	}
	input.Jobs[0].DeliveryAmount = amt(0)
	input.Jobs[1].DeliveryAmount = amt(0)

	rr := NewRawRoute(input, 0)

	if !rr.IsValidAdditionForLoad(amt(4), 0) {
		t.Fatalf("adding J1 (amount 4) to an empty route should be capacity-feasible")
	}
	rr.Add(0, 0)

	if rr.IsValidAdditionForLoad(amt(7), 1) {
		t.Fatalf("adding J2 (amount 7) after J1 (amount 4) should overflow capacity 10")
	}
}

// TestEmptyRouteMarginsEqualCapacity checks the degenerate case of an empty
// route: delivery/pickup margins both equal full capacity.
func TestEmptyRouteMarginsEqualCapacity(t *testing.T) {
	input := simpleInput(2, 1)
	input.Vehicles = []Vehicle{basicVehicle(1, 5, TimeWindow{0, 100})}
	rr := NewRawRoute(input, 0)

	capAmt := amt(5)
	if !rr.DeliveryMargin().LessEq(capAmt) || !capAmt.LessEq(rr.DeliveryMargin()) {
		t.Fatalf("empty route delivery margin = %v, want %v", rr.DeliveryMargin(), capAmt)
	}
	if !rr.PickupMargin().LessEq(capAmt) || !capAmt.LessEq(rr.PickupMargin()) {
		t.Fatalf("empty route pickup margin = %v, want %v", rr.PickupMargin(), capAmt)
	}
}

// TestPinnedFirstRejectsWrongHeadThenAcceptsCorrectJob mirrors the
// pinned-first scenario: the vehicle's pinned-first job rank is 5.
// Inserting a different job at rank 0 must be rejected by the pinned
// boundary predicate; inserting the pinned job at rank 0 must be accepted.
func TestPinnedFirstRejectsWrongHeadThenAcceptsCorrectJob(t *testing.T) {
	v := basicVehicle(1, 100, TimeWindow{0, 1000})
	v.PinnedFirst = PinnedFirst{Active: true, JobRank: 5}

	// An empty route: inserting job rank 3 at head is rejected, job rank 5
	// at head is accepted.
	ok := pinnedBoundaryOK(v, nil, 0, 0, []int{3})
	if ok {
		t.Fatalf("inserting non-pinned job at pinned-first head should be rejected")
	}
	ok = pinnedBoundaryOK(v, nil, 0, 0, []int{5})
	if !ok {
		t.Fatalf("inserting the pinned-first job at head should be accepted")
	}
}

// TestPinnedFirstPairProtectsBothRanks checks the paired pinned-first case:
// neither rank 0 nor rank 1 may be dislodged, and an insertion strictly
// after the pair is unaffected.
func TestPinnedFirstPairProtectsBothRanks(t *testing.T) {
	v := basicVehicle(1, 100, TimeWindow{0, 1000})
	v.PinnedFirst = PinnedFirst{Active: true, Pair: true, PickupJobRank: 10, DeliveryJobRank: 11}

	route := []int{10, 11, 20}

	if pinnedBoundaryOK(v, route, 1, 1, []int{99}) {
		t.Fatalf("inserting between the pinned pickup/delivery pair must be rejected")
	}
	if !pinnedBoundaryOK(v, route, 2, 2, []int{30}) {
		t.Fatalf("inserting after the pinned pair should be accepted")
	}
	if pinnedBoundaryOK(v, route, 0, 1, []int{99}) {
		t.Fatalf("replacing the pinned pickup half should be rejected")
	}
}

// TestExclusiveTagLimitEnforced checks that inserting a second job sharing
// an exclusive tag beyond the default limit of 1 is rejected.
func TestExclusiveTagLimitEnforced(t *testing.T) {
	input := simpleInput(3, 1)
	input.Vehicles = []Vehicle{basicVehicle(1, 100, TimeWindow{0, 1000})}
	j1 := singleJob(1, 1, 1, 0, TimeWindow{0, 1000})
	j1.ExclusiveTags = []string{"dock-a"}
	j1.DeliveryAmount = amt(0)
	j2 := singleJob(2, 2, 1, 0, TimeWindow{0, 1000})
	j2.ExclusiveTags = []string{"dock-a"}
	j2.DeliveryAmount = amt(0)
	input.Jobs = []Job{j1, j2}

	rr := NewRawRoute(input, 0)
	rr.Add(0, 0)

	if rr.checkExclusiveTags([]int{1}, 1, 1) {
		t.Fatalf("a second job sharing a default-limit-1 exclusive tag should be rejected")
	}
}

// TestRemoveRestoresOriginalLoads checks that Add followed by Remove returns
// the route's load arrays to their pre-insertion state.
func TestRemoveRestoresOriginalLoads(t *testing.T) {
	input := simpleInput(3, 1)
	input.Vehicles = []Vehicle{basicVehicle(1, 10, TimeWindow{0, 100})}
	input.Jobs = []Job{
		singleJob(1, 1, 4, 0, TimeWindow{0, 100}),
	}
	input.Jobs[0].DeliveryAmount = amt(0)

	rr := NewRawRoute(input, 0)
	before := rr.CurrentLoads()[0].Clone()

	rr.Add(0, 0)
	rr.Remove(0, 1)

	after := rr.CurrentLoads()[0]
	if !before.LessEq(after) || !after.LessEq(before) {
		t.Fatalf("Remove after Add left current_loads[0] = %v, want %v", after, before)
	}
	if rr.Size() != 0 {
		t.Fatalf("route size after Add+Remove = %d, want 0", rr.Size())
	}
}
