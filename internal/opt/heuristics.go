package opt

import "gpsnav/internal/routing"

// TwoOptImprove runs up to `iterations` passes of 2-opt over a vehicle's
// job sequence, keeping a swap only when it shortens total distance and
// stopping early after a pass with no improvement. Swaps are judged on
// distance alone; callers re-validate TW/capacity feasibility themselves
// (this heuristic only reorders, it does not know about time windows or
// breaks).
func TwoOptImprove(input *routing.Input, vr int, order []int, iterations int) []int {
	if iterations <= 0 {
		iterations = 1
	}
	best := append([]int(nil), order...)
	bestDist := pathDistance(input, vr, best)
	n := len(order)
	for it := 0; it < iterations; it++ {
		improved := false
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				candidate := twoOptSwap(best, i, k)
				d := pathDistance(input, vr, candidate)
				if d < bestDist {
					best = candidate
					bestDist = d
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

func twoOptSwap(order []int, i, k int) []int {
	out := make([]int, len(order))
	copy(out, order[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = order[j]
		pos++
	}
	copy(out[pos:], order[k+1:])
	return out
}

func pathDistance(input *routing.Input, vr int, order []int) int64 {
	v := input.Vehicles[vr]
	var total int64
	prev := -1
	if v.HasStart {
		prev = v.StartLocationIndex
	}
	for _, jr := range order {
		loc := input.Jobs[jr].LocationIndex
		if prev >= 0 {
			total += input.Distance(v.Profile, prev, loc)
		}
		prev = loc
	}
	if v.HasEnd && prev >= 0 {
		total += input.Distance(v.Profile, prev, v.EndLocationIndex)
	}
	return total
}
