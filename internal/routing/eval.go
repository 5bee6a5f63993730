package routing

import "math"

// Eval is the lexicographic (cost, duration, distance) triple used as the
// universal incremental metric. All three fields use saturating arithmetic
// so that sentinels (NoEval, NoGain) survive addition with ordinary deltas
// without overflow.
type Eval struct {
	Cost     int64
	Duration int64
	Distance int64
}

// NoEval represents an infeasible / unusable evaluation: the largest
// possible cost. It absorbs further addition (SaturatingAdd(MaxCost, k) ==
// MaxCost for k >= 0).
var NoEval = Eval{Cost: math.MaxInt64, Duration: 0, Distance: 0}

// NoGain represents the smallest possible gain, the additive inverse of
// NoEval: NoGain == Neg(NoEval).
var NoGain = Eval{Cost: math.MinInt64, Duration: 0, Distance: 0}

// SaturatingAdd adds two int64 values, clamping to math.MaxInt64 or
// math.MinInt64 on overflow instead of wrapping.
func SaturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	if b < 0 && a < math.MinInt64-b {
		return math.MinInt64
	}
	return a + b
}

// SaturatingNeg negates a, mapping MinInt64 to MaxInt64 and vice versa so
// that negation is always representable.
func SaturatingNeg(a int64) int64 {
	switch a {
	case math.MinInt64:
		return math.MaxInt64
	case math.MaxInt64:
		return math.MinInt64
	default:
		return -a
	}
}

// SaturatingSub computes a-b via SaturatingAdd(a, SaturatingNeg(b)).
func SaturatingSub(a, b int64) int64 {
	return SaturatingAdd(a, SaturatingNeg(b))
}

// Add returns the componentwise saturating sum of e and o.
func (e Eval) Add(o Eval) Eval {
	return Eval{
		Cost:     SaturatingAdd(e.Cost, o.Cost),
		Duration: SaturatingAdd(e.Duration, o.Duration),
		Distance: SaturatingAdd(e.Distance, o.Distance),
	}
}

// Sub returns the componentwise saturating difference e-o.
func (e Eval) Sub(o Eval) Eval {
	return e.Add(o.Neg())
}

// Neg returns the componentwise saturating negation of e.
func (e Eval) Neg() Eval {
	return Eval{
		Cost:     SaturatingNeg(e.Cost),
		Duration: SaturatingNeg(e.Duration),
		Distance: SaturatingNeg(e.Distance),
	}
}

// Less implements the lexicographic ordering on (cost, duration, distance).
// Note the deliberate asymmetry with LessEq: Less is NOT "LessEq and not
// equal" — see LessEq.
func (e Eval) Less(o Eval) bool {
	if e.Cost != o.Cost {
		return e.Cost < o.Cost
	}
	if e.Duration != o.Duration {
		return e.Duration < o.Duration
	}
	return e.Distance < o.Distance
}

// LessEq compares cost only. Callers that need the full lexicographic
// tie-break must use Less; LessEq exists because some call sites only care
// about cost dominance and must not be penalised by duration/distance
// noise. a.LessEq(b) does NOT imply a.Less(b) || a == b.
func (e Eval) LessEq(o Eval) bool {
	return e.Cost <= o.Cost
}

// Zero is the additive identity.
var Zero = Eval{}
