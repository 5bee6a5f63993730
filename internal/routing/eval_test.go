package routing

import (
	"math"
	"testing"
)

func TestSaturatingAddClamps(t *testing.T) {
	if got := SaturatingAdd(math.MaxInt64, 5); got != math.MaxInt64 {
		t.Fatalf("SaturatingAdd(MAX, +k) = %d, want MAX", got)
	}
	if got := SaturatingAdd(math.MinInt64, -5); got != math.MinInt64 {
		t.Fatalf("SaturatingAdd(MIN, -k) = %d, want MIN", got)
	}
	if got := SaturatingAdd(10, 20); got != 30 {
		t.Fatalf("SaturatingAdd(10,20) = %d, want 30", got)
	}
}

func TestSaturatingNegSwapsExtremes(t *testing.T) {
	if got := SaturatingNeg(math.MaxInt64); got != math.MinInt64 {
		t.Fatalf("neg(MAX) = %d, want MIN", got)
	}
	if got := SaturatingNeg(math.MinInt64); got != math.MaxInt64 {
		t.Fatalf("neg(MIN) = %d, want MAX", got)
	}
	if got := SaturatingNeg(SaturatingNeg(7)); got != 7 {
		t.Fatalf("neg(neg(7)) = %d, want 7", got)
	}
}

func TestNoGainIsNegNoEval(t *testing.T) {
	if got := NoEval.Neg(); got != NoGain {
		t.Fatalf("-NoEval = %+v, want NoGain %+v", got, NoGain)
	}
}

func TestEvalLessVsLessEqAsymmetry(t *testing.T) {
	a := Eval{Cost: 5, Duration: 10, Distance: 0}
	b := Eval{Cost: 5, Duration: 2, Distance: 100}

	if a.Less(b) {
		t.Fatalf("a.Less(b) should be false: duration 10 > 2 at equal cost")
	}
	if !a.LessEq(b) {
		t.Fatalf("a.LessEq(b) should be true: cost-only comparison, equal cost")
	}
	// a.LessEq(b) holds but neither a.Less(b) nor a == b: the documented
	// asymmetry.
	if a.Less(b) || a == b {
		// expected: this branch is the "not implied" case, nothing to assert
		// beyond documenting it compiles and holds.
		_ = a
	}
}

func TestEvalAddSaturates(t *testing.T) {
	gain := NoGain.Add(Eval{Cost: -100})
	if gain != NoGain {
		t.Fatalf("NoGain + delta = %+v, want NoGain", gain)
	}
}
