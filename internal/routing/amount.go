// Package routing implements the per-vehicle route state and insertion
// feasibility core of the routing engine: load profiles, timed routes,
// break placement and the post-solve budget repair pass.
package routing

// Amount is a fixed-dimension non-negative vector used for pickup/delivery
// loads and vehicle capacities. All arithmetic is componentwise; Sub
// assumes componentwise dominance (b <= a) as its precondition and is a
// programming error to call otherwise, exactly like the mutators that use
// it.
type Amount []int64

// NewAmount returns a zero amount of the given dimension.
func NewAmount(dim int) Amount {
	return make(Amount, dim)
}

// Clone returns an independent copy.
func (a Amount) Clone() Amount {
	out := make(Amount, len(a))
	copy(out, a)
	return out
}

// LessEq reports whether a <= b componentwise.
func (a Amount) LessEq(b Amount) bool {
	for i := range a {
		if a[i] > b[i] {
			return false
		}
	}
	return true
}

// Add returns a+b componentwise.
func (a Amount) Add(b Amount) Amount {
	out := make(Amount, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns a-b componentwise. Precondition: b <= a.
func (a Amount) Sub(b Amount) Amount {
	out := make(Amount, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Max returns the componentwise max of a and b.
func (a Amount) Max(b Amount) Amount {
	out := make(Amount, len(a))
	for i := range a {
		if a[i] >= b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// Min returns the componentwise min of a and b.
func (a Amount) Min(b Amount) Amount {
	out := make(Amount, len(a))
	for i := range a {
		if a[i] <= b[i] {
			out[i] = a[i]
		} else {
			out[i] = b[i]
		}
	}
	return out
}

// IsZero reports whether every component is zero.
func (a Amount) IsZero() bool {
	for _, v := range a {
		if v != 0 {
			return false
		}
	}
	return true
}
