package routing

import (
	"errors"
	"fmt"
)

// ErrOverflow is raised by the user-unit boundary helper when a cost
// addition would overflow the user-visible cost type. Internal saturating
// arithmetic never raises; this only guards the conversion back out.
var ErrOverflow = errors.New("routing: cost addition overflows user-visible cost type")

// InconsistentBreaksError is raised only at TWRoute construction, when a
// vehicle's break definitions cannot be sequenced within its time window.
type InconsistentBreaksError struct {
	VehicleID int
}

func (e *InconsistentBreaksError) Error() string {
	return fmt.Sprintf("routing: inconsistent breaks for vehicle %d", e.VehicleID)
}

// AddWithoutOverflow adds two user-visible costs, returning ErrOverflow
// instead of wrapping on overflow. This is the only arithmetic boundary
// helper that raises; everything inside the core saturates silently.
func AddWithoutOverflow(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}
	return sum, nil
}
