package tapecmp

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance bounds the accepted drift between a reference and a trial value.
// The zero value requires exact equality.
type Tolerance struct {
	Relative float64
	Absolute float64
}

// DefaultTolerance is the conventional tolerance of the predicate. It is never
// applied implicitly.
var DefaultTolerance = Tolerance{Relative: 1e-6, Absolute: 1e-8}

var errBadTolerance = errors.New("tolerance must be finite and non-negative")

func (tol Tolerance) Validate() error {
	if !validErr(tol.Relative) {
		return fmt.Errorf("relative error %g: %w", tol.Relative, errBadTolerance)
	}
	if !validErr(tol.Absolute) {
		return fmt.Errorf("absolute error %g: %w", tol.Absolute, errBadTolerance)
	}
	return nil
}

func validErr(e float64) bool {
	return e >= 0 && !math.IsInf(e, 0)
}

// Equal reports whether |a-b| <= max(|a|,|b|)*Relative + Absolute. An
// infinite value is only equal to the same infinity.
func (tol Tolerance) Equal(a, b float64) bool {
	if a == b {
		return true
	}
	// Only equal infinities match, an infinite delta would accept anything.
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	delta := math.Max(math.Abs(a), math.Abs(b))*tol.Relative + tol.Absolute
	return math.Abs(a-b) <= delta
}

func (tol Tolerance) String() string {
	return fmt.Sprintf("rel=%g abs=%g", tol.Relative, tol.Absolute)
}

// FuzzyEqual compares a and b with a combined relative and absolute error.
// Both errors must be given. The absolute error guards values near zero
// where the relative error alone is meaningless.
func FuzzyEqual(a, b, relativeError, absoluteError float64) bool {
	return Tolerance{Relative: relativeError, Absolute: absoluteError}.Equal(a, b)
}
