package reservation

import "time"

// ValidateRange checks a proposed interval for internal validity and
// duration bounds. It is pure and must run before every create and
// before every update that changes either timestamp.
func ValidateRange(start, end time.Time, min, max time.Duration) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}
	d := end.Sub(start)
	if d < min {
		return ErrTooShort
	}
	if d > max {
		return ErrTooLong
	}
	return nil
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2)
// intersect. Touching endpoints (e1 == s2) do not count as overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
