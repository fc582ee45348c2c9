package reservation

// Status transitions. PENDING is the initial state; REJECTED and
// CANCELLED are terminal and immutable. APPROVED can still be cancelled.
//
//	PENDING  -> APPROVED | REJECTED | CANCELLED
//	APPROVED -> CANCELLED
//
// An attempt outside this table fails with ErrInvalidTransition,
// including re-approving a rejected reservation and cancelling an
// already-cancelled one.

// CanApprove reports whether a reservation in status s may be approved.
func CanApprove(s Status) bool {
	return s == StatusPending
}

// CanReject reports whether a reservation in status s may be rejected.
func CanReject(s Status) bool {
	return s == StatusPending
}

// CanCancel reports whether a reservation in status s may be cancelled.
func CanCancel(s Status) bool {
	return s == StatusPending || s == StatusApproved
}

// CanEdit reports whether a reservation in status s accepts field edits.
// Terminal reservations are kept unchanged for audit history.
func CanEdit(s Status) bool {
	return s == StatusPending || s == StatusApproved
}
