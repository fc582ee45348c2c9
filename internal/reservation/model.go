package reservation

import (
	"net/http"
	"time"

	"github.com/calmadrigal/space-reservation-backend/internal/pkg/apperror"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "reservation not found")
	ErrInvalidTitle      = apperror.New(http.StatusUnprocessableEntity, "title is required")
	ErrInvalidRange      = apperror.New(http.StatusUnprocessableEntity, "start_at must be before end_at")
	ErrTooShort          = apperror.New(http.StatusUnprocessableEntity, "reservation is shorter than the minimum duration")
	ErrTooLong           = apperror.New(http.StatusUnprocessableEntity, "reservation exceeds the maximum duration")
	ErrOverlapConflict   = apperror.New(http.StatusConflict, "an active reservation already occupies that time range")
	ErrForbidden         = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "reservation status does not allow this transition")
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the statuses that occupy a space's time range and
// therefore participate in conflict detection.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the reservation occupies its time range.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// UserSnapshot is the denormalized user identity embedded into a
// reservation at write time. Like the space snapshot, it is never
// refreshed after capture.
type UserSnapshot struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}

// Reservation is a time-bounded booking of a space.
// Space and user data are stored denormalized so the record stays
// complete even when spaces and users live in separate services.
type Reservation struct {
	ID int64

	Space     space.Snapshot
	CreatedBy UserSnapshot

	Title       string
	Description string

	// Half-open interval [StartAt, EndAt), always UTC.
	StartAt time.Time
	EndAt   time.Time

	Status Status

	// Decision metadata, set by approve/reject and cleared on cancel.
	ApprovedBy   *UserSnapshot
	DecisionAt   *time.Time
	DecisionNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Block is a busy interval of a space, used by availability checks.
type Block struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// Filter defines parameters for listing reservations.
type Filter struct {
	SpaceID     int64
	CreatedByID int64
	Statuses    []Status

	// Start/End restrict the listing to reservations overlapping the
	// half-open window [Start, End).
	Start *time.Time
	End   *time.Time

	// OrderAscending orders by start_at ascending instead of the default
	// newest-first ordering.
	OrderAscending bool
}
