package space

import (
	"net/http"
	"time"

	"github.com/calmadrigal/space-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(http.StatusNotFound, "space not found")
	ErrInactive    = apperror.New(http.StatusUnprocessableEntity, "space is not active")
	ErrUnavailable = apperror.New(http.StatusServiceUnavailable, "spaces service unavailable")
	ErrEmptyName   = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrNameTaken   = apperror.New(http.StatusConflict, "a space with that name already exists")
)

// Space is a bookable room or area of the library.
type Space struct {
	ID          int64
	Name        string
	Description string
	Location    string
	IsActive    bool
	PhotoPath   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot is the denormalized space data embedded into a reservation at
// booking time. It is captured once and never refreshed, so it reflects
// the space as it was when the reservation was made.
type Snapshot struct {
	ID          int64
	Name        string
	Location    string
	Description string
}

// NewSnapshot captures the denormalized view of a space.
func NewSnapshot(s *Space) Snapshot {
	return Snapshot{
		ID:          s.ID,
		Name:        s.Name,
		Location:    s.Location,
		Description: s.Description,
	}
}
