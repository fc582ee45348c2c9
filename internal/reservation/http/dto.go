package http

import (
	"time"

	"github.com/calmadrigal/space-reservation-backend/internal/reservation"
)

// SpaceTag is the space snapshot as exposed by the API.
type SpaceTag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// UserTag is the user snapshot as exposed by the API.
type UserTag struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ReservationResponse is the full reservation representation, shown to
// admins and to owners of the reservation.
type ReservationResponse struct {
	ID           int64      `json:"id"`
	Space        SpaceTag   `json:"space"`
	CreatedBy    UserTag    `json:"created_by"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        time.Time  `json:"end_at"`
	Status       string     `json:"status"`
	ApprovedBy   *UserTag   `json:"approved_by"`
	DecisionAt   *time.Time `json:"decision_at"`
	DecisionNote string     `json:"decision_note"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicReservationResponse is the reduced shape served to non-admin
// listings: enough to see that a slot is taken, without the creator's
// identity or the reservation's private details.
type PublicReservationResponse struct {
	ID      int64     `json:"id"`
	Space   SpaceTag  `json:"space"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Status  string    `json:"status"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID: r.ID,
		Space: SpaceTag{
			ID:          r.Space.ID,
			Name:        r.Space.Name,
			Location:    r.Space.Location,
			Description: r.Space.Description,
		},
		CreatedBy: UserTag{
			ID:        r.CreatedBy.ID,
			Email:     r.CreatedBy.Email,
			FirstName: r.CreatedBy.FirstName,
			LastName:  r.CreatedBy.LastName,
		},
		Title:        r.Title,
		Description:  r.Description,
		StartAt:      r.StartAt,
		EndAt:        r.EndAt,
		Status:       string(r.Status),
		DecisionAt:   r.DecisionAt,
		DecisionNote: r.DecisionNote,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ApprovedBy != nil {
		resp.ApprovedBy = &UserTag{
			ID:        r.ApprovedBy.ID,
			Email:     r.ApprovedBy.Email,
			FirstName: r.ApprovedBy.FirstName,
			LastName:  r.ApprovedBy.LastName,
		}
	}
	return resp
}

func NewPublicReservationResponse(r *reservation.Reservation) PublicReservationResponse {
	return PublicReservationResponse{
		ID: r.ID,
		Space: SpaceTag{
			ID:          r.Space.ID,
			Name:        r.Space.Name,
			Location:    r.Space.Location,
			Description: r.Space.Description,
		},
		StartAt: r.StartAt,
		EndAt:   r.EndAt,
		Status:  string(r.Status),
	}
}

// CreateReservationRequest defines the payload for creating a reservation.
type CreateReservationRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required"`
	SpaceID     *int64    `json:"space_id" binding:"omitempty,min=1"`
}

// UpdateReservationRequest defines the payload for editing a reservation.
type UpdateReservationRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

// DecisionRequest carries the optional note attached to an approval or rejection.
type DecisionRequest struct {
	Note string `json:"note" binding:"omitempty,max=2000"`
}

// BusyRequest defines query parameters for the busy-blocks endpoint.
type BusyRequest struct {
	SpaceID int64      `form:"space_id" binding:"required,min=1"`
	Start   *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End     *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
}

// BusyResponse lists the occupied intervals of a space within a range.
type BusyResponse struct {
	SpaceID int64               `json:"space_id"`
	Start   time.Time           `json:"start"`
	End     time.Time           `json:"end"`
	Blocks  []reservation.Block `json:"blocks"`
}
