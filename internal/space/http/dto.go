package http

import (
	"time"

	"github.com/calmadrigal/space-reservation-backend/internal/pkg/request"
	"github.com/calmadrigal/space-reservation-backend/internal/reservation"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
)

// SpaceResponse is the shape of space data returned in API responses.
type SpaceResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"is_active"`
	HasPhoto    bool      `json:"has_photo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewSpaceResponse(s *space.Space) SpaceResponse {
	return SpaceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Location:    s.Location,
		IsActive:    s.IsActive,
		HasPhoto:    s.PhotoPath != "",
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ListSpacesRequest defines query parameters for listing spaces.
type ListSpacesRequest struct {
	request.ListParams
	ActiveOnly bool `form:"active_only"`
}

type CreateSpaceRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"omitempty,max=255"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateSpaceRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Location    *string `json:"location" binding:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
}

// AvailabilityResponse lists the busy blocks of a space within a range.
type AvailabilityResponse struct {
	Space  SpaceResponse       `json:"space"`
	Start  time.Time           `json:"start"`
	End    time.Time           `json:"end"`
	Blocks []reservation.Block `json:"blocks"`
}
