package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/calmadrigal/space-reservation-backend/internal/auth"
	"github.com/calmadrigal/space-reservation-backend/internal/space"
)

// Default query windows. Listing defaults to the next 30 days; "mine"
// widens to a year in both directions, and only filters at all when the
// caller supplied at least one bound.
const (
	defaultListWindow = 30 * 24 * time.Hour
	defaultMineWindow = 365 * 24 * time.Hour
)

type CreateRequest struct {
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time

	// SpaceID is optional; when nil the well-known default space is used.
	SpaceID *int64

	// Credential is the caller's raw Authorization header, forwarded to
	// the spaces service in the distributed deployment.
	Credential string
}

type UpdateRequest struct {
	Title       *string
	Description *string
	StartAt     *time.Time
	EndAt       *time.Time
}

// ListParams bound the role-scoped listing window.
type ListParams struct {
	Start   *time.Time
	End     *time.Time
	SpaceID int64
}

// Service orchestrates the reservation lifecycle: space resolution,
// temporal validation, conflict detection and the status state machine.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Reservation, error)
	GetByID(ctx context.Context, actor auth.Actor, id int64) (*Reservation, error)
	List(ctx context.Context, actor auth.Actor, p ListParams) ([]*Reservation, error)
	Mine(ctx context.Context, actor auth.Actor, start, end *time.Time) ([]*Reservation, error)
	Busy(ctx context.Context, spaceID int64, start, end time.Time) ([]Block, error)
	Update(ctx context.Context, actor auth.Actor, id int64, req UpdateRequest) (*Reservation, error)
	Cancel(ctx context.Context, actor auth.Actor, id int64) (*Reservation, error)
	Approve(ctx context.Context, actor auth.Actor, id int64, note string) (*Reservation, error)
	Reject(ctx context.Context, actor auth.Actor, id int64, note string) (*Reservation, error)
	Report(ctx context.Context, actor auth.Actor, p ReportParams) (*Report, error)
}

type service struct {
	repo     Repository
	resolver space.Resolver

	minDuration time.Duration
	maxDuration time.Duration

	now func() time.Time
}

// NewService creates a reservation Service with the configured duration bounds.
func NewService(repo Repository, resolver space.Resolver, minDuration, maxDuration time.Duration) Service {
	return &service{
		repo:        repo,
		resolver:    resolver,
		minDuration: minDuration,
		maxDuration: maxDuration,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Reservation, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalidTitle
	}

	// Resolve the space before anything else. The remote resolver may
	// block on the network and fail; since no transaction is open yet, a
	// failure here leaves no local state behind.
	var snap space.Snapshot
	var err error
	if req.SpaceID != nil {
		snap, err = s.resolver.Resolve(ctx, *req.SpaceID, req.Credential)
	} else {
		snap, err = s.resolver.ResolveDefault(ctx, req.Credential)
	}
	if err != nil {
		return nil, err
	}

	startAt := req.StartAt.UTC()
	endAt := req.EndAt.UTC()

	if err := ValidateRange(startAt, endAt, s.minDuration, s.maxDuration); err != nil {
		return nil, err
	}

	res := &Reservation{
		Space: snap,
		CreatedBy: UserSnapshot{
			ID:        actor.ID,
			Email:     actor.Email,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
		},
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartAt:     startAt,
		EndAt:       endAt,
		Status:      StatusPending,
	}

	// The repository runs the conflict check and the insert in one
	// transaction with row locks on the contended reservations.
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (s *service) GetByID(ctx context.Context, _ auth.Actor, id int64) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, actor auth.Actor, p ListParams) ([]*Reservation, error) {
	now := s.now()
	start := now
	end := now.Add(defaultListWindow)
	if p.Start != nil {
		start = p.Start.UTC()
	}
	if p.End != nil {
		end = p.End.UTC()
	}
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	filter := Filter{
		SpaceID: p.SpaceID,
		Start:   &start,
		End:     &end,
	}
	// Non-admin callers only see reservations that occupy the calendar.
	if !actor.IsAdmin() {
		filter.Statuses = ActiveStatuses
	}

	return s.repo.List(ctx, filter)
}

func (s *service) Mine(ctx context.Context, actor auth.Actor, start, end *time.Time) ([]*Reservation, error) {
	filter := Filter{CreatedByID: actor.ID}

	// The date filter only applies when the caller supplied a bound;
	// defaults then widen to a year each way instead of the 30-day
	// listing default.
	if start != nil || end != nil {
		now := s.now()
		from := now.Add(-defaultMineWindow)
		to := now.Add(defaultMineWindow)
		if start != nil {
			from = start.UTC()
		}
		if end != nil {
			to = end.UTC()
		}
		if !from.Before(to) {
			return nil, ErrInvalidRange
		}
		filter.Start = &from
		filter.End = &to
	}

	return s.repo.List(ctx, filter)
}

func (s *service) Busy(ctx context.Context, spaceID int64, start, end time.Time) ([]Block, error) {
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	return s.repo.BusyBlocks(ctx, spaceID, start, end)
}

func (s *service) Update(ctx context.Context, actor auth.Actor, id int64, req UpdateRequest) (*Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	// The edit check and the field mutation run inside the repository's
	// row-locked transaction, so a concurrent cancel cannot be overwritten
	// by a stale snapshot. The overlap re-check excludes the reservation
	// itself so an in-place edit never conflicts with its own row.
	return s.repo.Update(ctx, id, func(res *Reservation) (bool, error) {
		if !CanEdit(res.Status) {
			return false, ErrInvalidTransition
		}

		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return false, ErrInvalidTitle
			}
			res.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			res.Description = *req.Description
		}

		intervalChanged := false
		if req.StartAt != nil {
			res.StartAt = req.StartAt.UTC()
			intervalChanged = true
		}
		if req.EndAt != nil {
			res.EndAt = req.EndAt.UTC()
			intervalChanged = true
		}

		if intervalChanged {
			if err := ValidateRange(res.StartAt, res.EndAt, s.minDuration, s.maxDuration); err != nil {
				return false, err
			}
		}

		return intervalChanged, nil
	})
}

func (s *service) Cancel(ctx context.Context, actor auth.Actor, id int64) (*Reservation, error) {
	return s.repo.Update(ctx, id, func(res *Reservation) (bool, error) {
		if !actor.IsAdmin() && res.CreatedBy.ID != actor.ID {
			return false, ErrForbidden
		}
		if !CanCancel(res.Status) {
			return false, ErrInvalidTransition
		}

		now := s.now()
		res.Status = StatusCancelled
		res.ApprovedBy = nil
		res.DecisionAt = &now
		res.DecisionNote = ""
		return false, nil
	})
}

func (s *service) Approve(ctx context.Context, actor auth.Actor, id int64, note string) (*Reservation, error) {
	return s.decide(ctx, actor, id, StatusApproved, note)
}

func (s *service) Reject(ctx context.Context, actor auth.Actor, id int64, note string) (*Reservation, error) {
	return s.decide(ctx, actor, id, StatusRejected, note)
}

// decide applies an admin approval or rejection. The approver snapshot
// records who decided, for rejections as well as approvals. The status
// check runs on the row-locked current state, so of two concurrent
// decisions on the same reservation only the first can win; the second
// sees the committed terminal status and fails with ErrInvalidTransition.
func (s *service) decide(ctx context.Context, actor auth.Actor, id int64, target Status, note string) (*Reservation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	return s.repo.Update(ctx, id, func(res *Reservation) (bool, error) {
		switch target {
		case StatusApproved:
			if !CanApprove(res.Status) {
				return false, ErrInvalidTransition
			}
		case StatusRejected:
			if !CanReject(res.Status) {
				return false, ErrInvalidTransition
			}
		}

		now := s.now()
		res.Status = target
		res.ApprovedBy = &UserSnapshot{
			ID:        actor.ID,
			Email:     actor.Email,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
		}
		res.DecisionAt = &now
		res.DecisionNote = note
		return false, nil
	})
}

func (s *service) Report(ctx context.Context, actor auth.Actor, p ReportParams) (*Report, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if p.Start != nil && p.End != nil && !p.Start.Before(*p.End) {
		return nil, ErrInvalidRange
	}

	filter := Filter{
		SpaceID:        p.SpaceID,
		Statuses:       p.Statuses,
		Start:          p.Start,
		End:            p.End,
		OrderAscending: true,
	}

	reservations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return BuildReport(reservations, s.now(), p), nil
}
