package space

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name        string
	Description string
	Location    string
	IsActive    *bool
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Location    *string
	IsActive    *bool
}

// Service defines business logic for the locally stored spaces catalog.
// It also implements Resolver, making it the space source for the
// co-located deployment.
type Service interface {
	Resolver

	Create(ctx context.Context, req CreateRequest) (*Space, error)
	GetByID(ctx context.Context, id int64) (*Space, error)
	List(ctx context.Context, filter Filter) ([]*Space, int, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Space, error)
	Delete(ctx context.Context, id int64) error
	SetPhotoPath(ctx context.Context, id int64, path string) (*Space, error)
}

type service struct {
	repo Repository

	defaultName        string
	defaultDescription string
}

// NewService creates a local space Service. defaultName identifies the
// singleton space resolved when a reservation carries no space reference.
func NewService(repo Repository, defaultName string) Service {
	return &service{
		repo:               repo,
		defaultName:        defaultName,
		defaultDescription: "Default reservable space",
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Space, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	sp := &Space{
		Name:        name,
		Description: req.Description,
		Location:    req.Location,
		IsActive:    active,
	}

	if err := s.repo.Create(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Space, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Space, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Space, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		sp.Name = name
	}
	if req.Description != nil {
		sp.Description = *req.Description
	}
	if req.Location != nil {
		sp.Location = *req.Location
	}
	if req.IsActive != nil {
		sp.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) SetPhotoPath(ctx context.Context, id int64, path string) (*Space, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sp.PhotoPath = path
	if err := s.repo.Update(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// Resolve looks up a space in the shared database. Inactive spaces are
// not bookable in the co-located deployment.
func (s *service) Resolve(ctx context.Context, id int64, _ string) (Snapshot, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if !sp.IsActive {
		return Snapshot{}, ErrInactive
	}
	return NewSnapshot(sp), nil
}

// ResolveDefault returns the singleton default space, creating it on first use.
func (s *service) ResolveDefault(ctx context.Context, _ string) (Snapshot, error) {
	sp, err := s.repo.GetOrCreateByName(ctx, s.defaultName, s.defaultDescription)
	if err != nil {
		return Snapshot{}, err
	}
	if !sp.IsActive {
		return Snapshot{}, ErrInactive
	}
	return NewSnapshot(sp), nil
}
