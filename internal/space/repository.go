package space

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter defines parameters for listing spaces.
type Filter struct {
	// ActiveOnly limits the listing to active spaces.
	ActiveOnly bool
	Page       int
	PageSize   int
}

// Repository defines methods for accessing space data from storage.
type Repository interface {
	Create(ctx context.Context, s *Space) error
	GetByID(ctx context.Context, id int64) (*Space, error)
	List(ctx context.Context, filter Filter) ([]*Space, int, error)
	Update(ctx context.Context, s *Space) error
	Delete(ctx context.Context, id int64) error

	// GetOrCreateByName returns the space with the given name, inserting it
	// with the provided defaults when it does not exist yet.
	GetOrCreateByName(ctx context.Context, name, description string) (*Space, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, s *Space) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.spaces").
		Columns("name", "description", "location", "is_active").
		Values(s.Name, s.Description, s.Location, s.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create space query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("create space failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Space, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "description", "location", "is_active",
		"COALESCE(photo_path, '')", "created_at", "updated_at",
	).
		From("public.spaces").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get space query failed: %w", err)
	}

	var s Space
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.Name, &s.Description, &s.Location, &s.IsActive,
		&s.PhotoPath, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get space failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Space, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "description", "location", "is_active",
		"COALESCE(photo_path, '')", "created_at", "updated_at",
		"count(*) OVER() as total_count",
	).
		From("public.spaces").
		OrderBy("name ASC")

	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list spaces query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list spaces failed: %w", err)
	}
	defer rows.Close()

	var spaces []*Space
	var total int
	for rows.Next() {
		var s Space
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Location, &s.IsActive,
			&s.PhotoPath, &s.CreatedAt, &s.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan space failed: %w", err)
		}
		spaces = append(spaces, &s)
	}

	return spaces, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, s *Space) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.spaces").
		Set("name", s.Name).
		Set("description", s.Description).
		Set("location", s.Location).
		Set("is_active", s.IsActive).
		Set("photo_path", nullifyEmpty(s.PhotoPath)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update space query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrNameTaken
		}
		return fmt.Errorf("update space failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.spaces").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete space query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete space failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GetOrCreateByName(ctx context.Context, name, description string) (*Space, error) {
	// ON CONFLICT keeps concurrent first-reservation requests from racing
	// on the singleton insert.
	const query = `
		WITH ins AS (
			INSERT INTO public.spaces (name, description, location, is_active)
			VALUES ($1, $2, '', true)
			ON CONFLICT (name) DO NOTHING
			RETURNING id, name, description, location, is_active, COALESCE(photo_path, ''), created_at, updated_at
		)
		SELECT * FROM ins
		UNION ALL
		SELECT id, name, description, location, is_active, COALESCE(photo_path, ''), created_at, updated_at
		FROM public.spaces WHERE name = $1
		LIMIT 1
	`

	var s Space
	if err := r.pool.QueryRow(ctx, query, name, description).Scan(
		&s.ID, &s.Name, &s.Description, &s.Location, &s.IsActive,
		&s.PhotoPath, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("get or create space failed: %w", err)
	}
	return &s, nil
}

func nullifyEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
