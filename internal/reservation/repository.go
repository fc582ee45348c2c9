package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines methods for accessing reservation data from storage.
//
// Create and Update are atomic with respect to concurrent mutations on
// the same space: the conflict check and the write happen inside one
// transaction that locks the candidate active rows, so two concurrent
// creates for overlapping intervals can never both succeed.
type Repository interface {
	// Create inserts the reservation after verifying no active reservation
	// overlaps its interval. Fails with ErrOverlapConflict otherwise.
	Create(ctx context.Context, r *Reservation) error

	GetByID(ctx context.Context, id int64) (*Reservation, error)

	// Update re-reads the reservation inside a transaction with its row
	// locked, applies fn to it and persists the result. fn reports whether
	// the interval changed, in which case the overlap check runs again in
	// the same transaction, excluding the reservation itself. Because the
	// row lock is held across fn, a status check made there can never act
	// on state that a concurrent mutation is about to overwrite.
	Update(ctx context.Context, id int64, fn func(*Reservation) (recheckConflict bool, err error)) (*Reservation, error)

	List(ctx context.Context, filter Filter) ([]*Reservation, error)

	// BusyBlocks returns the intervals of active reservations overlapping
	// [start, end) for a space, ordered by start.
	BusyBlocks(ctx context.Context, spaceID int64, start, end time.Time) ([]Block, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const reservationColumns = `
	id,
	space_id, space_name, space_location, space_description,
	created_by_id, created_by_email, created_by_first_name, created_by_last_name,
	title, description,
	start_at, end_at, status,
	approved_by_id, approved_by_email, approved_by_first_name, approved_by_last_name,
	decision_at, decision_note,
	created_at, updated_at
`

// lockActiveOverlaps takes row-level locks on every active reservation of
// the space that overlaps [start, end), then reports whether any exists.
// Locking before deciding serializes concurrent conflict checks per space.
func lockActiveOverlaps(ctx context.Context, tx pgx.Tx, spaceID int64, start, end time.Time, excludeID int64) error {
	const query = `
		SELECT id
		FROM public.reservations
		WHERE space_id = $1
		  AND status IN ('PENDING', 'APPROVED')
		  AND start_at < $3
		  AND end_at > $2
		  AND id <> $4
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, spaceID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("lock overlapping reservations failed: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return ErrOverlapConflict
	}
	return rows.Err()
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create reservation failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := lockActiveOverlaps(ctx, tx, res.Space.ID, res.StartAt, res.EndAt, 0); err != nil {
		return err
	}

	const query = `
		INSERT INTO public.reservations (
			space_id, space_name, space_location, space_description,
			created_by_id, created_by_email, created_by_first_name, created_by_last_name,
			title, description, start_at, end_at, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		query,
		res.Space.ID, res.Space.Name, res.Space.Location, res.Space.Description,
		res.CreatedBy.ID, res.CreatedBy.Email, res.CreatedBy.FirstName, res.CreatedBy.LastName,
		res.Title, res.Description, res.StartAt, res.EndAt, string(res.Status),
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return mapWriteError(err, "create reservation")
	}

	return tx.Commit(ctx)
}

func (r *pgxRepository) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	query := `SELECT` + reservationColumns + `FROM public.reservations WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) Update(ctx context.Context, id int64, fn func(*Reservation) (bool, error)) (*Reservation, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update reservation failed: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the reservation's own row before anything looks at its status.
	selectQuery := `SELECT` + reservationColumns + `FROM public.reservations WHERE id = $1 FOR UPDATE`
	res, err := scanReservation(tx.QueryRow(ctx, selectQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock reservation failed: %w", err)
	}

	recheckConflict, err := fn(res)
	if err != nil {
		return nil, err
	}

	if recheckConflict {
		if err := lockActiveOverlaps(ctx, tx, res.Space.ID, res.StartAt, res.EndAt, res.ID); err != nil {
			return nil, err
		}
	}

	const query = `
		UPDATE public.reservations
		SET title = $1,
		    description = $2,
		    start_at = $3,
		    end_at = $4,
		    status = $5,
		    approved_by_id = $6,
		    approved_by_email = $7,
		    approved_by_first_name = $8,
		    approved_by_last_name = $9,
		    decision_at = $10,
		    decision_note = $11,
		    updated_at = now()
		WHERE id = $12
		RETURNING updated_at
	`

	var approvedByID *int64
	approvedByEmail, approvedByFirst, approvedByLast := "", "", ""
	if res.ApprovedBy != nil {
		approvedByID = &res.ApprovedBy.ID
		approvedByEmail = res.ApprovedBy.Email
		approvedByFirst = res.ApprovedBy.FirstName
		approvedByLast = res.ApprovedBy.LastName
	}

	if err := tx.QueryRow(
		ctx,
		query,
		res.Title, res.Description, res.StartAt, res.EndAt, string(res.Status),
		approvedByID, approvedByEmail, approvedByFirst, approvedByLast,
		res.DecisionAt, res.DecisionNote,
		res.ID,
	).Scan(&res.UpdatedAt); err != nil {
		return nil, mapWriteError(err, "update reservation")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update reservation failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id",
		"space_id", "space_name", "space_location", "space_description",
		"created_by_id", "created_by_email", "created_by_first_name", "created_by_last_name",
		"title", "description",
		"start_at", "end_at", "status",
		"approved_by_id", "approved_by_email", "approved_by_first_name", "approved_by_last_name",
		"decision_at", "decision_note",
		"created_at", "updated_at",
	).From("public.reservations")

	if filter.SpaceID != 0 {
		query = query.Where(squirrel.Eq{"space_id": filter.SpaceID})
	}
	if filter.CreatedByID != 0 {
		query = query.Where(squirrel.Eq{"created_by_id": filter.CreatedByID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where(squirrel.Eq{"status": statuses})
	}
	// Window filtering uses the same half-open overlap predicate as the
	// conflict detector.
	if filter.End != nil {
		query = query.Where(squirrel.Lt{"start_at": filter.End})
	}
	if filter.Start != nil {
		query = query.Where(squirrel.Gt{"end_at": filter.Start})
	}

	if filter.OrderAscending {
		query = query.OrderBy("start_at ASC")
	} else {
		query = query.OrderBy("start_at DESC")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation failed: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

func (r *pgxRepository) BusyBlocks(ctx context.Context, spaceID int64, start, end time.Time) ([]Block, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select("start_at", "end_at").
		From("public.reservations").
		Where(squirrel.Eq{"space_id": spaceID}).
		Where(squirrel.Eq{"status": []string{string(StatusPending), string(StatusApproved)}}).
		Where(squirrel.Lt{"start_at": end}).
		Where(squirrel.Gt{"end_at": start}).
		OrderBy("start_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build busy blocks query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("busy blocks failed: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		if err := rows.Scan(&b.StartAt, &b.EndAt); err != nil {
			return nil, fmt.Errorf("scan busy block failed: %w", err)
		}
		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}

// mapWriteError re-surfaces database constraint violations as domain
// errors. The exclusion constraint on (space_id, tstzrange) backstops
// the application-level lock against any race that slips past it.
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
		return ErrOverlapConflict
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	var status string
	var approvedByID *int64
	var approvedByEmail, approvedByFirst, approvedByLast string

	if err := row.Scan(
		&res.ID,
		&res.Space.ID, &res.Space.Name, &res.Space.Location, &res.Space.Description,
		&res.CreatedBy.ID, &res.CreatedBy.Email, &res.CreatedBy.FirstName, &res.CreatedBy.LastName,
		&res.Title, &res.Description,
		&res.StartAt, &res.EndAt, &status,
		&approvedByID, &approvedByEmail, &approvedByFirst, &approvedByLast,
		&res.DecisionAt, &res.DecisionNote,
		&res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}

	res.Status = Status(status)
	if approvedByID != nil {
		res.ApprovedBy = &UserSnapshot{
			ID:        *approvedByID,
			Email:     approvedByEmail,
			FirstName: approvedByFirst,
			LastName:  approvedByLast,
		}
	}

	return &res, nil
}
