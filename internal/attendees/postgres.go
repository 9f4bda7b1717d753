package attendees

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swiftcheck/backend/internal/models"
)

// Repository is the PostgreSQL-backed attendee store.
type Repository struct {
	pool  *pgxpool.Pool
	limit int
}

// NewRepository creates an attendee repository with the given capacity limit.
func NewRepository(pool *pgxpool.Pool, limit int) *Repository {
	return &Repository{pool: pool, limit: limit}
}

const attendeeColumns = `id, name, email, phone_number, date_of_birth, profile_image_uri, checked_in, check_in_time, qr_code_value, created_at, updated_at`

// registrationLockID is the advisory lock key serializing capacity-checked
// inserts.
const registrationLockID = 4214001

// Create inserts the attendee only while the collection is below capacity.
// The count check and the insert run in one transaction under an advisory
// lock: under READ COMMITTED the COUNT(*) subquery cannot see rows from
// concurrent uncommitted transactions, so without the lock two inserts at
// limit-1 would both pass the check and overshoot the limit.
func (r *Repository) Create(ctx context.Context, att *models.Attendee) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockID); err != nil {
		return err
	}

	const q = `INSERT INTO attendees (id, name, email, phone_number, date_of_birth, profile_image_uri, qr_code_value)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE (SELECT COUNT(*) FROM attendees) < $8
		RETURNING checked_in, check_in_time, created_at, updated_at`
	err = tx.QueryRow(ctx, q,
		att.ID, att.Name, att.Email, att.PhoneNumber, att.DateOfBirth, att.ProfileImageURI, att.QRCodeValue, r.limit,
	).Scan(&att.CheckedIn, &att.CheckInTime, &att.CreatedAt, &att.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCapacityExceeded
	}
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Get returns an attendee by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	const q = `SELECT ` + attendeeColumns + ` FROM attendees WHERE id = $1`
	var att models.Attendee
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&att.ID, &att.Name, &att.Email, &att.PhoneNumber, &att.DateOfBirth, &att.ProfileImageURI,
		&att.CheckedIn, &att.CheckInTime, &att.QRCodeValue, &att.CreatedAt, &att.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// List returns all attendees, newest registration first.
func (r *Repository) List(ctx context.Context) ([]models.Attendee, error) {
	const q = `SELECT ` + attendeeColumns + ` FROM attendees ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Attendee
	for rows.Next() {
		var att models.Attendee
		if err := rows.Scan(
			&att.ID, &att.Name, &att.Email, &att.PhoneNumber, &att.DateOfBirth, &att.ProfileImageURI,
			&att.CheckedIn, &att.CheckInTime, &att.QRCodeValue, &att.CreatedAt, &att.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, att)
	}
	return list, rows.Err()
}

// Count returns the total number of attendees.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attendees`).Scan(&n)
	return n, err
}

// CheckIn sets checked_in, check_in_time and updated_at in one conditional
// write guarded on checked_in = FALSE. Two concurrent scans of the same code
// race on this condition; the database lets exactly one through and the other
// falls back to reading the already-checked-in row.
func (r *Repository) CheckIn(ctx context.Context, id uuid.UUID) (*models.Attendee, bool, error) {
	const q = `UPDATE attendees SET checked_in = TRUE, check_in_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND checked_in = FALSE
		RETURNING ` + attendeeColumns
	var att models.Attendee
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&att.ID, &att.Name, &att.Email, &att.PhoneNumber, &att.DateOfBirth, &att.ProfileImageURI,
		&att.CheckedIn, &att.CheckInTime, &att.QRCodeValue, &att.CreatedAt, &att.UpdatedAt,
	)
	if err == nil {
		return &att, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
