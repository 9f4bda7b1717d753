package attendees

import (
	"context"

	"github.com/google/uuid"

	"github.com/swiftcheck/backend/internal/models"
)

// Store is the persistence contract for the attendee collection. All
// timestamps (created_at, updated_at, check_in_time) are assigned by the
// store's clock at commit time so every client agrees on one authoritative
// value.
type Store interface {
	// Create persists a new attendee iff the current count is below the
	// capacity limit; returns ErrCapacityExceeded otherwise without writing.
	// The caller supplies the id and qr_code_value; the store fills
	// CreatedAt and UpdatedAt on the passed record.
	Create(ctx context.Context, att *models.Attendee) error

	// Get returns the attendee by id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*models.Attendee, error)

	// List returns the full collection ordered by created_at descending.
	List(ctx context.Context) ([]models.Attendee, error)

	// Count returns the total number of attendees.
	Count(ctx context.Context) (int, error)

	// CheckIn conditionally marks the attendee checked in: the write applies
	// only where checked_in is still false. When the attendee is already
	// checked in, the stored record is returned unchanged and transitioned
	// is false (check_in_time is never overwritten). Returns ErrNotFound if
	// the id does not exist.
	CheckIn(ctx context.Context, id uuid.UUID) (att *models.Attendee, transitioned bool, err error)
}
