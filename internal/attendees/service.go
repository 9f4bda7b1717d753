package attendees

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftcheck/backend/internal/models"
)

// SnapshotPublisher fans a full-collection snapshot out to every connected
// dashboard, on this instance and (via Redis) on every other one.
type SnapshotPublisher interface {
	PublishSnapshot(snapshot []models.Attendee)
}

// ConfirmationEnqueuer hands a check-in confirmation job to the background
// worker. Enqueue failures never block or roll back a check-in.
type ConfirmationEnqueuer interface {
	EnqueueConfirmation(ctx context.Context, attendeeID uuid.UUID, attendeeName string) error
}

// RegisterInput is validated attendee registration data. Input validation
// (required name, well-formed email, age range, image policy) happens at the
// HTTP boundary before this service is called.
type RegisterInput struct {
	Name            string
	Email           string
	PhoneNumber     *string
	DateOfBirth     *time.Time
	ProfileImageURI *string
}

// Stats summarizes the collection for the dashboard header.
type Stats struct {
	Total     int `json:"total"`
	CheckedIn int `json:"checked_in"`
	Capacity  int `json:"capacity"`
	Remaining int `json:"remaining"`
}

// Service implements the registration and check-in workflows over a Store,
// keeping the View and connected clients up to date after every accepted
// write.
type Service struct {
	store     Store
	view      *View
	publisher SnapshotPublisher
	enqueuer  ConfirmationEnqueuer
	baseURL   string
	capacity  int
	logger    *zap.Logger
}

// NewService creates the attendee service. publisher and enqueuer may be nil
// (tests, single-instance setups without a worker).
func NewService(store Store, view *View, publisher SnapshotPublisher, enqueuer ConfirmationEnqueuer, baseURL string, capacity int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		view:      view,
		publisher: publisher,
		enqueuer:  enqueuer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		capacity:  capacity,
		logger:    logger,
	}
}

// CheckInPath returns the in-app route for an attendee; the QR payload is the
// base URL joined with this exact path, so decode and dispatch agree on shape.
func CheckInPath(id uuid.UUID) string {
	return "/attendee/" + id.String()
}

// Register creates a new attendee. The id is generated here, before the
// write, so the record and its id-derived QR code value land in a single
// atomic insert; there is no window where a record exists without its code.
// Returns ErrCapacityExceeded without writing once the collection is full.
//
// The returned record is advisory: the authoritative state, with the store's
// timestamps, arrives through the view on the next snapshot.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Attendee, error) {
	id := uuid.New()
	att := &models.Attendee{
		ID:              id,
		Name:            in.Name,
		Email:           in.Email,
		PhoneNumber:     in.PhoneNumber,
		DateOfBirth:     in.DateOfBirth,
		ProfileImageURI: in.ProfileImageURI,
		QRCodeValue:     s.baseURL + CheckInPath(id),
	}
	if err := s.store.Create(ctx, att); err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("persist attendee: %w", err)
	}
	s.publishSnapshot(ctx)
	return att, nil
}

// CheckIn transitions an attendee from pending to checked-in exactly once.
// A repeated call is a no-op success returning the stored record with its
// original check-in time. Under two concurrent calls the store's conditional
// write lets exactly one through; both callers see a checked-in attendee.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	att, transitioned, err := s.store.CheckIn(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("check in attendee: %w", err)
	}
	if transitioned {
		if s.enqueuer != nil {
			if err := s.enqueuer.EnqueueConfirmation(ctx, att.ID, att.Name); err != nil {
				s.logger.Warn("enqueue confirmation failed", zap.Error(err), zap.String("attendee_id", att.ID.String()))
			}
		}
		s.publishSnapshot(ctx)
	}
	return att, nil
}

// List returns the full collection, newest first.
func (s *Service) List(ctx context.Context) ([]models.Attendee, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return list, nil
}

// View returns the real-time read model backing lookups and the dashboard.
func (s *Service) View() *View {
	return s.view
}

// Stats returns collection totals for the dashboard header.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list attendees: %w", err)
	}
	checkedIn := 0
	for i := range list {
		if list[i].CheckedIn {
			checkedIn++
		}
	}
	remaining := s.capacity - len(list)
	if remaining < 0 {
		remaining = 0
	}
	return Stats{Total: len(list), CheckedIn: checkedIn, Capacity: s.capacity, Remaining: remaining}, nil
}

// RefreshView re-reads the collection into the view and broadcasts it. Called
// at startup to seed the view and after every accepted write.
func (s *Service) RefreshView(ctx context.Context) error {
	list, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list attendees: %w", err)
	}
	s.view.Apply(list)
	if s.publisher != nil {
		s.publisher.PublishSnapshot(list)
	}
	return nil
}

// publishSnapshot refreshes the view after a write. A refresh failure is
// logged, not surfaced: the write already committed and the next successful
// snapshot will carry it.
func (s *Service) publishSnapshot(ctx context.Context) {
	if err := s.RefreshView(ctx); err != nil {
		s.logger.Warn("snapshot refresh failed", zap.Error(err))
	}
}
