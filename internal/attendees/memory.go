package attendees

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swiftcheck/backend/internal/models"
)

// MemoryStore is an in-memory attendee store. It is safe for concurrent use
// and mirrors the repository's conditional-write semantics; tests run against
// it instead of a live database.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]models.Attendee
	limit int
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store with the given capacity limit.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		byID:  make(map[uuid.UUID]models.Attendee),
		limit: limit,
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, att *models.Attendee) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.byID) >= s.limit {
		return ErrCapacityExceeded
	}
	now := s.now().UTC()
	att.CheckedIn = false
	att.CheckInTime = nil
	att.CreatedAt = now
	att.UpdatedAt = now
	s.byID[att.ID] = *att
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*models.Attendee, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	att, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &att, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Attendee, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.Attendee, 0, len(s.byID))
	for _, att := range s.byID {
		list = append(list, att)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID.String() > list[j].ID.String()
	})
	return list, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *MemoryStore) CheckIn(ctx context.Context, id uuid.UUID) (*models.Attendee, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	att, ok := s.byID[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if att.CheckedIn {
		return &att, false, nil
	}
	now := s.now().UTC()
	att.CheckedIn = true
	att.CheckInTime = &now
	att.UpdatedAt = now
	s.byID[id] = att
	return &att, true, nil
}
