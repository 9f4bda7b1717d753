package attendees

import (
	"sync"

	"github.com/google/uuid"

	"github.com/swiftcheck/backend/internal/models"
)

// View is the real-time read model of the attendee collection: the latest
// full snapshot delivered by the store, ordered newest registration first.
// It is the single source of truth for "what did the store last say" — the
// immediate results returned by Register/CheckIn are advisory and superseded
// by the next snapshot applied here.
type View struct {
	mu        sync.RWMutex
	snapshot  []models.Attendee
	observers map[int]chan []models.Attendee
	nextID    int
}

// NewView creates an empty view. Callers seed it with an initial listing and
// then apply every subsequent snapshot.
func NewView() *View {
	return &View{observers: make(map[int]chan []models.Attendee)}
}

// Apply replaces the snapshot and delivers it to every observer. Observers
// that cannot keep up miss intermediate snapshots but always receive the
// latest one eventually (a later Apply supersedes anything skipped).
func (v *View) Apply(snapshot []models.Attendee) {
	// Delivery happens under the lock so a concurrent cancel cannot close a
	// channel mid-send; all sends are non-blocking.
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = snapshot
	for _, ch := range v.observers {
		select {
		case ch <- snapshot:
		default:
			// drain the stale snapshot, then push the fresh one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// Snapshot returns the latest delivered snapshot.
func (v *View) Snapshot() []models.Attendee {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

// Lookup projects a single attendee out of the latest snapshot. It never
// round-trips to the store, so a record created an instant ago may be
// ErrNotFound until the next snapshot arrives; callers tolerate that race.
func (v *View) Lookup(id uuid.UUID) (*models.Attendee, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for i := range v.snapshot {
		if v.snapshot[i].ID == id {
			att := v.snapshot[i]
			return &att, nil
		}
	}
	return nil, ErrNotFound
}

// Observe subscribes to snapshot updates. The returned cancel func must be
// called when the observer goes away; it removes the subscription and closes
// the channel.
func (v *View) Observe() (<-chan []models.Attendee, func()) {
	ch := make(chan []models.Attendee, 1)
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.observers[id] = ch
	v.mu.Unlock()

	cancel := func() {
		v.mu.Lock()
		if _, ok := v.observers[id]; ok {
			delete(v.observers, id)
			close(ch)
		}
		v.mu.Unlock()
	}
	return ch, cancel
}
