package attendees

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcheck/backend/internal/models"
)

func TestView_LookupBeforeFirstSnapshot(t *testing.T) {
	view := NewView()
	_, err := view.Lookup(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestView_ApplyAndLookup(t *testing.T) {
	view := NewView()
	att := models.Attendee{ID: uuid.New(), Name: "Jane Doe", Email: "jane@example.com"}
	view.Apply([]models.Attendee{att})

	got, err := view.Lookup(att.ID)
	require.NoError(t, err)
	assert.Equal(t, att.ID, got.ID)

	// A record not in the latest snapshot is transiently not found.
	_, err = view.Lookup(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestView_ObserveDeliversSnapshots(t *testing.T) {
	view := NewView()
	ch, cancel := view.Observe()
	defer cancel()

	att := models.Attendee{ID: uuid.New(), Name: "Jane Doe", Email: "jane@example.com"}
	view.Apply([]models.Attendee{att})

	select {
	case snapshot := <-ch:
		require.Len(t, snapshot, 1)
		assert.Equal(t, att.ID, snapshot[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestView_ObserveLatestWins(t *testing.T) {
	view := NewView()
	ch, cancel := view.Observe()
	defer cancel()

	// A slow observer misses intermediate snapshots but gets the latest.
	first := models.Attendee{ID: uuid.New(), Name: "First", Email: "first@example.com"}
	second := models.Attendee{ID: uuid.New(), Name: "Second", Email: "second@example.com"}
	view.Apply([]models.Attendee{first})
	view.Apply([]models.Attendee{second, first})

	var last []models.Attendee
	for {
		select {
		case snapshot := <-ch:
			last = snapshot
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}
	require.Len(t, last, 2)
	assert.Equal(t, second.ID, last[0].ID)
}

func TestView_CancelClosesChannel(t *testing.T) {
	view := NewView()
	ch, cancel := view.Observe()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Apply after cancel must not panic or deliver.
	view.Apply([]models.Attendee{{ID: uuid.New()}})

	// Double cancel is safe.
	cancel()
}
