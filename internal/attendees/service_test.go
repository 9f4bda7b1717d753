package attendees

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcheck/backend/internal/models"
)

const testBaseURL = "https://event.example.com"

func newTestAttendee(store *MemoryStore) (*models.Attendee, error) {
	id := uuid.New()
	att := &models.Attendee{
		ID:          id,
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		QRCodeValue: testBaseURL + CheckInPath(id),
	}
	if err := store.Create(context.Background(), att); err != nil {
		return nil, err
	}
	return att, nil
}

func newTestService(t *testing.T, capacity int) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(capacity)
	view := NewView()
	svc := NewService(store, view, nil, nil, testBaseURL, capacity, nil)
	return svc, store
}

func TestRegister_NewAttendeeIsPending(t *testing.T) {
	svc, _ := newTestService(t, 50)

	att, err := svc.Register(context.Background(), RegisterInput{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)

	assert.False(t, att.CheckedIn)
	assert.Nil(t, att.CheckInTime)
	assert.Equal(t, testBaseURL+"/attendee/"+att.ID.String(), att.QRCodeValue)
	assert.False(t, att.CreatedAt.IsZero())
	assert.Equal(t, att.CreatedAt, att.UpdatedAt)
}

func TestRegister_QRCodePathRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, 50)

	att, err := svc.Register(context.Background(), RegisterInput{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)

	path := strings.TrimPrefix(att.QRCodeValue, testBaseURL)
	require.True(t, strings.HasPrefix(path, "/attendee/"))
	parsed, err := uuid.Parse(strings.TrimPrefix(path, "/attendee/"))
	require.NoError(t, err)
	assert.Equal(t, att.ID, parsed)

	// Lookup through the view returns the same record.
	got, err := svc.View().Lookup(parsed)
	require.NoError(t, err)
	assert.Equal(t, att.ID, got.ID)
}

func TestRegister_CapacityExceeded(t *testing.T) {
	svc, store := newTestService(t, 50)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := svc.Register(ctx, RegisterInput{Name: "Attendee", Email: "a@example.com"})
		require.NoError(t, err)
	}

	_, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@x.com"})
	require.ErrorIs(t, err, ErrCapacityExceeded)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestRegister_ConcurrentAtCapacityAdmitsExactlyOne(t *testing.T) {
	svc, store := newTestService(t, 50)
	ctx := context.Background()

	for i := 0; i < 49; i++ {
		_, err := svc.Register(ctx, RegisterInput{Name: "Attendee", Email: "a@example.com"})
		require.NoError(t, err)
	}

	// One slot left; concurrent registrations race for it. The store must
	// serialize the count check with the insert so exactly one wins and the
	// rest see ErrCapacityExceeded.
	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, RegisterInput{Name: "Racer", Email: "racer@example.com"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for err := range results {
		if err == nil {
			admitted++
		} else {
			assert.ErrorIs(t, err, ErrCapacityExceeded)
		}
	}
	assert.Equal(t, 1, admitted, "exactly one racing registration takes the last slot")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestRegister_DistinctAttendeesMayShareEmail(t *testing.T) {
	svc, _ := newTestService(t, 50)
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Name: "Jane Doe", Email: "shared@example.com"})
	require.NoError(t, err)
	b, err := svc.Register(ctx, RegisterInput{Name: "John Doe", Email: "shared@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCheckIn_TransitionsOnce(t *testing.T) {
	svc, _ := newTestService(t, 50)
	ctx := context.Background()

	att, err := svc.Register(ctx, RegisterInput{Name: "Jane Doe", Email: "jane@example.com"})
	require.NoError(t, err)

	first, err := svc.CheckIn(ctx, att.ID)
	require.NoError(t, err)
	assert.True(t, first.CheckedIn)
	require.NotNil(t, first.CheckInTime)

	second, err := svc.CheckIn(ctx, att.ID)
	require.NoError(t, err)
	assert.True(t, second.CheckedIn)
	require.NotNil(t, second.CheckInTime)
	assert.True(t, first.CheckInTime.Equal(*second.CheckInTime), "repeated check-in must not overwrite check_in_time")
}

func TestCheckIn_NotFound(t *testing.T) {
	svc, _ := newTestService(t, 50)

	_, err := svc.CheckIn(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckIn_ConcurrentCallsSingleTransition(t *testing.T) {
	store := NewMemoryStore(50)
	ctx := context.Background()

	att, err := newTestAttendee(store)
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	transitions := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, transitioned, err := store.CheckIn(ctx, att.ID)
			assert.NoError(t, err)
			assert.True(t, got.CheckedIn)
			transitions <- transitioned
		}()
	}
	wg.Wait()
	close(transitions)

	performed := 0
	for transitioned := range transitions {
		if transitioned {
			performed++
		}
	}
	assert.Equal(t, 1, performed, "exactly one caller performs the timestamp-setting write")

	stored, err := store.Get(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckInTime)
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t, 50)
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, a.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, CheckedIn: 1, Capacity: 50, Remaining: 48}, stats)
}

func TestList_NewestFirst(t *testing.T) {
	svc, store := newTestService(t, 50)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Register(ctx, RegisterInput{Name: "Attendee", Email: "a@example.com"})
		require.NoError(t, err)
	}
	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i-1].CreatedAt.Before(list[i].CreatedAt), "list must be ordered by creation time descending")
	}
}
