package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swiftcheck/backend/internal/models"
)

type capturedPublish struct {
	event   string
	payload []byte
}

type fakePublisher struct {
	published []capturedPublish
}

func (f *fakePublisher) Publish(event string, payload []byte) error {
	f.published = append(f.published, capturedPublish{event: event, payload: payload})
	return nil
}

func newTestClient() *Client {
	return &Client{ID: uuid.New().String(), send: make(chan WSMessage, 16)}
}

func TestHub_RegisterDeliversCurrentSnapshot(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	att := models.Attendee{ID: uuid.New(), Name: "Jane Doe"}
	hub.SetSnapshotSource(func() []models.Attendee { return []models.Attendee{att} })

	c := newTestClient()
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	select {
	case msg := <-c.send:
		assert.Equal(t, EventSnapshot, msg.Event)
		var snapshot []models.Attendee
		require.NoError(t, json.Unmarshal(msg.Data, &snapshot))
		require.Len(t, snapshot, 1)
		assert.Equal(t, att.ID, snapshot[0].ID)
	default:
		t.Fatal("no snapshot delivered on connect")
	}
}

func TestHub_PublishSnapshotBroadcastsAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	hub := NewHub(zap.NewNop(), pub)

	c := newTestClient()
	hub.Register(c)

	att := models.Attendee{ID: uuid.New(), Name: "Jane Doe"}
	hub.PublishSnapshot([]models.Attendee{att})

	select {
	case msg := <-c.send:
		assert.Equal(t, EventSnapshot, msg.Event)
	default:
		t.Fatal("no broadcast to local client")
	}

	require.Len(t, pub.published, 1)
	assert.Equal(t, EventSnapshot, pub.published[0].event)
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	c := newTestClient()
	hub.Register(c)
	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	hub.Broadcast(EventSnapshot, []models.Attendee{})
	select {
	case <-c.send:
		t.Fatal("unregistered client must not receive broadcasts")
	default:
	}
}
