package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelAttendees = "attendees:events"
	publishTimeout   = 5 * time.Second
)

// redisPayload is the message published to Redis for cross-instance fan-out.
// Origin identifies the publishing instance so subscribers can skip events
// they already delivered locally.
type redisPayload struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	Origin string          `json:"origin"`
	At     int64           `json:"at"`
}

// RedisPubSub bridges attendee events across instances via Redis pub/sub.
type RedisPubSub struct {
	client   *redis.Client
	instance string
	logger   *zap.Logger
}

// NewRedisPubSub creates a Redis pub/sub bridge with a unique instance id.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, instance: uuid.New().String(), logger: logger}
}

// Publish publishes an event to the shared attendees channel.
func (r *RedisPubSub) Publish(event string, payload []byte) error {
	body, err := json.Marshal(redisPayload{Event: event, Data: payload, Origin: r.instance, At: time.Now().Unix()})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.client.Publish(ctx, channelAttendees, body).Err()
}

// Subscribe listens on the shared channel and calls handler for every event
// published by ANOTHER instance (events from this instance were already
// applied and broadcast locally). Returns a cancel function that releases the
// server-side subscription.
func (r *RedisPubSub) Subscribe(handler func(event string, payload []byte)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, channelAttendees)
	if _, err = pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()

	go func() {
		for msg := range ch {
			var p redisPayload
			if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
				r.logger.Warn("invalid pubsub payload", zap.Error(err))
				continue
			}
			if p.Origin == r.instance {
				continue
			}
			handler(p.Event, p.Data)
		}
	}()

	return func() {
		cancelCtx()
		_ = pubsub.Close()
	}, nil
}
