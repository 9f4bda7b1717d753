package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftcheck/backend/internal/confirmation"
	"github.com/swiftcheck/backend/internal/realtime"
	"github.com/swiftcheck/backend/pkg/queue"
)

// ConfirmationEvent is the realtime payload delivered to dashboards once a
// confirmation message has been generated.
type ConfirmationEvent struct {
	AttendeeID uuid.UUID `json:"attendee_id"`
	Message    string    `json:"message"`
}

// ConfirmationProcessor consumes check-in confirmation jobs: generate the
// welcome message and publish it to connected dashboards. It runs outside the
// check-in request path; a failed or slow generation never affects the
// check-in itself.
type ConfirmationProcessor struct {
	generator *confirmation.Generator
	publisher realtime.Publisher
	queue     *queue.Queue
	eventName string
	logger    *zap.Logger
}

// NewConfirmationProcessor creates a confirmation job processor.
func NewConfirmationProcessor(gen *confirmation.Generator, pub realtime.Publisher, q *queue.Queue, eventName string, logger *zap.Logger) *ConfirmationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationProcessor{generator: gen, publisher: pub, queue: q, eventName: eventName, logger: logger}
}

// Process executes one confirmation job.
func (p *ConfirmationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeConfirmation {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ConfirmationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	// Generate never fails outright; the fallback template covers endpoint
	// errors and empty completions.
	msg := p.generator.Generate(ctx, payload.AttendeeName, p.eventName, "")

	event, err := json.Marshal(ConfirmationEvent{AttendeeID: payload.AttendeeID, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.publisher.Publish(realtime.EventConfirmation, event); err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	p.logger.Info("confirmation delivered", zap.String("attendee_id", payload.AttendeeID.String()))
	return nil
}

// Run consumes jobs until ctx is cancelled.
func (p *ConfirmationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("process job failed", zap.Error(err), zap.String("job_id", job.ID))
			_ = p.queue.Retry(ctx, job)
		}
	}
}
