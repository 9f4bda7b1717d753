// Package confirmation produces the personalized check-in confirmation
// message shown to event staff. The generation call is fire-and-forget
// relative to the check-in transition: it runs in the background worker and
// its failure never blocks or rolls back a check-in.
package confirmation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds the generative-text endpoint settings.
type Config struct {
	Endpoint string // completion endpoint URL; empty disables generation (fallback only)
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Generator calls a generative-text endpoint to produce a short welcome
// message. Generate always returns a usable string: any transport failure,
// non-200 status, or empty completion yields the fixed fallback template.
type Generator struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewGenerator creates a confirmation message generator.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fallback is the fixed message used when generation fails or returns empty.
func Fallback(attendeeName, eventName string) string {
	return fmt.Sprintf("Welcome, %s! Enjoy %s!", attendeeName, eventName)
}

type completionRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Message string `json:"message"`
}

// Generate produces the confirmation message for a just-checked-in attendee.
// timeSinceLastVisit is an optional free-text recency hint ("first visit",
// "last year"); empty means unknown.
func (g *Generator) Generate(ctx context.Context, attendeeName, eventName, timeSinceLastVisit string) string {
	if g.cfg.Endpoint == "" {
		return Fallback(attendeeName, eventName)
	}

	body, err := json.Marshal(completionRequest{
		Model:  g.cfg.Model,
		Prompt: buildPrompt(attendeeName, eventName, timeSinceLastVisit),
	})
	if err != nil {
		return Fallback(attendeeName, eventName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Fallback(attendeeName, eventName)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("confirmation generation failed", zap.Error(err))
		return Fallback(attendeeName, eventName)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("confirmation generation non-200", zap.Int("status", resp.StatusCode))
		return Fallback(attendeeName, eventName)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		g.logger.Warn("confirmation response decode failed", zap.Error(err))
		return Fallback(attendeeName, eventName)
	}
	msg := strings.TrimSpace(out.Message)
	if msg == "" {
		return Fallback(attendeeName, eventName)
	}
	return msg
}

func buildPrompt(attendeeName, eventName, timeSinceLastVisit string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly event assistant for %s.\n", eventName)
	fmt.Fprintf(&b, "An attendee named %s has just checked in.\n", attendeeName)
	if timeSinceLastVisit != "" {
		fmt.Fprintf(&b, "Their last visit was %s.\n", timeSinceLastVisit)
	} else {
		b.WriteString("This is their first time checking in, or we don't have their previous visit information.\n")
	}
	fmt.Fprintf(&b, "Generate a short, welcoming, and slightly personalized confirmation message for the event staff to see or say to %s. ", attendeeName)
	b.WriteString("Make it enthusiastic and appropriate for the event.")
	return b.String()
}
