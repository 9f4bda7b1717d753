// Package scan validates decoded QR payloads and resolves them to the
// attendee check-in route. Camera capture and QR image decoding happen
// client-side; the server only ever sees the decoded string.
package scan

import (
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrDecodeRejected is returned when a scanned payload is not a recognizable
// check-in URL. The scanner surfaces "invalid code" and resumes after a short
// cool-down; there is no retry limit.
var ErrDecodeRejected = errors.New("not a valid check-in code")

const checkInPathPrefix = "/attendee/"

// ParseCheckInCode parses a decoded QR payload. Only an absolute URL whose
// path is exactly /attendee/{uuid} is accepted; anything else is rejected
// before any dispatch happens.
func ParseCheckInCode(raw string) (uuid.UUID, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return uuid.Nil, ErrDecodeRejected
	}
	if !strings.HasPrefix(u.Path, checkInPathPrefix) {
		return uuid.Nil, ErrDecodeRejected
	}
	rest := strings.TrimPrefix(u.Path, checkInPathPrefix)
	if rest == "" || strings.Contains(rest, "/") {
		return uuid.Nil, ErrDecodeRejected
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, ErrDecodeRejected
	}
	return id, nil
}
