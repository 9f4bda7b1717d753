package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is one registered event attendee. CheckedIn flips to true exactly
// once via the check-in workflow and never reverts; CheckInTime is set in the
// same write and never overwritten.
type Attendee struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PhoneNumber     *string    `json:"phone_number,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	ProfileImageURI *string    `json:"profile_image_uri,omitempty"`
	CheckedIn       bool       `json:"checked_in"`
	CheckInTime     *time.Time `json:"check_in_time,omitempty"`
	QRCodeValue     string     `json:"qr_code_value"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
