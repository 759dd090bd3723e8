package entities

import (
	"time"

	pkgerrors "planner-backend/pkg/errors"
)

// User is the owner of entries. The core never inspects external
// credentials; it only needs the contact channels and the timezone that
// anchors the digest day window.
type User struct {
	id            string
	email         string
	name          string
	apiKeyHash    string
	smsContact    string // E.164 number texted on calendar events, empty disables SMS
	digestAddress string // email address for the daily digest, defaults to email
	timezone      string // IANA name, e.g. "America/Toronto"
	active        bool
	createdAt     time.Time
}

// NewUser creates a user record
func NewUser(id, email, name, apiKeyHash string) (*User, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("user id cannot be empty")
	}
	if email == "" {
		return nil, pkgerrors.NewValidationError("user email cannot be empty")
	}
	if apiKeyHash == "" {
		return nil, pkgerrors.NewValidationError("user api key hash cannot be empty")
	}
	return &User{
		id:            id,
		email:         email,
		name:          name,
		apiKeyHash:    apiKeyHash,
		digestAddress: email,
		timezone:      "UTC",
		active:        true,
		createdAt:     time.Now().UTC(),
	}, nil
}

// ReconstructUser rebuilds a user from repository data
func ReconstructUser(
	id, email, name, apiKeyHash, smsContact, digestAddress, timezone string,
	active bool,
	createdAt time.Time,
) *User {
	if digestAddress == "" {
		digestAddress = email
	}
	if timezone == "" {
		timezone = "UTC"
	}
	return &User{
		id:            id,
		email:         email,
		name:          name,
		apiKeyHash:    apiKeyHash,
		smsContact:    smsContact,
		digestAddress: digestAddress,
		timezone:      timezone,
		active:        active,
		createdAt:     createdAt,
	}
}

// ID returns the user's identifier
func (u *User) ID() string { return u.id }

// Email returns the user's email address
func (u *User) Email() string { return u.email }

// Name returns the user's display name
func (u *User) Name() string { return u.name }

// APIKeyHash returns the SHA-256 hash of the user's API key
func (u *User) APIKeyHash() string { return u.apiKeyHash }

// SMSContact returns the phone number notified on calendar events
func (u *User) SMSContact() string { return u.smsContact }

// DigestAddress returns where the daily digest is delivered
func (u *User) DigestAddress() string { return u.digestAddress }

// Timezone returns the user's IANA timezone name
func (u *User) Timezone() string { return u.timezone }

// IsActive reports whether the user may submit input
func (u *User) IsActive() bool { return u.active }

// CreatedAt returns the record creation timestamp
func (u *User) CreatedAt() time.Time { return u.createdAt }

// Location resolves the user's timezone, falling back to UTC when the
// stored name does not load
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetSMSContact updates the notification phone number
func (u *User) SetSMSContact(number string) {
	u.smsContact = number
}

// SetTimezone updates the user's timezone
func (u *User) SetTimezone(tz string) error {
	if _, err := time.LoadLocation(tz); err != nil {
		return pkgerrors.NewValidationError("unknown timezone " + tz)
	}
	u.timezone = tz
	return nil
}
