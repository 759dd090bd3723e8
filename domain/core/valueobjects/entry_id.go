package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// EntryID is a value object representing a unique entry identifier
type EntryID struct {
	value string
}

// NewEntryID creates a new random EntryID
func NewEntryID() EntryID {
	return EntryID{value: uuid.New().String()}
}

// NewEntryIDFromString creates an EntryID from an existing string
func NewEntryIDFromString(id string) (EntryID, error) {
	if id == "" {
		return EntryID{}, errors.New("entry ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return EntryID{}, errors.New("entry ID must be a valid UUID")
	}
	return EntryID{value: id}, nil
}

// String returns the string representation of the EntryID
func (id EntryID) String() string {
	return id.value
}

// Equals checks if two EntryIDs are equal
func (id EntryID) Equals(other EntryID) bool {
	return id.value == other.value
}

// IsZero checks if the EntryID is the zero value
func (id EntryID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id EntryID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *EntryID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NewEntryIDFromString(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
