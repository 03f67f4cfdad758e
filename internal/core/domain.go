package core

import (
	"strings"
	"time"
)

// DefaultSpendLimit is assigned to newly created users. The limit is only
// compared against daily totals by clients; nothing in this service enforces it.
const DefaultSpendLimit = 5000

// DefaultAuthProvider is recorded when the identity provider is not specified.
const DefaultAuthProvider = "google"

type (
	// Identity is the subject information received from the external
	// identity provider after a successful sign-in.
	Identity struct {
		ExternalID   string
		Email        string
		DisplayName  string
		AuthProvider string
	}

	// UserDetails holds the profile fields of a user. ExternalID is the
	// stable key issued by the identity provider and never changes.
	UserDetails struct {
		ExternalID   string `json:"externalId"`
		AuthProvider string `json:"authProvider"`
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		DOB          string `json:"dob,omitempty"`
		Email        string `json:"email"`
	}

	// UserSettings holds per-user preferences.
	// SpendLimit is serialized even when zero.
	UserSettings struct {
		SpendLimit float64 `json:"spendLimit"`
	}

	// LogEntry is a single recorded expense. It only exists embedded in its
	// owning User; the ID is unique within that user's log list.
	LogEntry struct {
		ID        string    `json:"id"`
		Amount    float64   `json:"amount"`
		Category  string    `json:"category"`
		Note      string    `json:"note,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// User is the unit of storage and of atomic mutation: all log operations
	// are single-document writes against one User.
	User struct {
		Details   UserDetails  `json:"details"`
		Settings  UserSettings `json:"settings"`
		Logs      []LogEntry   `json:"logs"`
		CreatedAt time.Time    `json:"createdAt"`
		UpdatedAt time.Time    `json:"updatedAt"`
	}

	// LogInput carries the mutable fields of a log entry for create and
	// update operations. CreatedAt is immutable and not part of the input.
	LogInput struct {
		Amount   float64
		Category string
		Note     string
	}
)

// Validate checks the fields required to find-or-create a user.
func (id Identity) Validate() error {
	if strings.TrimSpace(id.ExternalID) == "" {
		return ErrMissingExternalID
	}
	if strings.TrimSpace(id.Email) == "" {
		return ErrMissingEmail
	}
	return nil
}

// Validate checks the required log fields. A zero amount is rejected the same
// way a missing one is; negative amounts are accepted (refunds).
func (in LogInput) Validate() error {
	if in.Amount == 0 {
		return ErrMissingAmount
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrMissingCategory
	}
	return nil
}

// SplitDisplayName derives first and last name from a display name.
// The first whitespace-delimited token becomes the first name and the rest,
// joined by single spaces, the last name. When the remainder is empty the
// last name is a single space, and an empty display name yields "User".
func SplitDisplayName(displayName string) (first, last string) {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return "User", " "
	}
	first = fields[0]
	last = strings.Join(fields[1:], " ")
	if last == "" {
		last = " "
	}
	return first, last
}

// FindLog returns the log entry with the given id, or nil.
func (u *User) FindLog(logID string) *LogEntry {
	for i := range u.Logs {
		if u.Logs[i].ID == logID {
			return &u.Logs[i]
		}
	}
	return nil
}
