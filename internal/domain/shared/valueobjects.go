package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Object
// ═══════════════════════════════════════════════════════════════════════════

// ID is an opaque backend identifier. The backend serializes some IDs as
// numbers and others as strings, so both JSON forms are accepted.
type ID string

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id ID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: id %s", ErrInvalidID, data)
	}
	*id = ID(n.String())
	return nil
}

// NewID creates an ID with validation.
func NewID(value string) (ID, error) {
	id := ID(strings.TrimSpace(value))
	if id.IsEmpty() {
		return "", ErrInvalidID
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Role Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Role is the user role that selects which dashboard a user may open.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
	RoleParent  Role = "parent"

	// RoleAny marks routes open to every authenticated user.
	RoleAny Role = "*"
	// RolePublic marks routes that need no session.
	RolePublic Role = ""
)

// IsValid reports whether r is one of the four user roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleParent:
		return true
	}
	return false
}

// String returns the string representation.
func (r Role) String() string {
	switch r {
	case RoleAny:
		return "any"
	case RolePublic:
		return "public"
	}
	return string(r)
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: role %q", ErrInvalidInput, s)
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// League Value Object
// ═══════════════════════════════════════════════════════════════════════════

// League is a student's leaderboard league.
type League string

const (
	LeagueBronze League = "Bronze"
	LeagueSilver League = "Silver"
	LeagueGold   League = "Gold"
)

// Medal returns the medal shown next to the league name.
func (l League) Medal() string {
	switch strings.ToLower(string(l)) {
	case "gold":
		return "🥇"
	case "silver":
		return "🥈"
	case "bronze":
		return "🥉"
	default:
		return ""
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Points Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Points is an amount of recycling points.
type Points int

// Int returns the underlying int value.
func (p Points) Int() int {
	return int(p)
}

// String formats points with a unit ("120 pts").
func (p Points) String() string {
	return strconv.Itoa(int(p)) + " pts"
}

// NewPoints creates a Points value with validation.
func NewPoints(amount int) (Points, error) {
	if amount < 0 {
		return 0, ErrNegativeValue
	}
	return Points(amount), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Timestamp Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Timestamp is a backend time value. Offsets are optional; times without one
// are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses any of the layouts the backend emits.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: timestamp %q", ErrInvalidFormat, value)
}

// UnmarshalJSON accepts a JSON string or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: timestamp %s", ErrInvalidFormat, data)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Ptr returns the time, or nil when zero.
func (t Timestamp) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	tt := t.Time
	return &tt
}
