// Package session owns the authentication state of the current user: the bearer
// token, the fetched profile, and whether the profile fetch has finished.
package session

import (
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// UserProfile is the signed-in user as returned by getUserDetails.
// Views treat it as read-only.
type UserProfile struct {
	ID            shared.ID   `json:"id"`
	Name          string      `json:"name"`
	FName         string      `json:"fName"`
	LName         string      `json:"lName"`
	Email         string      `json:"email"`
	ContactNumber string      `json:"contactNumber"`
	Role          shared.Role `json:"userRole"`
	Avatar        string      `json:"avatar,omitempty"`
	Banner        string      `json:"banner,omitempty"`
	EmailVerified bool        `json:"emailVerified"`
	PhoneVerified bool        `json:"phoneVerified"`
}

// DisplayName returns "First Last", falling back to the username.
func (p *UserProfile) DisplayName() string {
	full := strings.TrimSpace(p.FName + " " + p.LName)
	if full == "" {
		return p.Name
	}
	return full
}

// Validate rejects a profile without an ID. Unknown roles are kept; the
// guard treats them as forbidden everywhere.
func (p *UserProfile) Validate() error {
	if p.ID.IsEmpty() {
		return shared.ErrInvalidProfile
	}
	return nil
}

func (p *UserProfile) clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
