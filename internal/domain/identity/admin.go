package identity

import (
	"context"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// ManagedUser is a user row in the admin's user management table.
type ManagedUser struct {
	ID            shared.ID   `json:"id"`
	Name          string      `json:"name"`
	FName         string      `json:"fName"`
	LName         string      `json:"lName"`
	Email         string      `json:"email"`
	ContactNumber string      `json:"contactNumber"`
	UserRole      shared.Role `json:"userRole"`
}

// SearchUsers filters users by name, ignoring case.
func SearchUsers(users []ManagedUser, term string) []ManagedUser {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users
	}
	var out []ManagedUser
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), term) {
			out = append(out, u)
		}
	}
	return out
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID          shared.ID        `json:"id"`
	SenderName  string           `json:"senderName"`
	SenderEmail string           `json:"senderEmail"`
	Message     string           `json:"message"`
	HasReplied  bool             `json:"hasReplied"`
	CreatedAt   shared.Timestamp `json:"createdAt"`
}

// SearchMessages filters messages by sender name or email, ignoring case.
func SearchMessages(messages []ContactMessage, term string) []ContactMessage {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return messages
	}
	var out []ContactMessage
	for _, m := range messages {
		if strings.Contains(strings.ToLower(m.SenderName), term) ||
			strings.Contains(strings.ToLower(m.SenderEmail), term) {
			out = append(out, m)
		}
	}
	return out
}

// Pending returns the messages that still need a reply.
func Pending(messages []ContactMessage) []ContactMessage {
	var out []ContactMessage
	for _, m := range messages {
		if !m.HasReplied {
			out = append(out, m)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORIES
// ══════════════════════════════════════════════════════════════════════════════

// AccountRepository covers the signed-in user's own account.
type AccountRepository interface {
	CreateAccount(ctx context.Context, form ParentRegistration) (string, error)
	VerifyContact(ctx context.Context, code string) (shared.Role, error)
	SendContactVerification(ctx context.Context) error
	DeleteAccount(ctx context.Context, password string) error
}

// AdminRepository covers user and contact management.
type AdminRepository interface {
	ListUsers(ctx context.Context) ([]ManagedUser, error)
	UpdateUser(ctx context.Context, user ManagedUser) (*ManagedUser, error)
	ListMessages(ctx context.Context) ([]ContactMessage, error)
	UpdateMessage(ctx context.Context, msg ContactMessage) error
	MarkReplied(ctx context.Context, id string) error
}

// PublicRepository covers endpoints open to visitors.
type PublicRepository interface {
	SubmitContactForm(ctx context.Context, form ContactForm) error
	AskEcoPilot(ctx context.Context, prompt string) (string, error)
}
