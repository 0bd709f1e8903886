// Package authz decides whether the current session may open a role-gated page.
package authz

import (
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// LoginPath is where every rejected session is sent.
const LoginPath = "/auth/login"

// Outcome is the result of a guard evaluation.
type Outcome int

const (
	// Pending means the profile fetch has not completed; render nothing.
	Pending Outcome = iota
	// Allow renders the page.
	Allow
	// SessionError means the fetch failed.
	SessionError
	// Unauthenticated means there is no user.
	Unauthenticated
	// Forbidden means the user has a different role.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case SessionError:
		return "session_error"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Decision is what a page does with the session.
type Decision struct {
	Outcome  Outcome
	Redirect string // empty unless the page must navigate away
	Err      error  // the session error, for SessionError
}

// Allowed reports whether the page may render.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Authorize evaluates the session against the role a page requires.
// RolePublic always allows. RoleAny allows any signed-in user.
func Authorize(s session.Session, required shared.Role) Decision {
	if required == shared.RolePublic {
		return Decision{Outcome: Allow}
	}

	switch {
	case !s.Loaded:
		return Decision{Outcome: Pending}
	case s.Err != nil:
		return Decision{Outcome: SessionError, Redirect: LoginPath, Err: s.Err}
	case s.User == nil:
		return Decision{Outcome: Unauthenticated, Redirect: LoginPath}
	case required != shared.RoleAny && s.User.Role != required:
		return Decision{Outcome: Forbidden, Redirect: LoginPath}
	}
	return Decision{Outcome: Allow}
}

// AsError converts a rejected decision to an error, nil when allowed.
func (d Decision) AsError() error {
	switch d.Outcome {
	case Allow:
		return nil
	case Pending:
		return shared.NewDomainError("authz", "Authorize", shared.ErrInvalidState, "session is still loading")
	case SessionError:
		return shared.WrapError("authz", "Authorize", shared.ErrUnauthorized, "session could not be loaded", d.Err)
	case Forbidden:
		return shared.NewDomainError("authz", "Authorize", shared.ErrForbidden, "this page is not available for your role")
	default:
		return shared.NewDomainError("authz", "Authorize", shared.ErrUnauthorized, "please log in")
	}
}

// LandingPath is the home page for a role.
func LandingPath(role shared.Role) string {
	switch role {
	case shared.RoleStudent:
		return "/student/home"
	case shared.RoleTeacher:
		return "/teachers"
	case shared.RoleAdmin:
		return "/admin/dashboard"
	case shared.RoleParent:
		return "/parents"
	default:
		return LoginPath
	}
}

// SessionSource provides the current session. *session.Store implements it.
type SessionSource interface {
	Snapshot() session.Session
}

// Require authorizes the current session for role and returns its user,
// which is nil only for RolePublic without a signed-in user.
func Require(src SessionSource, role shared.Role) (*session.UserProfile, error) {
	s := src.Snapshot()
	if err := Authorize(s, role).AsError(); err != nil {
		return nil, err
	}
	return s.User, nil
}
