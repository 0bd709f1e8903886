package command

import (
	"context"
	"fmt"

	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// IncorrectPassword is the backend's reply to a wrong deletion password.
const IncorrectPassword = "Incorrect password."

// Registered is the outcome of a parent sign-up.
type Registered struct {
	Message string
	Next    string
}

// AccountHandler runs the registration, contact verification and account
// deletion flows.
type AccountHandler struct {
	sessions authz.SessionSource
	accounts identity.AccountRepository
	refresh  Refresher
	signOut  SignerOut
	deps     Deps
}

// NewAccountHandler creates an AccountHandler. store is usually the
// *session.Store behind sessions.
func NewAccountHandler(sessions authz.SessionSource, accounts identity.AccountRepository, store interface {
	Refresher
	SignerOut
}, deps Deps) *AccountHandler {
	return &AccountHandler{
		sessions: sessions,
		accounts: accounts,
		refresh:  store,
		signOut:  store,
		deps:     deps.withDefaults(),
	}
}

// RegisterParent creates a parent account. Duplicate username, email or
// contact number and an unknown student ID come back as field errors.
func (h *AccountHandler) RegisterParent(ctx context.Context, form identity.ParentRegistration) (*Registered, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	msg, err := h.accounts.CreateAccount(ctx, form)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			if field, fieldText, mapped := identity.MapRegistrationError(text); mapped {
				return nil, shared.FieldErrors(map[string]string{field: fieldText})
			}
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	if msg == "" {
		msg = identity.AccountCreatedMessage
	}
	h.deps.publish(shared.NewEvent(shared.EventAccountRegistered, form.Name, map[string]any{"role": string(shared.RoleParent)}))
	return &Registered{Message: msg, Next: identity.EmailVerificationPath}, nil
}

// VerifyContact submits the SMS code and returns the landing page of the
// verified role. A user whose phone is already verified goes straight to
// their landing page without a backend call.
func (h *AccountHandler) VerifyContact(ctx context.Context, code identity.VerificationCode) (string, error) {
	user, err := authz.Require(h.sessions, shared.RoleAny)
	if err != nil {
		return "", err
	}
	if user.PhoneVerified {
		return authz.LandingPath(user.Role), nil
	}
	if err := code.Validate(); err != nil {
		return "", err
	}

	role, err := h.accounts.VerifyContact(ctx, code.Code)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return "", shared.FieldErrors(map[string]string{"code": text})
		}
		return "", fmt.Errorf("verify contact: %w", err)
	}
	if role == "" {
		role = user.Role
	}
	if err := h.refresh.FetchUser(ctx); err != nil {
		h.deps.Logger.Warn("profile refresh after verification failed", logger.Err(err))
	}
	h.deps.publish(shared.NewEvent(shared.EventContactVerified, user.ID.String(), map[string]any{"role": string(role)}))
	return authz.LandingPath(role), nil
}

// ResendVerification asks the backend for a new SMS code.
func (h *AccountHandler) ResendVerification(ctx context.Context) error {
	if _, err := authz.Require(h.sessions, shared.RoleAny); err != nil {
		return err
	}
	if err := h.accounts.SendContactVerification(ctx); err != nil {
		return fmt.Errorf("send contact verification: %w", err)
	}
	return nil
}

// DeleteAccount deletes the signed-in account, then signs out and returns
// the login page.
func (h *AccountHandler) DeleteAccount(ctx context.Context, form identity.DeleteAccount) (string, error) {
	user, err := authz.Require(h.sessions, shared.RoleAny)
	if err != nil {
		return "", err
	}
	if err := form.Validate(); err != nil {
		return "", err
	}

	if err := h.accounts.DeleteAccount(ctx, form.Password); err != nil {
		if text, ok := userErrorText(err); ok {
			if text == IncorrectPassword {
				return "", shared.FieldErrors(map[string]string{"password": text})
			}
		}
		return "", fmt.Errorf("delete account: %w", err)
	}

	h.deps.publish(shared.NewEvent(shared.EventAccountDeleted, user.ID.String(), nil))
	if err := h.signOut.SignOut(ctx); err != nil {
		return authz.LoginPath, fmt.Errorf("sign out: %w", err)
	}
	return authz.LoginPath, nil
}
