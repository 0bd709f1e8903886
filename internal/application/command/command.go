// Package command contains the actions of each dashboard page. Commands
// authorize the session, validate their input locally, call the backend and
// publish a domain event once the backend confirms the change.
package command

import (
	"context"
	"errors"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// Deps are the collaborators every command handler shares.
type Deps struct {
	Events   shared.EventPublisher
	Features *config.FeatureFlags
	Logger   *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = shared.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	return d
}

func (d Deps) publish(ev shared.Event) {
	if err := d.Events.Publish(ev); err != nil {
		d.Logger.Warn("publish event failed", logger.String("event_type", string(ev.EventType())), logger.Err(err))
	}
}

func (d Deps) requireFeature(op, name string, user *session.UserProfile) error {
	var id, role string
	if user != nil {
		id, role = user.ID.String(), string(user.Role)
	}
	if !d.Features.EnabledFor(name, id, role) {
		return shared.NewDomainError("command", op, shared.ErrFeatureDisabled, name+" is disabled")
	}
	return nil
}

// userErrorText returns the text of a backend user error (UERROR).
func userErrorText(err error) (string, bool) {
	if !errors.Is(err, shared.ErrInvalidInput) {
		return "", false
	}
	var texter interface{ Text() string }
	if !errors.As(err, &texter) {
		return "", false
	}
	return texter.Text(), true
}

// Refresher reloads the signed-in profile. *session.Store implements it.
type Refresher interface {
	FetchUser(ctx context.Context) error
}

// SignerOut ends the session and clears persisted storage.
// *session.Store implements it.
type SignerOut interface {
	SignOut(ctx context.Context) error
}
