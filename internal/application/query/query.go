// Package query contains the read side of each dashboard page. Every handler
// authorizes the current session for its page role before calling the
// backend and returns plain view structs; presentation is left to callers.
package query

import (
	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/session"
)

func featureOn(ff *config.FeatureFlags, name string, user *session.UserProfile) bool {
	if user == nil {
		return ff.EnabledFor(name, "", "")
	}
	return ff.EnabledFor(name, user.ID.String(), string(user.Role))
}
