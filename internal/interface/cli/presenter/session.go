package presenter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/infrastructure/external/recyclify"
)

// Routes renders the navigation menu. Pages the session may not open are
// shown muted.
func (p *Presenter) Routes(s session.Session) string {
	t := NewTable("Pages", "Path", "Page", "Access")
	for _, r := range authz.Routes() {
		access := string(r.Role)
		switch r.Role {
		case shared.RolePublic:
			access = "public"
		case shared.RoleAny:
			access = "signed in"
		}
		if authz.Authorize(s, r.Role).Allowed() {
			t.AddRow(r.Path, r.Title, access)
		} else {
			t.AddRow(p.s.Muted.Render(r.Path), p.s.Muted.Render(r.Title), p.s.Muted.Render(access))
		}
	}
	return t.View(p.s, "")
}

// Decision explains a guard decision for a page.
func (p *Presenter) Decision(r authz.Route, d authz.Decision) string {
	switch d.Outcome {
	case authz.Allow:
		return p.s.Good.Render(fmt.Sprintf("%s (%s)", r.Title, r.Path)) + "\n"
	case authz.Pending:
		return p.s.Muted.Render("Loading...") + "\n"
	default:
		return p.s.Warn.Render(fmt.Sprintf("%s is not available: %s. Redirecting to %s.", r.Path, d.Outcome, d.Redirect)) + "\n"
	}
}

// Error renders err for the terminal. Field errors print one line per
// field, backend user errors print their text and anything else prints a
// generic failure.
func (p *Presenter) Error(err error) string {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr.Fields))
		for f := range verr.Fields {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		var sb strings.Builder
		for _, f := range fields {
			fmt.Fprintf(&sb, "%s %s\n", p.s.Bad.Render(f+":"), verr.Fields[f])
		}
		return sb.String()
	}

	if apiErr, ok := recyclify.AsAPIError(err); ok && apiErr.Kind == recyclify.KindUser {
		return p.s.Bad.Render(apiErr.Text()) + "\n"
	}

	switch {
	case errors.Is(err, shared.ErrFeatureDisabled):
		return p.s.Warn.Render("This feature is turned off.") + "\n"
	case errors.Is(err, shared.ErrForbidden):
		return p.s.Bad.Render("Your account cannot open this page.") + "\n"
	case errors.Is(err, shared.ErrUnauthorized):
		return p.s.Bad.Render("You are not signed in. Run `recyclify token set <jwt>` first.") + "\n"
	case errors.Is(err, shared.ErrNotFound):
		return p.s.Bad.Render(notFoundText(err)) + "\n"
	}

	var derr *shared.DomainError
	if errors.As(err, &derr) && derr.Message != "" && !errors.Is(err, shared.ErrExternalService) {
		return p.s.Bad.Render(capitalize(derr.Message)+".") + "\n"
	}
	if _, ok := recyclify.AsAPIError(err); ok || errors.Is(err, shared.ErrExternalService) {
		return p.s.Bad.Render(recyclify.Message(err)) + "\n"
	}
	return p.s.Bad.Render(err.Error()) + "\n"
}

func notFoundText(err error) string {
	var derr *shared.DomainError
	if errors.As(err, &derr) && derr.Message != "" {
		return capitalize(derr.Message) + "."
	}
	return "Not found."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
