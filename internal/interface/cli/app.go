// Package cli is the terminal client: one cobra command per dashboard page
// and action, all gated by the session's role.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/recyclify/recyclify-client/internal/application/command"
	"github.com/recyclify/recyclify-client/internal/application/query"
	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/infrastructure/external/recyclify"
	"github.com/recyclify/recyclify-client/internal/interface/cli/presenter"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitInvalid    = 2 // local validation or a backend UERROR
	ExitNotAllowed = 3 // not signed in or wrong role
)

// SessionStore is the session the commands read and change.
// *session.Store implements it.
type SessionStore interface {
	authz.SessionSource
	FetchUser(ctx context.Context) error
	SetToken(ctx context.Context, token string) error
	SignOut(ctx context.Context) error
}

// Services are the page queries and actions.
type Services struct {
	Profile            *query.ProfileHandler
	StudentHome        *query.StudentHomeHandler
	StudentLeaderboard *query.StudentLeaderboardHandler
	StudentQuests      *query.StudentQuestsHandler
	ClaimGift          *command.ClaimStreakGiftHandler
	Recognise          *command.RecogniseImageHandler

	Classes           *query.ClassesHandler
	ClassDashboard    *query.ClassDashboardHandler
	ClassLeaderboards *query.ClassLeaderboardsHandler
	Teacher           *command.TeacherHandler

	AdminQueries *query.AdminHandler
	Admin        *command.AdminHandler

	Account *command.AccountHandler
	Public  *command.PublicHandler
}

// App holds everything the commands need.
type App struct {
	Session  SessionStore
	Services Services
	Logger   *logger.Logger

	Out io.Writer
	Err io.Writer

	// Plain disables colours. The --plain flag also sets it.
	Plain bool

	present *presenter.Presenter
}

func (a *App) init() {
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Err == nil {
		a.Err = os.Stderr
	}
	if a.Logger == nil {
		a.Logger = logger.Nop()
	}
	a.setStyles()
}

func (a *App) setStyles() {
	if a.Plain {
		a.present = presenter.New(presenter.PlainStyles())
		return
	}
	a.present = presenter.New(presenter.DefaultStyles())
}

func (a *App) print(s string) {
	fmt.Fprint(a.Out, s)
}

// Run executes args and returns the process exit code. Errors are printed
// to Err.
func (a *App) Run(ctx context.Context, args []string) int {
	a.init()
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	if err := root.ExecuteContext(ctx); err != nil {
		a.Logger.Debug("command failed", logger.Err(err))
		fmt.Fprint(a.Err, a.present.Error(err))
		return ExitCode(err)
	}
	return ExitOK
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, shared.ErrValidation), recyclify.IsUserError(err):
		return ExitInvalid
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrForbidden):
		return ExitNotAllowed
	default:
		return ExitFailure
	}
}
