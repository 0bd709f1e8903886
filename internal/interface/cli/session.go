package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recyclify/recyclify-client/internal/domain/authz"
)

func newTokenCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored sign-in token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	set := &cobra.Command{
		Use:   "set <jwt>",
		Short: "Store a token and load its profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if err := app.Session.SetToken(cmd.Context(), token); err != nil {
				return err
			}
			if err := app.Session.FetchUser(cmd.Context()); err != nil {
				return err
			}
			s := app.Session.Snapshot()
			if s.User == nil {
				return fmt.Errorf("token stored but no profile was returned")
			}
			app.print(fmt.Sprintf("Signed in as %s (%s).\n", s.User.DisplayName(), s.User.Role))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			app.print("Token removed.\n")
			return nil
		},
	}

	cmd.AddCommand(set, clearCmd)
	return cmd
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := app.Services.Profile.Handle(cmd.Context())
			if err != nil {
				return err
			}
			app.print(app.present.Profile(prof))
			return nil
		},
	}
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			app.print("Logged out.\n")
			return nil
		},
	}
}

func newRoutesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the pages and who may open them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.print(app.present.Routes(app.Session.Snapshot()))
			return nil
		},
	}
}

func newOpenCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open a page the way the web app would",
		Long: `Open evaluates the page's role guard for the current session and,
when allowed, renders the page. Rejected sessions are told where the web
app would redirect them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route, decision, err := authz.Navigate(app.Session.Snapshot(), args[0])
			if err != nil {
				return err
			}
			app.print(app.present.Decision(route, decision))
			if !decision.Allowed() {
				return decision.AsError()
			}
			if page, ok := pages(app)[route.Path]; ok {
				return page(cmd)
			}
			if hint, ok := pageHints[route.Path]; ok {
				app.print(hint + "\n")
			}
			return nil
		},
	}
}

// pages renders the routes that need no arguments.
func pages(app *App) map[string]func(*cobra.Command) error {
	return map[string]func(*cobra.Command) error{
		"/student/home":              func(c *cobra.Command) error { return studentHome(app, c) },
		"/student/leaderboards":      func(c *cobra.Command) error { return studentLeaderboard(app, c) },
		"/teachers":                  func(c *cobra.Command) error { return teacherClasses(app, c) },
		"/teachers/leaderboards":     func(c *cobra.Command) error { return teacherLeaderboards(app, c) },
		"/admin/dashboard":           func(c *cobra.Command) error { return adminDashboard(app, c) },
		"/admin/userManagement":      func(c *cobra.Command) error { return adminUsers(app, c, "") },
		"/admin/inventoryManagement": func(c *cobra.Command) error { return adminRewards(app, c, "") },
		"/admin/contactManagement":   func(c *cobra.Command) error { return adminMessages(app, c, "", false) },
	}
}

var pageHints = map[string]string{
	"/student/scanItem":         "Scan an item with: recyclify student scan <photo>",
	"/student/redemption":       "Ask your teacher which rewards are in stock.",
	"/teachers/class":           "Open a class with: recyclify teacher class <classID>",
	"/parents":                  "Your child's progress is emailed to you by their teacher.",
	"/ecopilot":                 "Ask with: recyclify ecopilot <question>",
	"/auth/contactVerification": "Verify with: recyclify account verify <code>",
	"/account/delete":           "Delete with: recyclify account delete --password <password>",
	"/contact":                  "Send with: recyclify contact --name <name> --email <email> --message <text>",
	"/auth/register":            "Register with: recyclify account register --help",
	authz.LoginPath:             "Sign in with: recyclify token set <jwt>",
}
