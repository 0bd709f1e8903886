package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the recyclify command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	app.init()

	root := &cobra.Command{
		Use:   "recyclify",
		Short: "Terminal client for the Recyclify school recycling platform",
		Long: `recyclify opens the Recyclify dashboards from the terminal.

Sign in by storing the JWT issued by the Recyclify web app:
  recyclify token set <jwt>

Then open the pages your role can see:
  recyclify routes
  recyclify open /student/home
  recyclify teacher leaderboards`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.setStyles()
		},
	}
	root.PersistentFlags().BoolVar(&app.Plain, "plain", app.Plain, "disable colours")

	root.AddCommand(
		newTokenCommand(app),
		newWhoamiCommand(app),
		newLogoutCommand(app),
		newOpenCommand(app),
		newRoutesCommand(app),
		newStudentCommand(app),
		newTeacherCommand(app),
		newAdminCommand(app),
		newAccountCommand(app),
		newContactCommand(app),
		newEcoPilotCommand(app),
	)
	return root
}
