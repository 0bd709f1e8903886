package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recyclify/recyclify-client/internal/application/command"
)

func newStudentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Student pages: home, leaderboard, quests and scanning",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "home",
			Short: "Show points, streak gift and tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return studentHome(app, cmd)
			},
		},
		&cobra.Command{
			Use:   "leaderboard",
			Short: "Show the school leaderboard",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return studentLeaderboard(app, cmd)
			},
		},
		&cobra.Command{
			Use:   "claim-gift",
			Short: "Claim the weekly streak gift",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				claim, err := app.Services.ClaimGift.Handle(cmd.Context())
				if err != nil {
					return err
				}
				app.print(app.present.GiftClaim(claim))
				return nil
			},
		},
		&cobra.Command{
			Use:   "quests",
			Short: "Show your class quests",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				board, err := app.Services.StudentQuests.Handle(cmd.Context())
				if err != nil {
					return err
				}
				app.print(app.present.Quests(board))
				return nil
			},
		},
		&cobra.Command{
			Use:   "scan <photo>",
			Short: "Check whether an item can be recycled",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open photo: %w", err)
				}
				defer f.Close()

				rec, err := app.Services.Recognise.Handle(cmd.Context(), command.RecogniseImageCommand{Filename: f.Name(), Image: f})
				if err != nil {
					return err
				}
				app.print(app.present.Recognition(rec))
				return nil
			},
		},
	)
	return cmd
}

func studentHome(app *App, cmd *cobra.Command) error {
	home, err := app.Services.StudentHome.Handle(cmd.Context())
	if err != nil {
		return err
	}
	app.print(app.present.StudentHome(home))
	return nil
}

func studentLeaderboard(app *App, cmd *cobra.Command) error {
	lb, err := app.Services.StudentLeaderboard.Handle(cmd.Context())
	if err != nil {
		return err
	}
	app.print(app.present.StudentLeaderboard(lb))
	return nil
}
