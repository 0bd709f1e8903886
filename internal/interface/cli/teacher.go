package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recyclify/recyclify-client/internal/application/command"
	"github.com/recyclify/recyclify-client/internal/application/query"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

func newTeacherCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Teacher pages: classes, class dashboards and student management",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "classes",
			Short: "List classes by points",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return teacherClasses(app, cmd)
			},
		},
		newClassCommand(app),
		&cobra.Command{
			Use:   "leaderboards",
			Short: "Rank every class with its students",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return teacherLeaderboards(app, cmd)
			},
		},
		newUpdateStudentCommand(app),
		&cobra.Command{
			Use:   "delete-student <studentID>",
			Short: "Remove a student",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Services.Teacher.DeleteStudent(cmd.Context(), shared.ID(args[0])); err != nil {
					return err
				}
				app.print("Student deleted.\n")
				return nil
			},
		},
		newEmailCommand(app),
		&cobra.Command{
			Use:   "certificate <classID>",
			Short: "Email a certificate to the class's top contributor",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				top, err := app.Services.Teacher.SendCertificate(cmd.Context(), shared.ID(args[0]))
				if err != nil {
					return err
				}
				app.print(fmt.Sprintf("Certificate sent to %s (%s).\n", top.Name(), top.Email()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "regenerate-quests <classID>",
			Short: "Replace a class's quests",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Services.Teacher.RegenerateQuests(cmd.Context(), shared.ID(args[0])); err != nil {
					return err
				}
				app.print("Quests regenerated.\n")
				return nil
			},
		},
	)
	return cmd
}

func newClassCommand(app *App) *cobra.Command {
	var sortBy, order string
	cmd := &cobra.Command{
		Use:   "class <classID>",
		Short: "Show a class dashboard",
		Long: `Show a class dashboard: rank, weekly points, top and lowest students,
the student table and quests.

Columns for --sort: name, league, currentPoints, totalPoints, redemptions,
studentEmail, parentEmail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := query.ClassDashboardQuery{ClassID: shared.ID(args[0])}
			if sortBy != "" {
				col, err := leaderboard.ParseColumn(sortBy)
				if err != nil {
					return err
				}
				q.SortBy = col
				q.Order = leaderboard.Order(order)
			}
			dash, err := app.Services.ClassDashboard.Handle(cmd.Context(), q)
			if err != nil {
				return err
			}
			app.print(app.present.ClassDashboard(dash))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort the student table by column")
	cmd.Flags().StringVar(&order, "order", string(leaderboard.Asc), "sort order: asc or desc")
	return cmd
}

func newUpdateStudentCommand(app *App) *cobra.Command {
	var edit identity.StudentEdit
	cmd := &cobra.Command{
		Use:   "update-student <studentID>",
		Short: "Change a student's name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit.StudentID = args[0]
			if err := app.Services.Teacher.UpdateStudent(cmd.Context(), edit); err != nil {
				return err
			}
			app.print("Student updated.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&edit.FName, "fname", "", "first name")
	cmd.Flags().StringVar(&edit.LName, "lname", "", "last name")
	cmd.Flags().StringVar(&edit.Email, "email", "", "student email")
	return cmd
}

func newEmailCommand(app *App) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "email <classID> <studentID>",
		Short: "Email a progress update to a student and/or their parent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipients, err := student.ParseRecipients(to)
			if err != nil {
				return err
			}
			err = app.Services.Teacher.SendUpdateEmail(cmd.Context(), command.SendUpdateEmailCommand{
				ClassID:    shared.ID(args[0]),
				StudentID:  shared.ID(args[1]),
				Recipients: recipients,
			})
			if err != nil {
				return err
			}
			app.print("Update email sent.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "student,parent", "recipients: student, parent or both")
	return cmd
}

func teacherClasses(app *App, cmd *cobra.Command) error {
	classes, err := app.Services.Classes.Handle(cmd.Context())
	if err != nil {
		return err
	}
	app.print(app.present.Classes(classes))
	return nil
}

func teacherLeaderboards(app *App, cmd *cobra.Command) error {
	standings, err := app.Services.ClassLeaderboards.Handle(cmd.Context())
	if err != nil {
		return err
	}
	app.print(app.present.ClassLeaderboards(standings))
	return nil
}
