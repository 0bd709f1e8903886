package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recyclify/recyclify-client/internal/domain/identity"
)

func newAccountCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Register, verify or delete an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newRegisterCommand(app),
		&cobra.Command{
			Use:   "verify <code>",
			Short: "Verify your phone with the 6-digit SMS code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				next, err := app.Services.Account.VerifyContact(cmd.Context(), identity.VerificationCode{Code: strings.TrimSpace(args[0])})
				if err != nil {
					return err
				}
				app.print(fmt.Sprintf("Phone verified. Continue with: recyclify open %s\n", next))
				return nil
			},
		},
		&cobra.Command{
			Use:   "resend-code",
			Short: "Send a new SMS verification code",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Services.Account.ResendVerification(cmd.Context()); err != nil {
					return err
				}
				app.print("A new code is on its way.\n")
				return nil
			},
		},
		newDeleteAccountCommand(app),
	)
	return cmd
}

func newRegisterCommand(app *App) *cobra.Command {
	form := identity.NewParentRegistration()
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a parent account linked to your child",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := app.Services.Account.RegisterParent(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.print(fmt.Sprintf("%s Check your email, then continue at %s.\n", out.Message, out.Next))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.FName, "fname", "", "first name")
	f.StringVar(&form.LName, "lname", "", "last name")
	f.StringVar(&form.Name, "username", "", "username, without spaces")
	f.StringVar(&form.Email, "email", "", "email address")
	f.StringVar(&form.ContactNumber, "contact", "", "8-digit contact number")
	f.StringVar(&form.StudentID, "student-id", "", "your child's student ID")
	f.StringVar(&form.Password, "password", "", "password, at least 8 characters")
	f.StringVar(&form.ConfirmPassword, "confirm-password", "", "the password again")
	return cmd
}

func newDeleteAccountCommand(app *App) *cobra.Command {
	var form identity.DeleteAccount
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := app.Services.Account.DeleteAccount(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.print(fmt.Sprintf("Account deleted. You have been signed out (%s).\n", next))
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Password, "password", "", "your password")
	return cmd
}

func newContactCommand(app *App) *cobra.Command {
	var form identity.ContactForm
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the Recyclify team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := app.Services.Public.SubmitContactForm(cmd.Context(), form)
			if err != nil {
				return err
			}
			app.print(msg + "\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&form.SenderName, "name", "", "your name")
	cmd.Flags().StringVar(&form.SenderEmail, "email", "", "your email")
	cmd.Flags().StringVar(&form.Message, "message", "", "the message")
	return cmd
}

func newEcoPilotCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ecopilot <question>",
		Short: "Ask EcoPilot how to recycle something",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := app.Services.Public.AskEcoPilot(cmd.Context(), identity.EcoPilotPrompt{UserPrompt: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			app.print(answer + "\n")
			return nil
		},
	}
}
