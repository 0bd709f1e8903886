package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recyclify/recyclify-client/internal/application/query"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

func newAdminCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin pages: users, inventory and the contact inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var userSearch, rewardSearch, messageSearch string
	var pendingOnly bool

	users := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminUsers(app, cmd, userSearch)
		},
	}
	users.Flags().StringVar(&userSearch, "search", "", "filter by username")

	rewards := &cobra.Command{
		Use:   "rewards",
		Short: "List inventory items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRewards(app, cmd, rewardSearch)
		},
	}
	rewards.Flags().StringVar(&rewardSearch, "search", "", "filter by title")

	messages := &cobra.Command{
		Use:   "messages",
		Short: "List contact messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminMessages(app, cmd, messageSearch, pendingOnly)
		},
	}
	messages.Flags().StringVar(&messageSearch, "search", "", "filter by sender name or email")
	messages.Flags().BoolVar(&pendingOnly, "pending", false, "only messages awaiting a reply")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "dashboard",
			Short: "Show user, inventory and inbox totals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return adminDashboard(app, cmd)
			},
		},
		users,
		newUpdateUserCommand(app),
		rewards,
		newAddRewardCommand(app),
		newUpdateRewardCommand(app),
		&cobra.Command{
			Use:   "toggle-reward <rewardID>",
			Short: "Show or hide an item",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				it, err := app.Services.Admin.ToggleAvailability(cmd.Context(), shared.ID(args[0]))
				if err != nil {
					return err
				}
				app.print(app.present.Reward(it))
				return nil
			},
		},
		messages,
		&cobra.Command{
			Use:   "reply <messageID>",
			Short: "Mark a message as replied",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Services.Admin.MarkReplied(cmd.Context(), shared.ID(args[0])); err != nil {
					return err
				}
				app.print("Marked as replied.\n")
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit-message <messageID> <text>",
			Short: "Replace the text of a message",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := app.Services.Admin.EditMessage(cmd.Context(), shared.ID(args[0]), strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				app.print(app.present.Messages([]identity.ContactMessage{*msg}))
				return nil
			},
		},
	)
	return cmd
}

func newUpdateUserCommand(app *App) *cobra.Command {
	var name, fname, lname, email, contact, role string
	cmd := &cobra.Command{
		Use:   "update-user <userID>",
		Short: "Edit a user; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.Services.AdminQueries.Users(cmd.Context(), "")
			if err != nil {
				return err
			}
			id := shared.ID(args[0])
			idx := -1
			for i := range all {
				if all[i].ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return shared.NewDomainError("cli", "UpdateUser", shared.ErrNotFound, "user "+args[0]+" not found")
			}

			u := all[idx]
			f := cmd.Flags()
			if f.Changed("name") {
				u.Name = name
			}
			if f.Changed("fname") {
				u.FName = fname
			}
			if f.Changed("lname") {
				u.LName = lname
			}
			if f.Changed("email") {
				u.Email = email
			}
			if f.Changed("contact") {
				u.ContactNumber = contact
			}
			if f.Changed("role") {
				r, err := shared.ParseRole(role)
				if err != nil {
					return err
				}
				u.UserRole = r
			}

			saved, err := app.Services.Admin.UpdateUser(cmd.Context(), u)
			if err != nil {
				return err
			}
			app.print(app.present.Users([]identity.ManagedUser{*saved}))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "username")
	cmd.Flags().StringVar(&fname, "fname", "", "first name")
	cmd.Flags().StringVar(&lname, "lname", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().StringVar(&contact, "contact", "", "contact number")
	cmd.Flags().StringVar(&role, "role", "", "student, teacher, admin or parent")
	return cmd
}

func newAddRewardCommand(app *App) *cobra.Command {
	var item reward.Item
	var points, quantity int
	var image string
	cmd := &cobra.Command{
		Use:   "add-reward",
		Short: "Add an inventory item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("points") {
				item.RequiredPoints = reward.IntPtr(points)
			}
			if f.Changed("quantity") {
				item.RewardQuantity = reward.IntPtr(quantity)
			}
			newItem := reward.NewItem{Item: item}
			if image != "" {
				file, err := os.Open(image)
				if err != nil {
					return fmt.Errorf("open image: %w", err)
				}
				defer file.Close()
				newItem.ImageName = filepath.Base(image)
				newItem.Image = file
			}

			if err := app.Services.Admin.CreateReward(cmd.Context(), newItem); err != nil {
				return err
			}
			app.print("Reward added.\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&item.RewardTitle, "title", "", "title")
	cmd.Flags().StringVar(&item.RewardDescription, "description", "", "description")
	cmd.Flags().IntVar(&points, "points", 0, "points needed to redeem")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "items in stock")
	cmd.Flags().BoolVar(&item.IsAvailable, "available", true, "show the item to students")
	cmd.Flags().StringVar(&image, "image", "", "path to the item photo")
	return cmd
}

func newUpdateRewardCommand(app *App) *cobra.Command {
	var title, description string
	var points, quantity int
	cmd := &cobra.Command{
		Use:   "update-reward <rewardID>",
		Short: "Edit an inventory item; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := app.Services.AdminQueries.Reward(cmd.Context(), shared.ID(args[0]))
			if err != nil {
				return err
			}
			it := *current
			f := cmd.Flags()
			if f.Changed("title") {
				it.RewardTitle = title
			}
			if f.Changed("description") {
				it.RewardDescription = description
			}
			if f.Changed("points") {
				it.RequiredPoints = reward.IntPtr(points)
			}
			if f.Changed("quantity") {
				it.RewardQuantity = reward.IntPtr(quantity)
			}

			saved, err := app.Services.Admin.UpdateReward(cmd.Context(), it)
			if err != nil {
				return err
			}
			app.print(app.present.Reward(saved))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().IntVar(&points, "points", 0, "points needed to redeem")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "items in stock")
	return cmd
}

func adminDashboard(app *App, cmd *cobra.Command) error {
	o, err := app.Services.AdminQueries.Overview(cmd.Context())
	if err != nil {
		return err
	}
	app.print(app.present.AdminOverview(o))
	return nil
}

func adminUsers(app *App, cmd *cobra.Command, search string) error {
	users, err := app.Services.AdminQueries.Users(cmd.Context(), search)
	if err != nil {
		return err
	}
	app.print(app.present.Users(users))
	return nil
}

func adminRewards(app *App, cmd *cobra.Command, search string) error {
	items, err := app.Services.AdminQueries.Rewards(cmd.Context(), search)
	if err != nil {
		return err
	}
	app.print(app.present.Rewards(items))
	return nil
}

func adminMessages(app *App, cmd *cobra.Command, search string, pendingOnly bool) error {
	msgs, err := app.Services.AdminQueries.Messages(cmd.Context(), query.MessagesQuery{Search: search, PendingOnly: pendingOnly})
	if err != nil {
		return err
	}
	app.print(app.present.Messages(msgs))
	return nil
}
