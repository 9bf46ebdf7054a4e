package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/services"
)

// ListMembersCmd creates the listMembers command
func ListMembersCmd(app *AppContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "listMembers",
		Short: "List ensemble members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			var members []model.Member
			if status != "" {
				members, err = database.ListMembersByStatus(app.Ctx, model.MemberStatus(status))
			} else {
				members, err = database.ListMembers(app.Ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list members: %w", err)
			}

			fmt.Printf("\nFound %d members:\n\n", len(members))
			for _, m := range members {
				login := ""
				if m.UID == "" {
					login = " [no login]"
				}
				fmt.Printf("- %s (%s) - %s - %s - %s%s\n", m.FullName(), m.ID, m.Role, m.Status, m.Email, login)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only members with this status (active, pending, disabled)")

	return cmd
}

// AddMemberCmd creates the addMember command
func AddMemberCmd(app *AppContext) *cobra.Command {
	var member model.Member
	var role, status string

	cmd := &cobra.Command{
		Use:   "addMember <firstName> <lastName>",
		Short: "Add a member to the roster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			m := member
			m.FirstName, m.LastName = args[0], args[1]
			m.Role = model.Role(role)
			m.Status = model.MemberStatus(status)

			added, err := services.AddMember(app.Ctx, database, app.Logger, m)
			if err != nil {
				return fmt.Errorf("failed to add member: %w", err)
			}
			fmt.Printf("\n✓ Added %s (%s) as %s\n", added.FullName(), added.ID, added.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&member.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&member.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&member.BirthDate, "birthDate", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleMember), "Role (admin, instructor, member, choreographer)")
	cmd.Flags().StringVar(&status, "status", string(model.StatusActive), "Status (active, pending, disabled)")

	return cmd
}

// BirthdaysCmd creates the birthdays command
func BirthdaysCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "birthdays",
		Short: "Show the next upcoming member birthdays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			birthdays, err := services.UpcomingBirthdays(app.Ctx, database, time.Now())
			if err != nil {
				return fmt.Errorf("failed to compute birthdays: %w", err)
			}
			if len(birthdays) == 0 {
				fmt.Println("\nNo birthdays on record")
				return nil
			}

			fmt.Println()
			for _, b := range birthdays {
				when := fmt.Sprintf("in %d days", b.DaysLeft)
				if b.IsToday() {
					when = "today 🎉"
				}
				fmt.Printf("- %s: %s (%s)\n", b.Member.FullName(), b.NextBirthday.Format(model.DateLayout), when)
			}
			return nil
		},
	}
}
