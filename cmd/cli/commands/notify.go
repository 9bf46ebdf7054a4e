package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folkbase/folkbase/pkg/core/services"
)

// NotifyCmd creates the notify command
func NotifyCmd(app *AppContext) *cobra.Command {
	var n services.Notification

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Email a notification to every active member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}
			gmail, err := app.GmailClient()
			if err != nil {
				return err
			}

			result, err := services.NotifyActiveMembers(app.Ctx, database, gmail, app.Logger, app.Cfg.TeamName, n)
			if err != nil {
				return fmt.Errorf("failed to send notification: %w", err)
			}

			fmt.Printf("\n✓ Sent to %d members\n", len(result.Sent))
			if len(result.Failed) > 0 {
				fmt.Printf("\n⚠️  Failed to send %d emails:\n", len(result.Failed))
				for _, f := range result.Failed {
					fmt.Printf("  - %s (%s): %s\n", f.MemberName, f.Email, f.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&n.Title, "title", "", "Subject line")
	cmd.Flags().StringVar(&n.Message, "message", "", "Message body")
	cmd.Flags().StringVar(&n.Type, "type", "", "Notification type, e.g. próba or koncert")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("message")

	return cmd
}

// QuizRankingCmd creates the quizRanking command
func QuizRankingCmd(app *AppContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "quizRanking",
		Short: "Show the quiz leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			ranked, err := services.QuizRanking(app.Ctx, database, limit)
			if err != nil {
				return fmt.Errorf("failed to rank results: %w", err)
			}

			fmt.Println()
			for i, r := range ranked {
				fmt.Printf("%2d. %-30s %d/%d  %s\n", i+1, r.UserName, r.Score, r.TotalQuestions, r.Timestamp.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of results to show (0 for all)")

	return cmd
}
