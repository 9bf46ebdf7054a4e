package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/cmd/cli/commands"
	"github.com/folkbase/folkbase/internal/config"
	"github.com/folkbase/folkbase/pkg/utils/logging"
)

var (
	env string
	app = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "folkbase",
		Short: "Folkbase - run a folk dance ensemble",
		Long:  `Serve the ensemble's API and manage members, events, costumes and quizzes from the command line.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
			app.Close()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(
		commands.ServeCmd(app),
		commands.MigrateCmd(app),
		commands.AuthorizeCmd(app),
		commands.ListMembersCmd(app),
		commands.AddMemberCmd(app),
		commands.BirthdaysCmd(app),
		commands.AssignCostumeCmd(app),
		commands.ReturnCostumeCmd(app),
		commands.ReconcileCostumesCmd(app),
		commands.ReconcileBlobsCmd(app),
		commands.ScheduleEventsCmd(app),
		commands.AttendanceReportCmd(app),
		commands.ExportAttendanceCmd(app),
		commands.NotifyCmd(app),
		commands.QuizRankingCmd(app),
		commands.InteractiveCmd(app),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and loads configuration. Database and Google
// clients are opened later by the commands that need them.
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded", zap.String("team", app.Cfg.TeamID))

	app.Secrets, err = config.LoadEnv()
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	return nil
}
