package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folkbase/folkbase/pkg/core/services"
	"github.com/folkbase/folkbase/pkg/utils"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			applied, err := database.RunMigrations(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if len(applied) == 0 {
				fmt.Println("\n✓ Database is up to date")
				return nil
			}
			fmt.Printf("\n✓ Applied %d migrations:\n", len(applied))
			for _, name := range applied {
				fmt.Printf("  - %s\n", name)
			}
			return nil
		},
	}
}

// AuthorizeCmd creates the authorize command
func AuthorizeCmd(app *AppContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize Google access for email, sheets and storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := utils.DeleteTokenFile(app.Env); err != nil {
					return fmt.Errorf("failed to delete stored token: %w", err)
				}
				utils.ClearToken()
				app.token = nil
			}

			if _, _, err := app.googleToken(); err != nil {
				return err
			}
			fmt.Println("\n✓ Google access authorized")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Discard the stored token and authorize again")

	return cmd
}

// ReconcileBlobsCmd creates the reconcileBlobs command
func ReconcileBlobsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcileBlobs",
		Short: "Retry file deletes that failed after their record was removed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}
			storage, err := app.StorageClient()
			if err != nil {
				return err
			}

			result, err := services.ReconcileBlobs(app.Ctx, database, storage, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to reconcile blobs: %w", err)
			}

			fmt.Printf("\n✓ Deleted %d files\n", len(result.Deleted))
			for _, path := range result.Deleted {
				fmt.Printf("  - %s\n", path)
			}
			if len(result.Remaining) > 0 {
				fmt.Printf("\n⚠️  %d files could not be deleted:\n", len(result.Remaining))
				for _, ts := range result.Remaining {
					fmt.Printf("  - %s (attempts: %d, last error: %s)\n", ts.Path, ts.Attempts, ts.LastError)
				}
			}
			return nil
		},
	}
}
