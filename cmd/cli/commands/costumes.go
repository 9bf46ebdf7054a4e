package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/folkbase/folkbase/pkg/core/services"
)

// AssignCostumeCmd creates the assignCostume command
func AssignCostumeCmd(app *AppContext) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "assignCostume <memberID> <costumeID>",
		Short: "Hand a costume from stock to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			assignment, err := services.AssignCostume(app.Ctx, database, app.Logger, args[0], args[1], notes, time.Now())
			if err != nil {
				return fmt.Errorf("failed to assign costume: %w", err)
			}
			fmt.Printf("\n✓ Assigned %s (assignment %s)\n", assignment.CostumeName, assignment.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "Notes stored with the assignment")

	return cmd
}

// ReturnCostumeCmd creates the returnCostume command
func ReturnCostumeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "returnCostume <assignmentID>",
		Short: "Return an assigned costume to stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			if err := services.ReturnCostume(app.Ctx, database, app.Logger, "", args[0]); err != nil {
				return fmt.Errorf("failed to return costume: %w", err)
			}
			fmt.Println("\n✓ Costume returned to stock")
			return nil
		},
	}
}

// ReconcileCostumesCmd creates the reconcileCostumes command
func ReconcileCostumesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcileCostumes",
		Short: "Compare stock counters against outstanding assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			result, err := services.ReconcileCostumes(app.Ctx, database, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to reconcile costumes: %w", err)
			}

			fmt.Printf("\n%-30s %8s %12s %6s\n", "Costume", "In stock", "Outstanding", "Total")
			for _, c := range result.Costumes {
				fmt.Printf("%-30s %8d %12d %6d\n", c.Name, c.InStock, c.Outstanding, c.Total())
			}

			if len(result.Orphaned) > 0 {
				fmt.Printf("\n⚠️  %d assignments reference deleted costumes:\n", len(result.Orphaned))
				for _, a := range result.Orphaned {
					fmt.Printf("  - %s: %s held by %s since %s\n", a.ID, a.CostumeName, a.MemberID, a.AssignedDate)
				}
			}
			return nil
		},
	}
}
