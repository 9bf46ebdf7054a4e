package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/services"
)

// ScheduleEventsCmd creates the scheduleEvents command
func ScheduleEventsCmd(app *AppContext) *cobra.Command {
	var fromStr string

	cmd := &cobra.Command{
		Use:   "scheduleEvents <until>",
		Short: "Create the configured recurring events up to a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			until, err := time.ParseInLocation(model.DateLayout, args[0], time.Local)
			if err != nil {
				return fmt.Errorf("invalid until date: %w", err)
			}
			from := time.Now()
			if fromStr != "" {
				if from, err = time.ParseInLocation(model.DateLayout, fromStr, time.Local); err != nil {
					return fmt.Errorf("invalid from date: %w", err)
				}
			}
			if len(app.Cfg.RecurringEvents) == 0 {
				fmt.Println("\n⚠️  No recurringEvents configured")
				return nil
			}

			database, err := app.Database()
			if err != nil {
				return err
			}

			result, err := services.ScheduleRecurringEvents(app.Ctx, database, app.Cfg.RecurringEvents, app.Logger, from, until)
			if err != nil {
				return fmt.Errorf("failed to schedule events: %w", err)
			}

			fmt.Printf("\n✓ Created %d events (%d already scheduled)\n", len(result.Created), result.Skipped)
			for _, e := range result.Created {
				fmt.Printf("  - %s %s @ %s\n", e.StartDate.Format("Mon 2006-01-02 15:04"), e.Title, e.Location)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "Start date (YYYY-MM-DD, defaults to now)")

	return cmd
}

// AttendanceReportCmd creates the attendanceReport command
func AttendanceReportCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "attendanceReport",
		Short: "Show each active member's attendance rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}

			report, err := services.AttendanceReport(app.Ctx, database, app.Logger, time.Now())
			if err != nil {
				return fmt.Errorf("failed to build attendance report: %w", err)
			}

			fmt.Printf("\n%-30s %8s %6s %5s\n", "Member", "Attended", "Past", "Rate")
			for _, row := range report {
				fmt.Printf("%-30s %8d %6d %4d%%\n", row.Name, row.Attended, row.Past, row.Rate)
			}
			return nil
		},
	}
}

// ExportAttendanceCmd creates the exportAttendance command
func ExportAttendanceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exportAttendance",
		Short: "Write the attendance report to the configured Google Sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := app.Database()
			if err != nil {
				return err
			}
			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			result, err := services.ExportAttendance(app.Ctx, database, sheets, app.Cfg, app.Logger, time.Now())
			if err != nil {
				return fmt.Errorf("failed to export attendance: %w", err)
			}
			fmt.Printf("\n✓ Wrote %d rows to tab %q of %s\n", result.Rows, result.Tab, result.SpreadsheetID)
			return nil
		},
	}
}
