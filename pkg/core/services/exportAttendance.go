package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/internal/config"
	"github.com/folkbase/folkbase/pkg/clients/sheetsclient"
)

// AttendancePublisher defines the sheets operation used to publish the report
type AttendancePublisher interface {
	PublishAttendance(spreadsheetID, tab string, report *sheetsclient.AttendanceSheet) error
}

// ExportAttendanceResult describes what was written to the sheet
type ExportAttendanceResult struct {
	SpreadsheetID string
	Tab           string
	Rows          int
}

// ExportAttendance computes the active members' attendance rates and
// overwrites the configured sheet tab with them
func ExportAttendance(
	ctx context.Context,
	store AttendanceReportStore,
	publisher AttendancePublisher,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
) (*ExportAttendanceResult, error) {
	if cfg.AttendanceSheetID == "" {
		return nil, fmt.Errorf("attendanceSheetID is not configured")
	}

	report, err := AttendanceReport(ctx, store, logger, now)
	if err != nil {
		return nil, err
	}

	sheet := &sheetsclient.AttendanceSheet{GeneratedAt: now, Rows: make([]sheetsclient.AttendanceRow, 0, len(report))}
	for _, row := range report {
		sheet.Rows = append(sheet.Rows, sheetsclient.AttendanceRow{
			Name:     row.Name,
			Attended: row.Attended,
			Past:     row.Past,
			Rate:     row.Rate,
		})
	}

	logger.Info("Publishing attendance",
		zap.String("spreadsheet_id", cfg.AttendanceSheetID),
		zap.String("tab", cfg.AttendanceTab),
		zap.Int("rows", len(sheet.Rows)))

	if err := publisher.PublishAttendance(cfg.AttendanceSheetID, cfg.AttendanceTab, sheet); err != nil {
		return nil, fmt.Errorf("failed to publish attendance: %w", err)
	}

	return &ExportAttendanceResult{
		SpreadsheetID: cfg.AttendanceSheetID,
		Tab:           cfg.AttendanceTab,
		Rows:          len(sheet.Rows),
	}, nil
}
