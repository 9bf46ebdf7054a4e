package sheetsclient

import (
	"fmt"
	"time"
)

// Columns written by the export. Anything to the right of them (notes kept by
// instructors) is carried over per member on re-export.
var attendanceHeader = []any{"Członek", "Obecności", "Wydarzenia", "Frekwencja %"}

// AttendanceRow is one member's line in the exported report
type AttendanceRow struct {
	Name     string
	Attended int
	Past     int
	Rate     int
}

// AttendanceSheet is the complete report written to one tab
type AttendanceSheet struct {
	GeneratedAt time.Time
	Rows        []AttendanceRow
}

// PublishAttendance writes the report to tab, creating it when missing. The
// title row sits above an empty row, the header is on row 3.
func (c *Client) PublishAttendance(spreadsheetID, tab string, report *AttendanceSheet) error {
	exists, err := c.hasTab(spreadsheetID, tab)
	if err != nil {
		return err
	}

	var existing [][]any
	if exists {
		existing, err = c.GetValues(spreadsheetID, tab+"!A1:ZZ")
		if err != nil {
			return fmt.Errorf("failed to read existing tab data: %w", err)
		}
	} else if _, err := c.CreateSheet(spreadsheetID, tab); err != nil {
		return fmt.Errorf("failed to create tab: %w", err)
	}

	return c.overwrite(spreadsheetID, tab, buildAttendanceRows(existing, report))
}

// buildAttendanceRows lays out the tab, keeping extra columns from the
// previous export matched by member name
func buildAttendanceRows(existing [][]any, report *AttendanceSheet) [][]any {
	fixed := len(attendanceHeader)

	var extraHeader []any
	extras := map[string][]any{}
	if len(existing) >= 3 {
		if header := existing[2]; len(header) > fixed {
			extraHeader = header[fixed:]
		}
		for _, row := range existing[3:] {
			if len(row) == 0 {
				continue
			}
			name, ok := row[0].(string)
			if !ok || name == "" || len(row) <= fixed {
				continue
			}
			extras[name] = row[fixed:]
		}
	}

	header := append(append([]any{}, attendanceHeader...), extraHeader...)
	rows := [][]any{
		{fmt.Sprintf("Frekwencja, stan na %s", report.GeneratedAt.Format("2006-01-02 15:04"))},
		{},
		header,
	}

	for _, r := range report.Rows {
		row := []any{r.Name, r.Attended, r.Past, r.Rate}
		if extra, ok := extras[r.Name]; ok {
			row = append(row, extra...)
		}
		rows = append(rows, row)
	}
	return rows
}
