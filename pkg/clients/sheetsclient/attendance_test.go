package sheetsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAttendanceRows_NewTab(t *testing.T) {
	report := &AttendanceSheet{
		GeneratedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Rows: []AttendanceRow{
			{Name: "Anna Nowak", Attended: 3, Past: 4, Rate: 75},
			{Name: "Jan Kowalski", Attended: 0, Past: 4, Rate: 0},
		},
	}

	rows := buildAttendanceRows(nil, report)

	require.Len(t, rows, 5)
	assert.Equal(t, []any{"Frekwencja, stan na 2026-10-17 09:30"}, rows[0])
	assert.Empty(t, rows[1])
	assert.Equal(t, attendanceHeader, rows[2])
	assert.Equal(t, []any{"Anna Nowak", 3, 4, 75}, rows[3])
	assert.Equal(t, []any{"Jan Kowalski", 0, 4, 0}, rows[4])
}

func TestBuildAttendanceRows_PreservesNotesByMember(t *testing.T) {
	existing := [][]any{
		{"Frekwencja, stan na 2026-09-01 10:00"},
		{},
		{"Członek", "Obecności", "Wydarzenia", "Frekwencja %", "Uwagi"},
		{"Jan Kowalski", "1", "2", "50", "kontuzja"},
		{"Ewa Zielińska", "2", "2", "100", "odeszła"},
	}
	report := &AttendanceSheet{Rows: []AttendanceRow{
		{Name: "Anna Nowak", Attended: 1, Past: 1, Rate: 100},
		{Name: "Jan Kowalski", Attended: 2, Past: 3, Rate: 67},
	}}

	rows := buildAttendanceRows(existing, report)

	require.Len(t, rows, 5)
	assert.Equal(t, []any{"Członek", "Obecności", "Wydarzenia", "Frekwencja %", "Uwagi"}, rows[2])
	assert.Equal(t, []any{"Anna Nowak", 1, 1, 100}, rows[3])
	assert.Equal(t, []any{"Jan Kowalski", 2, 3, 67, "kontuzja"}, rows[4])
}
