package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/internal/config"
	"github.com/folkbase/folkbase/pkg/clients/sheetsclient"
	"github.com/folkbase/folkbase/pkg/core/checkin"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/db/memdb"
)

func TestCheckIn_DoubleScanRecordsOnce(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()
	scanners := NewCheckInScanners()

	proba := seedEvent(t, store, "Próba", model.EventRehearsal, today)
	member := seedMember(t, store, "Anna", "Nowak")

	result, err := CheckIn(ctx, store, scanners, logger, member.ID, proba.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StateSuccess, result.State)
	assert.Equal(t, checkin.MessageSuccess, result.Message)

	// The scanner stays on success; a second frame is ignored
	result, err = CheckIn(ctx, store, scanners, logger, member.ID, proba.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StateSuccess, result.State)

	// After an explicit reset the scan is accepted again but the set stays a set
	assert.Equal(t, checkin.StateScanning, ResetCheckIn(scanners, member.ID).State)
	result, err = CheckIn(ctx, store, scanners, logger, member.ID, proba.ID)
	require.NoError(t, err)
	assert.Equal(t, checkin.StateSuccess, result.State)

	event, err := store.GetEvent(ctx, proba.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{member.ID}, event.Attendees)
}

func TestCheckIn_UnknownEvent(t *testing.T) {
	store := newTestDB()
	scanners := NewCheckInScanners()
	member := seedMember(t, store, "Anna", "Nowak")

	result, err := CheckIn(context.Background(), store, scanners, zap.NewNop(), member.ID, "no-such-event")
	require.NoError(t, err)
	assert.Equal(t, checkin.StateError, result.State)
	assert.Equal(t, checkin.MessageUnknownEvent, result.Message)
}

// gatedEventStore holds GetEvent for one event until the gate is closed
type gatedEventStore struct {
	*memdb.DB
	slowID  string
	entered chan struct{}
	gate    chan struct{}
}

func (m *gatedEventStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == m.slowID {
		close(m.entered)
		<-m.gate
	}
	return m.DB.GetEvent(ctx, id)
}

func TestCheckIn_MembersDoNotWaitOnEachOther(t *testing.T) {
	base := newTestDB()
	scanners := NewCheckInScanners()
	logger := zap.NewNop()

	slow := seedEvent(t, base, "Koncert", model.EventConcert, today)
	proba := seedEvent(t, base, "Próba", model.EventRehearsal, today)
	anna := seedMember(t, base, "Anna", "Nowak")
	jan := seedMember(t, base, "Jan", "Kowalski")

	store := &gatedEventStore{DB: base, slowID: slow.ID, entered: make(chan struct{}), gate: make(chan struct{})}

	annaDone := make(chan CheckInResult, 1)
	go func() {
		result, _ := CheckIn(context.Background(), store, scanners, logger, anna.ID, slow.ID)
		annaDone <- result
	}()
	<-store.entered

	janDone := make(chan CheckInResult, 1)
	go func() {
		result, _ := CheckIn(context.Background(), store, scanners, logger, jan.ID, proba.ID)
		janDone <- result
	}()

	select {
	case result := <-janDone:
		assert.Equal(t, checkin.StateSuccess, result.State)
	case <-time.After(2 * time.Second):
		t.Fatal("check-in waited on another member's pending scan")
	}

	close(store.gate)
	assert.Equal(t, checkin.StateSuccess, (<-annaDone).State)
}

func TestCheckIn_RequiresMember(t *testing.T) {
	store := newTestDB()
	_, err := CheckIn(context.Background(), store, NewCheckInScanners(), zap.NewNop(), "", "event")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTogglePresence(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	event := seedEvent(t, store, "Próba", model.EventRehearsal, today)
	member := seedMember(t, store, "Anna", "Nowak")

	result, err := TogglePresence(ctx, store, logger, event.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, WriteApplied, result.Outcome)
	assert.True(t, result.Present)
	assert.Equal(t, []string{member.ID}, result.Attendees)

	result, err = TogglePresence(ctx, store, logger, event.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, result.Present)
	assert.Empty(t, result.Attendees)
}

// failingPresenceStore rejects every attendee write
type failingPresenceStore struct {
	PresenceStore
}

func (f failingPresenceStore) AddAttendee(ctx context.Context, eventID, memberID string) error {
	return errors.New("permission denied")
}

func TestTogglePresence_FailedWriteKeepsStoredState(t *testing.T) {
	store := newTestDB()
	event := seedEvent(t, store, "Próba", model.EventRehearsal, today)
	member := seedMember(t, store, "Anna", "Nowak")

	result, err := TogglePresence(context.Background(), failingPresenceStore{store}, zap.NewNop(), event.ID, member.ID)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, WriteFailed, result.Outcome)
	assert.False(t, result.Present)
	assert.Empty(t, result.Attendees)
}

func TestSetAllPresent(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	event := seedEvent(t, store, "Próba", model.EventRehearsal, today)
	a := seedMember(t, store, "Anna", "Nowak")
	b := seedMember(t, store, "Jan", "Kowalski")

	result, err := SetAllPresent(ctx, store, logger, event.ID, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, result.Attendees)

	// Everyone present already: select-all clears
	result, err = SetAllPresent(ctx, store, logger, event.ID, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Empty(t, result.Attendees)
}

func TestSaveAttendance_UpsertsOneRecordPerMember(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	event := seedEvent(t, store, "Warsztaty", model.EventWorkshop, today)
	a := seedMember(t, store, "Anna", "Nowak")
	b := seedMember(t, store, "Jan", "Kowalski")

	_, err := SaveAttendance(ctx, store, logger, event.ID, map[string]model.AttendanceStatus{
		a.ID: model.AttendancePresent,
		b.ID: model.AttendanceAbsent,
	})
	require.NoError(t, err)

	records, err := SaveAttendance(ctx, store, logger, event.ID, map[string]model.AttendanceStatus{
		b.ID: model.AttendanceExcused,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	stored, err := EventAttendance(ctx, store, event.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	byMember := map[string]model.AttendanceRecord{}
	for _, r := range stored {
		byMember[r.MemberID] = r
	}
	assert.Equal(t, model.AttendancePresent, byMember[a.ID].Status)
	assert.Equal(t, model.AttendanceExcused, byMember[b.ID].Status)
	assert.Equal(t, "Jan Kowalski", byMember[b.ID].MemberName)
}

func TestSaveAttendance_AllOrNothing(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()

	event := seedEvent(t, store, "Warsztaty", model.EventWorkshop, today)
	a := seedMember(t, store, "Anna", "Nowak")

	_, err := SaveAttendance(ctx, store, zap.NewNop(), event.ID, map[string]model.AttendanceStatus{
		a.ID:      model.AttendancePresent,
		"missing": model.AttendancePresent,
	})
	assert.ErrorIs(t, err, db.ErrNotFound)

	stored, err := EventAttendance(ctx, store, event.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSaveAttendance_RejectsUnknownStatus(t *testing.T) {
	store := newTestDB()
	event := seedEvent(t, store, "Warsztaty", model.EventWorkshop, today)

	_, err := SaveAttendance(context.Background(), store, zap.NewNop(), event.ID, map[string]model.AttendanceStatus{"m": "late"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAttendanceReport_ActiveMembersOnly(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	a := seedMember(t, store, "Anna", "Nowak")
	pending := &model.Member{FirstName: "Piotr", LastName: "Zieliński", Role: model.RoleMember, Status: model.StatusPending}
	require.NoError(t, store.InsertMember(ctx, pending))

	past := seedEvent(t, store, "Próba", model.EventRehearsal, today.Add(-48*time.Hour))
	seedEvent(t, store, "Próba", model.EventRehearsal, today.Add(-24*time.Hour))
	seedEvent(t, store, "Koncert", model.EventConcert, today.Add(24*time.Hour))
	require.NoError(t, store.AddAttendee(ctx, past.ID, a.ID))

	report, err := AttendanceReport(ctx, store, logger, today)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "Anna Nowak", report[0].Name)
	assert.Equal(t, 1, report[0].Attended)
	assert.Equal(t, 2, report[0].Past)
	assert.Equal(t, 50, report[0].Rate)

	rate, err := MemberAttendanceRate(ctx, store, a.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 50, rate)
}

// mockAttendancePublisher implements AttendancePublisher for testing
type mockAttendancePublisher struct {
	spreadsheetID string
	tab           string
	report        *sheetsclient.AttendanceSheet
}

func (m *mockAttendancePublisher) PublishAttendance(spreadsheetID, tab string, report *sheetsclient.AttendanceSheet) error {
	m.spreadsheetID = spreadsheetID
	m.tab = tab
	m.report = report
	return nil
}

func TestExportAttendance(t *testing.T) {
	store := newTestDB()
	seedMember(t, store, "Anna", "Nowak")
	publisher := &mockAttendancePublisher{}
	cfg := &config.Config{AttendanceSheetID: "sheet-1", AttendanceTab: "Frekwencja"}

	result, err := ExportAttendance(context.Background(), store, publisher, cfg, zap.NewNop(), today)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "sheet-1", publisher.spreadsheetID)
	assert.Equal(t, "Frekwencja", publisher.tab)
	require.Len(t, publisher.report.Rows, 1)
	assert.Equal(t, "Anna Nowak", publisher.report.Rows[0].Name)
}

func TestExportAttendance_RequiresSheet(t *testing.T) {
	_, err := ExportAttendance(context.Background(), newTestDB(), &mockAttendancePublisher{}, &config.Config{}, zap.NewNop(), today)
	assert.Error(t, err)
}
