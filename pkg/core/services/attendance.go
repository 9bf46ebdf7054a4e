package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/stats"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// WriteOutcome reports whether a mark-off reached the store
type WriteOutcome string

const (
	WriteApplied WriteOutcome = "applied"
	WriteFailed  WriteOutcome = "failed"
)

// PresenceStore defines the store operations for marking attendance on an event
type PresenceStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	AddAttendee(ctx context.Context, eventID, memberID string) error
	RemoveAttendee(ctx context.Context, eventID, memberID string) error
	SetAttendees(ctx context.Context, eventID string, memberIDs []string) error
}

// PresenceResult is the attendee set as persisted after a mark-off
type PresenceResult struct {
	Outcome   WriteOutcome `json:"outcome"`
	Present   bool         `json:"present"`
	Attendees []string     `json:"attendees"`
}

// TogglePresence flips one member's presence on an event. The write goes to
// the store first and the result is read back, so the caller never shows
// state the store does not have. On a failed write the result still carries
// the stored attendee set alongside the error.
func TogglePresence(ctx context.Context, store PresenceStore, logger *zap.Logger, eventID, memberID string) (*PresenceResult, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	present := !event.HasAttendee(memberID)
	if present {
		err = store.AddAttendee(ctx, eventID, memberID)
	} else {
		err = store.RemoveAttendee(ctx, eventID, memberID)
	}
	metrics.RecordMutation(db.CollectionEvents, "presence", err)
	if err != nil {
		logger.Warn("Failed to mark presence",
			zap.String("event_id", eventID),
			zap.String("member_id", memberID),
			zap.Error(err))
		return &PresenceResult{Outcome: WriteFailed, Present: !present, Attendees: event.Attendees},
			fmt.Errorf("failed to mark presence: %w", err)
	}

	return readBackPresence(ctx, store, eventID, memberID)
}

// SetAllPresent marks every given member present, or clears the list when
// they all are already
func SetAllPresent(ctx context.Context, store PresenceStore, logger *zap.Logger, eventID string, memberIDs []string) (*PresenceResult, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	allPresent := len(memberIDs) > 0
	for _, id := range memberIDs {
		if !event.HasAttendee(id) {
			allPresent = false
			break
		}
	}

	next := slices.Clone(memberIDs)
	if allPresent {
		next = []string{}
	}
	err = store.SetAttendees(ctx, eventID, next)
	metrics.RecordMutation(db.CollectionEvents, "presence", err)
	if err != nil {
		return &PresenceResult{Outcome: WriteFailed, Attendees: event.Attendees},
			fmt.Errorf("failed to set attendees: %w", err)
	}

	logger.Info("Attendance list replaced",
		zap.String("event_id", eventID),
		zap.Int("attendees", len(next)))
	return readBackPresence(ctx, store, eventID, "")
}

func readBackPresence(ctx context.Context, store PresenceStore, eventID, memberID string) (*PresenceResult, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read event: %w", err)
	}
	return &PresenceResult{
		Outcome:   WriteApplied,
		Present:   memberID != "" && event.HasAttendee(memberID),
		Attendees: event.Attendees,
	}, nil
}

// SaveAttendance writes the attendance journal for one event. Every entry is
// upserted in a single transaction, so either the whole sheet is saved or none of it.
func SaveAttendance(
	ctx context.Context,
	store db.Transactor,
	logger *zap.Logger,
	eventID string,
	statuses map[string]model.AttendanceStatus,
) (records []model.AttendanceRecord, err error) {
	defer func() { metrics.RecordMutation(db.CollectionAttendance, "save", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	memberIDs := make([]string, 0, len(statuses))
	for id, status := range statuses {
		if !status.IsValid() {
			return nil, invalid("status", "unknown attendance status %q for member %s", status, id)
		}
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	err = store.InTx(ctx, func(tx db.Database) error {
		records = records[:0]

		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to fetch event: %w", err)
		}

		for _, memberID := range memberIDs {
			member, err := tx.GetMember(ctx, memberID)
			if err != nil {
				return fmt.Errorf("failed to fetch member %s: %w", memberID, err)
			}
			record := &model.AttendanceRecord{
				EventID:    eventID,
				MemberID:   memberID,
				MemberName: member.FullName(),
				Status:     statuses[memberID],
				EventDate:  event.StartDate,
			}
			if err := tx.UpsertAttendanceRecord(ctx, record); err != nil {
				return fmt.Errorf("failed to save attendance for %s: %w", memberID, err)
			}
			records = append(records, *record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Attendance saved",
		zap.String("event_id", eventID),
		zap.Int("records", len(records)))
	return records, nil
}

// MemberAttendanceRate is the member's attendance percentage over past events
func MemberAttendanceRate(ctx context.Context, store db.EventStore, memberID string, now time.Time) (int, error) {
	events, err := store.ListEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch events: %w", err)
	}
	return stats.AttendanceRate(memberID, events, now), nil
}

// AttendanceReportStore defines the store operations behind the attendance report
type AttendanceReportStore interface {
	ListMembersByStatus(ctx context.Context, status model.MemberStatus) ([]model.Member, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// AttendanceReport computes the attendance rate of every active member
func AttendanceReport(ctx context.Context, store AttendanceReportStore, logger *zap.Logger, now time.Time) ([]stats.MemberAttendance, error) {
	members, err := store.ListMembersByStatus(ctx, model.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active members: %w", err)
	}
	events, err := store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	report := stats.AttendanceReport(members, events, now)
	logger.Debug("Attendance report computed",
		zap.Int("members", len(members)),
		zap.Int("events", len(events)))
	return report, nil
}

// EventAttendance returns the journal records of one event, or an empty list
func EventAttendance(ctx context.Context, store db.AttendanceStore, eventID string) ([]model.AttendanceRecord, error) {
	records, err := store.ListAttendanceRecords(ctx, eventID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch attendance: %w", err)
	}
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	return records, nil
}
