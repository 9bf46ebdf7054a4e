package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// CreateEvent adds an event to the calendar. Attendees start empty.
func CreateEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, event model.Event) (result *model.Event, err error) {
	defer func() { metrics.RecordMutation(db.CollectionEvents, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	event.ID = ""
	event.Title = strings.TrimSpace(event.Title)
	event.Attendees = []string{}
	if event.EndDate.IsZero() {
		event.EndDate = event.StartDate
	}
	if event.Type != model.EventConcert {
		event.Program = nil
	}
	if event.CreatedBy == "" {
		event.CreatedBy = actorMemberID(ctx)
	}
	if err := validateRecord(event); err != nil {
		return nil, err
	}

	if err := store.InsertEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("title", event.Title),
		zap.Time("start", event.StartDate))
	return &event, nil
}

// UpdateEvent changes an event's details. Attendance and the program are
// kept; they change only through their own operations.
func UpdateEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, event model.Event) (result *model.Event, err error) {
	defer func() { metrics.RecordMutation(db.CollectionEvents, "update", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	existing, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	event.Attendees = existing.Attendees
	event.Program = existing.Program
	if event.Type != model.EventConcert {
		event.Program = nil
	}
	event.CreatedBy = existing.CreatedBy
	event.CreatedAt = existing.CreatedAt
	if event.EndDate.IsZero() {
		event.EndDate = event.StartDate
	}
	if err := validateRecord(event); err != nil {
		return nil, err
	}

	if err := store.UpdateEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	logger.Debug("Event updated", zap.String("event_id", event.ID))
	return &event, nil
}

func DeleteEvent(ctx context.Context, store db.EventStore, logger *zap.Logger, eventID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionEvents, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return err
	}
	if err := store.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	logger.Info("Event deleted", zap.String("event_id", eventID))
	return nil
}

// EventQRPayload returns the string encoded in an event's check-in QR code
func EventQRPayload(ctx context.Context, store db.EventStore, eventID string) (string, error) {
	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch event: %w", err)
	}
	return event.ID, nil
}
