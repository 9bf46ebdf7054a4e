package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/internal/config"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// ScheduleEventsStore defines the store operations needed to schedule recurring events
type ScheduleEventsStore interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	InsertEvent(ctx context.Context, event *model.Event) error
}

// ScheduleEventsResult lists the events created and how many occurrences already existed
type ScheduleEventsResult struct {
	Created []model.Event
	Skipped int
}

// ScheduleRecurringEvents expands each recurring event's rrule between from
// and until (inclusive) and creates the occurrences the calendar does not
// have yet. An occurrence exists when an event has the same title and start.
func ScheduleRecurringEvents(
	ctx context.Context,
	store ScheduleEventsStore,
	recurring []config.RecurringEvent,
	logger *zap.Logger,
	from, until time.Time,
) (*ScheduleEventsResult, error) {
	logger.Debug("Starting scheduleRecurringEvents",
		zap.Time("from", from),
		zap.Time("until", until),
		zap.Int("definitions", len(recurring)))

	if until.Before(from) {
		return nil, invalid("until", "must not be before %s", from.Format(model.DateLayout))
	}

	existing, err := store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	scheduled := make(map[string]bool, len(existing))
	for _, e := range existing {
		scheduled[occurrenceKey(e.Title, e.StartDate)] = true
	}

	result := &ScheduleEventsResult{Created: []model.Event{}}
	for i, def := range recurring {
		occurrences, err := expandRecurringEvent(def, from, until)
		if err != nil {
			return nil, fmt.Errorf("failed to expand recurringEvents[%d]: %w", i, err)
		}

		for _, start := range occurrences {
			key := occurrenceKey(def.Title, start)
			if scheduled[key] {
				result.Skipped++
				continue
			}

			event := &model.Event{
				Title:     def.Title,
				Type:      model.EventType(def.Type),
				StartDate: start,
				EndDate:   start.Add(time.Duration(def.DurationMinutes) * time.Minute),
				Location:  def.Location,
				Attendees: []string{},
			}
			err := store.InsertEvent(ctx, event)
			metrics.RecordMutation(db.CollectionEvents, "schedule", err)
			if err != nil {
				return nil, fmt.Errorf("failed to insert %s on %s: %w", def.Title, start.Format(model.DateLayout), err)
			}

			scheduled[key] = true
			result.Created = append(result.Created, *event)
			logger.Debug("Scheduled event",
				zap.String("title", def.Title),
				zap.Time("start", start))
		}
	}

	logger.Info("Recurring events scheduled",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// expandRecurringEvent returns the occurrence start times of def between
// from and until, at def.StartTime in from's location
func expandRecurringEvent(def config.RecurringEvent, from, until time.Time) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(def.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}
	clock, err := time.Parse("15:04", def.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start time: %w", err)
	}

	loc := from.Location()
	dtstart := time.Date(from.Year(), from.Month(), from.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	rule.DTStart(dtstart)

	end := time.Date(until.Year(), until.Month(), until.Day(), 23, 59, 59, 0, loc)
	return rule.Between(dtstart, end, true), nil
}

func occurrenceKey(title string, start time.Time) string {
	return title + "|" + start.UTC().Format(time.RFC3339)
}
