package memdb

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func (d *DB) ListEvents(ctx context.Context) ([]model.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	events := sortedValues(d.state.events, func(a, b model.Event) int {
		return cmp.Or(b.StartDate.Compare(a.StartDate), cmp.Compare(a.ID, b.ID))
	})
	for i := range events {
		events[i] = cloneEvent(events[i])
	}
	return events, nil
}

func (d *DB) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	event, ok := d.state.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, db.ErrNotFound)
	}
	event = cloneEvent(event)
	return &event, nil
}

func (d *DB) InsertEvent(ctx context.Context, event *model.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	event.ID = newID(event.ID)
	if _, exists := d.state.events[event.ID]; exists {
		return fmt.Errorf("event %s: %w", event.ID, db.ErrConflict)
	}
	event.CreatedAt = d.stamp(event.CreatedAt)
	if event.Attendees == nil {
		event.Attendees = []string{}
	}
	d.state.events[event.ID] = cloneEvent(*event)
	d.emit(db.CollectionEvents, live.KindAdded, event.ID, "")
	return nil
}

func (d *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.state.events[event.ID]
	if !ok {
		return fmt.Errorf("event %s: %w", event.ID, db.ErrNotFound)
	}
	event.CreatedAt = existing.CreatedAt
	d.state.events[event.ID] = cloneEvent(*event)
	d.emit(db.CollectionEvents, live.KindModified, event.ID, "")
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.events, id)
	d.emit(db.CollectionEvents, live.KindRemoved, id, "")
	return nil
}

// modifyEvent applies fn to a stored event in place
func (d *DB) modifyEvent(id string, fn func(e *model.Event)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	event, ok := d.state.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, db.ErrNotFound)
	}
	event = cloneEvent(event)
	fn(&event)
	d.state.events[id] = event
	d.emit(db.CollectionEvents, live.KindModified, id, "")
	return nil
}

func (d *DB) AddAttendee(ctx context.Context, eventID, memberID string) error {
	return d.modifyEvent(eventID, func(e *model.Event) {
		if !e.HasAttendee(memberID) {
			e.Attendees = append(e.Attendees, memberID)
		}
	})
}

func (d *DB) RemoveAttendee(ctx context.Context, eventID, memberID string) error {
	return d.modifyEvent(eventID, func(e *model.Event) {
		e.Attendees = slices.DeleteFunc(e.Attendees, func(id string) bool { return id == memberID })
	})
}

func (d *DB) SetAttendees(ctx context.Context, eventID string, memberIDs []string) error {
	return d.modifyEvent(eventID, func(e *model.Event) {
		e.Attendees = []string{}
		for _, id := range memberIDs {
			if !e.HasAttendee(id) {
				e.Attendees = append(e.Attendees, id)
			}
		}
	})
}

func (d *DB) SetProgram(ctx context.Context, eventID string, program []model.ProgramItem) error {
	return d.modifyEvent(eventID, func(e *model.Event) {
		e.Program = slices.Clone(program)
	})
}

func (d *DB) ListAttendanceRecords(ctx context.Context, eventID string) ([]model.AttendanceRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var records []model.AttendanceRecord
	for _, r := range sortedValues(d.state.attendance, func(a, b model.AttendanceRecord) int {
		return cmp.Compare(a.MemberName, b.MemberName)
	}) {
		if r.EventID == eventID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (d *DB) UpsertAttendanceRecord(ctx context.Context, record *model.AttendanceRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := record.EventID + "/" + record.MemberID
	kind := live.KindAdded
	if existing, ok := d.state.attendance[key]; ok {
		record.ID = existing.ID
		kind = live.KindModified
	}
	record.ID = newID(record.ID)
	record.UpdatedAt = d.now().UTC()
	d.state.attendance[key] = *record
	d.emit(db.CollectionAttendance, kind, record.ID, record.MemberID)
	return nil
}
