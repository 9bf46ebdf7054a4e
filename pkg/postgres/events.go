package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/folkbase/folkbase/pkg/core/model"
)

const eventColumns = `id, title, type, start_date, end_date, location, description, attendees, program, created_by, created_at`

func scanEvent(row pgx.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Type, &e.StartDate, &e.EndDate, &e.Location, &e.Description,
		&e.Attendees, &e.Program, &e.CreatedBy, &e.CreatedAt)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return e, err
}

// ListEvents retrieves all events, newest first
func (d *DB) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE team_id = $1
		ORDER BY start_date DESC, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Event, error) {
		return scanEvent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return events, nil
}

func (d *DB) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(d.q.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "event "+id)
	}
	return &e, nil
}

func programOrEmpty(program []model.ProgramItem) []model.ProgramItem {
	if program == nil {
		return []model.ProgramItem{}
	}
	return program
}

func attendeesOrEmpty(attendees []string) []string {
	if attendees == nil {
		return []string{}
	}
	return attendees
}

func (d *DB) InsertEvent(ctx context.Context, e *model.Event) error {
	e.ID = newID(e.ID)
	e.CreatedAt = stamp(e.CreatedAt)
	e.Attendees = attendeesOrEmpty(e.Attendees)
	_, err := d.q.Exec(ctx, `
		INSERT INTO events (id, team_id, title, type, start_date, end_date, location, description,
			attendees, program, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, d.team, e.Title, e.Type, e.StartDate, e.EndDate, e.Location, e.Description,
		e.Attendees, programOrEmpty(e.Program), e.CreatedBy, e.CreatedAt)
	if err != nil {
		return mapError(err, "event "+e.ID)
	}
	return nil
}

func (d *DB) UpdateEvent(ctx context.Context, e *model.Event) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE events SET title = $3, type = $4, start_date = $5, end_date = $6, location = $7,
			description = $8, attendees = $9, program = $10
		WHERE team_id = $1 AND id = $2
	`, d.team, e.ID, e.Title, e.Type, e.StartDate, e.EndDate, e.Location,
		e.Description, attendeesOrEmpty(e.Attendees), programOrEmpty(e.Program))
	if err != nil {
		return mapError(err, "event "+e.ID)
	}
	return expectRow(tag, "event "+e.ID)
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM events WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "event "+id)
	}
	return expectRow(tag, "event "+id)
}

// AddAttendee appends the member only if not already present
func (d *DB) AddAttendee(ctx context.Context, eventID, memberID string) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE events
		SET attendees = CASE WHEN $3 = ANY(attendees) THEN attendees ELSE array_append(attendees, $3) END
		WHERE team_id = $1 AND id = $2
	`, d.team, eventID, memberID)
	if err != nil {
		return mapError(err, "event "+eventID)
	}
	return expectRow(tag, "event "+eventID)
}

func (d *DB) RemoveAttendee(ctx context.Context, eventID, memberID string) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE events SET attendees = array_remove(attendees, $3) WHERE team_id = $1 AND id = $2
	`, d.team, eventID, memberID)
	if err != nil {
		return mapError(err, "event "+eventID)
	}
	return expectRow(tag, "event "+eventID)
}

// SetAttendees replaces the attendee set, dropping duplicates
func (d *DB) SetAttendees(ctx context.Context, eventID string, memberIDs []string) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE events
		SET attendees = COALESCE((SELECT array_agg(DISTINCT m) FROM unnest($3::text[]) AS m), '{}')
		WHERE team_id = $1 AND id = $2
	`, d.team, eventID, attendeesOrEmpty(memberIDs))
	if err != nil {
		return mapError(err, "event "+eventID)
	}
	return expectRow(tag, "event "+eventID)
}

func (d *DB) SetProgram(ctx context.Context, eventID string, program []model.ProgramItem) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE events SET program = $3 WHERE team_id = $1 AND id = $2
	`, d.team, eventID, programOrEmpty(program))
	if err != nil {
		return mapError(err, "event "+eventID)
	}
	return expectRow(tag, "event "+eventID)
}

func (d *DB) ListAttendanceRecords(ctx context.Context, eventID string) ([]model.AttendanceRecord, error) {
	rows, err := d.q.Query(ctx, `
		SELECT id, event_id, member_id, member_name, status, event_date, updated_at
		FROM attendance_records
		WHERE team_id = $1 AND event_id = $2
		ORDER BY member_name, id
	`, d.team, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.AttendanceRecord, error) {
		var r model.AttendanceRecord
		err := row.Scan(&r.ID, &r.EventID, &r.MemberID, &r.MemberName, &r.Status, &r.EventDate, &r.UpdatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendance record: %w", err)
	}
	return records, nil
}

// UpsertAttendanceRecord keeps one record per (event, member); the original id survives updates
func (d *DB) UpsertAttendanceRecord(ctx context.Context, r *model.AttendanceRecord) error {
	err := d.q.QueryRow(ctx, `
		INSERT INTO attendance_records (id, team_id, event_id, member_id, member_name, status, event_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (event_id, member_id) DO UPDATE
		SET member_name = EXCLUDED.member_name, status = EXCLUDED.status,
			event_date = EXCLUDED.event_date, updated_at = NOW()
		RETURNING id, updated_at
	`, newID(r.ID), d.team, r.EventID, r.MemberID, r.MemberName, r.Status, r.EventDate).Scan(&r.ID, &r.UpdatedAt)
	if err != nil {
		return mapError(err, "attendance record")
	}
	return nil
}
