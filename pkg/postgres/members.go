package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// GetTeam retrieves the team document
func (d *DB) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	err := d.q.QueryRow(ctx, `
		SELECT id, name, admin_id, created_at FROM teams WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.AdminID, &t.CreatedAt)
	if err != nil {
		return nil, mapError(err, "team "+id)
	}
	return &t, nil
}

// InsertTeam creates the team document
func (d *DB) InsertTeam(ctx context.Context, team *model.Team) error {
	team.CreatedAt = stamp(team.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO teams (id, name, admin_id, created_at) VALUES ($1, $2, $3, $4)
	`, team.ID, team.Name, team.AdminID, team.CreatedAt)
	if err != nil {
		return mapError(err, "team "+team.ID)
	}
	return nil
}

// LockRoster takes a transaction-scoped advisory lock keyed by the team, so
// concurrent first sign-ins see each other's new member
func (d *DB) LockRoster(ctx context.Context) error {
	_, err := d.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('folkbase.roster.' || $1))`, d.team)
	if err != nil {
		return fmt.Errorf("failed to lock roster: %w", err)
	}
	return nil
}

const memberColumns = `id, COALESCE(uid, ''), first_name, last_name, email, phone, role, status,
	photo_url, birth_date, place_of_birth, pesel, id_number, address, height, join_date, created_at`

func scanMember(row pgx.Row) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.UID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Role, &m.Status,
		&m.PhotoURL, &m.BirthDate, &m.PlaceOfBirth, &m.PESEL, &m.IDNumber, &m.Address, &m.Height, &m.JoinDate, &m.CreatedAt)
	return m, err
}

func (d *DB) queryMembers(ctx context.Context, where string, args ...any) ([]model.Member, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE team_id = $1 `+where+`
		ORDER BY last_name, first_name, id
	`, append([]any{d.team}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Member, error) {
		return scanMember(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan member: %w", err)
	}
	return members, nil
}

// ListMembers retrieves all members ordered by last name
func (d *DB) ListMembers(ctx context.Context) ([]model.Member, error) {
	return d.queryMembers(ctx, "")
}

// ListMembersByStatus retrieves members with the given status
func (d *DB) ListMembersByStatus(ctx context.Context, status model.MemberStatus) ([]model.Member, error) {
	return d.queryMembers(ctx, "AND status = $2", string(status))
}

func (d *DB) CountMembers(ctx context.Context) (int, error) {
	var n int
	if err := d.q.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE team_id = $1`, d.team).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}

func (d *DB) GetMember(ctx context.Context, id string) (*model.Member, error) {
	m, err := scanMember(d.q.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM members WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "member "+id)
	}
	return &m, nil
}

func (d *DB) GetMemberByUID(ctx context.Context, uid string) (*model.Member, error) {
	m, err := scanMember(d.q.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM members WHERE team_id = $1 AND uid = $2
	`, d.team, uid))
	if err != nil {
		return nil, mapError(err, "member with uid "+uid)
	}
	return &m, nil
}

// InsertMember inserts a new member, assigning an id if it has none
func (d *DB) InsertMember(ctx context.Context, m *model.Member) error {
	m.ID = newID(m.ID)
	m.CreatedAt = stamp(m.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO members (id, team_id, uid, first_name, last_name, email, phone, role, status,
			photo_url, birth_date, place_of_birth, pesel, id_number, address, height, join_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, m.ID, d.team, nullable(m.UID), m.FirstName, m.LastName, m.Email, m.Phone, m.Role, m.Status,
		m.PhotoURL, m.BirthDate, m.PlaceOfBirth, m.PESEL, m.IDNumber, m.Address, m.Height, m.JoinDate, m.CreatedAt)
	if err != nil {
		return mapError(err, "member "+m.ID)
	}
	return nil
}

// UpdateMember overwrites every mutable field of a member
func (d *DB) UpdateMember(ctx context.Context, m *model.Member) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE members SET uid = $3, first_name = $4, last_name = $5, email = $6, phone = $7, role = $8,
			status = $9, photo_url = $10, birth_date = $11, place_of_birth = $12, pesel = $13,
			id_number = $14, address = $15, height = $16, join_date = $17
		WHERE team_id = $1 AND id = $2
	`, d.team, m.ID, nullable(m.UID), m.FirstName, m.LastName, m.Email, m.Phone, m.Role,
		m.Status, m.PhotoURL, m.BirthDate, m.PlaceOfBirth, m.PESEL,
		m.IDNumber, m.Address, m.Height, m.JoinDate)
	if err != nil {
		return mapError(err, "member "+m.ID)
	}
	return expectRow(tag, "member "+m.ID)
}

func (d *DB) DeleteMember(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM members WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "member "+id)
	}
	return expectRow(tag, "member "+id)
}
