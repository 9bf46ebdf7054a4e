package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
)

const costumeColumns = `id, name, type, gender, size_range, quantity, image_url, description, created_at`

func scanCostume(row pgx.Row) (model.Costume, error) {
	var c model.Costume
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Gender, &c.SizeRange, &c.Quantity, &c.ImageURL, &c.Description, &c.CreatedAt)
	return c, err
}

// ListCostumes retrieves the inventory ordered by name
func (d *DB) ListCostumes(ctx context.Context) ([]model.Costume, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+costumeColumns+`
		FROM costumes
		WHERE team_id = $1
		ORDER BY name, id
	`, d.team)
	if err != nil {
		return nil, fmt.Errorf("failed to query costumes: %w", err)
	}
	costumes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Costume, error) {
		return scanCostume(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan costume: %w", err)
	}
	return costumes, nil
}

func (d *DB) CountCostumes(ctx context.Context) (int, error) {
	var n int
	if err := d.q.QueryRow(ctx, `SELECT COUNT(*) FROM costumes WHERE team_id = $1`, d.team).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count costumes: %w", err)
	}
	return n, nil
}

func (d *DB) GetCostume(ctx context.Context, id string) (*model.Costume, error) {
	c, err := scanCostume(d.q.QueryRow(ctx, `
		SELECT `+costumeColumns+` FROM costumes WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "costume "+id)
	}
	return &c, nil
}

func (d *DB) InsertCostume(ctx context.Context, c *model.Costume) error {
	c.ID = newID(c.ID)
	c.CreatedAt = stamp(c.CreatedAt)
	_, err := d.q.Exec(ctx, `
		INSERT INTO costumes (id, team_id, name, type, gender, size_range, quantity, image_url, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, d.team, c.Name, c.Type, c.Gender, c.SizeRange, c.Quantity, c.ImageURL, c.Description, c.CreatedAt)
	if err != nil {
		return mapError(err, "costume "+c.ID)
	}
	return nil
}

func (d *DB) UpdateCostume(ctx context.Context, c *model.Costume) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE costumes SET name = $3, type = $4, gender = $5, size_range = $6, quantity = $7,
			image_url = $8, description = $9
		WHERE team_id = $1 AND id = $2
	`, d.team, c.ID, c.Name, c.Type, c.Gender, c.SizeRange, c.Quantity, c.ImageURL, c.Description)
	if err != nil {
		return mapError(err, "costume "+c.ID)
	}
	return expectRow(tag, "costume "+c.ID)
}

func (d *DB) DeleteCostume(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM costumes WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "costume "+id)
	}
	return expectRow(tag, "costume "+id)
}

// AdjustCostumeQuantity applies delta in a single guarded UPDATE so concurrent
// assignments cannot both take the last unit.
func (d *DB) AdjustCostumeQuantity(ctx context.Context, id string, delta int) error {
	tag, err := d.q.Exec(ctx, `
		UPDATE costumes SET quantity = quantity + $3
		WHERE team_id = $1 AND id = $2 AND quantity + $3 >= 0
	`, d.team, id, delta)
	if err != nil {
		return mapError(err, "costume "+id)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: either the costume is gone or the guard refused
	var exists bool
	err = d.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM costumes WHERE team_id = $1 AND id = $2)
	`, d.team, id).Scan(&exists)
	if err != nil {
		return mapError(err, "costume "+id)
	}
	if !exists {
		return fmt.Errorf("costume %s: %w", id, db.ErrNotFound)
	}
	return fmt.Errorf("costume %s: %w", id, db.ErrOutOfStock)
}

const assignmentColumns = `id, member_id, costume_id, costume_name, to_char(assigned_date, 'YYYY-MM-DD'), notes`

func scanAssignment(row pgx.Row) (model.CostumeAssignment, error) {
	var a model.CostumeAssignment
	err := row.Scan(&a.ID, &a.MemberID, &a.CostumeID, &a.CostumeName, &a.AssignedDate, &a.Notes)
	return a, err
}

func (d *DB) queryAssignments(ctx context.Context, where string, args ...any) ([]model.CostumeAssignment, error) {
	rows, err := d.q.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE team_id = $1 `+where+`
		ORDER BY assigned_date DESC, id
	`, append([]any{d.team}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	assignments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CostumeAssignment, error) {
		return scanAssignment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}
	return assignments, nil
}

func (d *DB) ListAssignments(ctx context.Context) ([]model.CostumeAssignment, error) {
	return d.queryAssignments(ctx, "")
}

func (d *DB) ListAssignmentsForMember(ctx context.Context, memberID string) ([]model.CostumeAssignment, error) {
	return d.queryAssignments(ctx, "AND member_id = $2", memberID)
}

func (d *DB) GetAssignment(ctx context.Context, id string) (*model.CostumeAssignment, error) {
	a, err := scanAssignment(d.q.QueryRow(ctx, `
		SELECT `+assignmentColumns+` FROM assignments WHERE team_id = $1 AND id = $2
	`, d.team, id))
	if err != nil {
		return nil, mapError(err, "assignment "+id)
	}
	return &a, nil
}

func (d *DB) InsertAssignment(ctx context.Context, a *model.CostumeAssignment) error {
	a.ID = newID(a.ID)
	_, err := d.q.Exec(ctx, `
		INSERT INTO assignments (id, team_id, member_id, costume_id, costume_name, assigned_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7)
	`, a.ID, d.team, a.MemberID, a.CostumeID, a.CostumeName, a.AssignedDate, a.Notes)
	if err != nil {
		return mapError(err, "assignment "+a.ID)
	}
	return nil
}

func (d *DB) DeleteAssignment(ctx context.Context, id string) error {
	tag, err := d.q.Exec(ctx, `DELETE FROM assignments WHERE team_id = $1 AND id = $2`, d.team, id)
	if err != nil {
		return mapError(err, "assignment "+id)
	}
	return expectRow(tag, "assignment "+id)
}
