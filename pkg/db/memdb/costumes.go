package memdb

import (
	"cmp"
	"context"
	"fmt"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func (d *DB) ListCostumes(ctx context.Context) ([]model.Costume, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.costumes, func(a, b model.Costume) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	}), nil
}

func (d *DB) CountCostumes(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.state.costumes), nil
}

func (d *DB) GetCostume(ctx context.Context, id string) (*model.Costume, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	costume, ok := d.state.costumes[id]
	if !ok {
		return nil, fmt.Errorf("costume %s: %w", id, db.ErrNotFound)
	}
	return &costume, nil
}

func (d *DB) InsertCostume(ctx context.Context, costume *model.Costume) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	costume.ID = newID(costume.ID)
	if _, exists := d.state.costumes[costume.ID]; exists {
		return fmt.Errorf("costume %s: %w", costume.ID, db.ErrConflict)
	}
	costume.CreatedAt = d.stamp(costume.CreatedAt)
	d.state.costumes[costume.ID] = *costume
	d.emit(db.CollectionCostumes, live.KindAdded, costume.ID, "")
	return nil
}

func (d *DB) UpdateCostume(ctx context.Context, costume *model.Costume) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.state.costumes[costume.ID]
	if !ok {
		return fmt.Errorf("costume %s: %w", costume.ID, db.ErrNotFound)
	}
	costume.CreatedAt = existing.CreatedAt
	d.state.costumes[costume.ID] = *costume
	d.emit(db.CollectionCostumes, live.KindModified, costume.ID, "")
	return nil
}

func (d *DB) DeleteCostume(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.costumes[id]; !ok {
		return fmt.Errorf("costume %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.costumes, id)
	d.emit(db.CollectionCostumes, live.KindRemoved, id, "")
	return nil
}

func (d *DB) AdjustCostumeQuantity(ctx context.Context, id string, delta int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	costume, ok := d.state.costumes[id]
	if !ok {
		return fmt.Errorf("costume %s: %w", id, db.ErrNotFound)
	}
	if costume.Quantity+delta < 0 {
		return fmt.Errorf("costume %s: %w", id, db.ErrOutOfStock)
	}
	costume.Quantity += delta
	d.state.costumes[id] = costume
	d.emit(db.CollectionCostumes, live.KindModified, id, "")
	return nil
}

func compareAssignments(a, b model.CostumeAssignment) int {
	return cmp.Or(cmp.Compare(b.AssignedDate, a.AssignedDate), cmp.Compare(a.ID, b.ID))
}

func (d *DB) ListAssignments(ctx context.Context) ([]model.CostumeAssignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.assignments, compareAssignments), nil
}

func (d *DB) ListAssignmentsForMember(ctx context.Context, memberID string) ([]model.CostumeAssignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var assignments []model.CostumeAssignment
	for _, a := range sortedValues(d.state.assignments, compareAssignments) {
		if a.MemberID == memberID {
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}

func (d *DB) GetAssignment(ctx context.Context, id string) (*model.CostumeAssignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	assignment, ok := d.state.assignments[id]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", id, db.ErrNotFound)
	}
	return &assignment, nil
}

func (d *DB) InsertAssignment(ctx context.Context, assignment *model.CostumeAssignment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	assignment.ID = newID(assignment.ID)
	if _, exists := d.state.assignments[assignment.ID]; exists {
		return fmt.Errorf("assignment %s: %w", assignment.ID, db.ErrConflict)
	}
	d.state.assignments[assignment.ID] = *assignment
	d.emit(db.CollectionAssignments, live.KindAdded, assignment.ID, assignment.MemberID)
	return nil
}

func (d *DB) DeleteAssignment(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	assignment, ok := d.state.assignments[id]
	if !ok {
		return fmt.Errorf("assignment %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.assignments, id)
	d.emit(db.CollectionAssignments, live.KindRemoved, id, assignment.MemberID)
	return nil
}
