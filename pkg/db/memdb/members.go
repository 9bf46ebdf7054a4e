package memdb

import (
	"cmp"
	"context"
	"fmt"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func (d *DB) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	team, ok := d.state.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", id, db.ErrNotFound)
	}
	return &team, nil
}

func (d *DB) InsertTeam(ctx context.Context, team *model.Team) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.state.teams[team.ID]; exists {
		return fmt.Errorf("team %s: %w", team.ID, db.ErrConflict)
	}
	team.CreatedAt = d.stamp(team.CreatedAt)
	d.state.teams[team.ID] = *team
	d.emit(db.CollectionTeams, live.KindAdded, team.ID, "")
	return nil
}

// LockRoster is a no-op: InTx already holds the database lock for the whole transaction
func (d *DB) LockRoster(ctx context.Context) error {
	return nil
}

func compareMembers(a, b model.Member) int {
	return cmp.Or(
		cmp.Compare(a.LastName, b.LastName),
		cmp.Compare(a.FirstName, b.FirstName),
		cmp.Compare(a.ID, b.ID),
	)
}

func (d *DB) ListMembers(ctx context.Context) ([]model.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedValues(d.state.members, compareMembers), nil
}

func (d *DB) ListMembersByStatus(ctx context.Context, status model.MemberStatus) ([]model.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var members []model.Member
	for _, m := range sortedValues(d.state.members, compareMembers) {
		if m.Status == status {
			members = append(members, m)
		}
	}
	return members, nil
}

func (d *DB) CountMembers(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.state.members), nil
}

func (d *DB) GetMember(ctx context.Context, id string) (*model.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	member, ok := d.state.members[id]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", id, db.ErrNotFound)
	}
	return &member, nil
}

func (d *DB) GetMemberByUID(ctx context.Context, uid string) (*model.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if uid != "" {
		for _, m := range d.state.members {
			if m.UID == uid {
				return &m, nil
			}
		}
	}
	return nil, fmt.Errorf("member with uid %s: %w", uid, db.ErrNotFound)
}

func (d *DB) InsertMember(ctx context.Context, member *model.Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	member.ID = newID(member.ID)
	if _, exists := d.state.members[member.ID]; exists {
		return fmt.Errorf("member %s: %w", member.ID, db.ErrConflict)
	}
	member.CreatedAt = d.stamp(member.CreatedAt)
	d.state.members[member.ID] = *member
	d.emit(db.CollectionMembers, live.KindAdded, member.ID, "")
	return nil
}

func (d *DB) UpdateMember(ctx context.Context, member *model.Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.state.members[member.ID]
	if !ok {
		return fmt.Errorf("member %s: %w", member.ID, db.ErrNotFound)
	}
	member.CreatedAt = existing.CreatedAt
	d.state.members[member.ID] = *member
	d.emit(db.CollectionMembers, live.KindModified, member.ID, "")
	return nil
}

func (d *DB) DeleteMember(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.state.members[id]; !ok {
		return fmt.Errorf("member %s: %w", id, db.ErrNotFound)
	}
	delete(d.state.members, id)
	d.emit(db.CollectionMembers, live.KindRemoved, id, "")
	return nil
}
