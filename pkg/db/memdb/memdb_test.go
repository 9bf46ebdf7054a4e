package memdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func TestInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	database := New(nil)
	require.NoError(t, database.InsertCostume(ctx, &model.Costume{ID: "c1", Name: "Krakowski", Quantity: 2}))

	err := database.InTx(ctx, func(tx db.Database) error {
		if err := tx.AdjustCostumeQuantity(ctx, "c1", -1); err != nil {
			return err
		}
		return errors.New("insert failed")
	})
	require.Error(t, err)

	costume, err := database.GetCostume(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, costume.Quantity)
}

func TestInTx_PublishesAfterCommit(t *testing.T) {
	ctx := context.Background()
	bus := live.NewBus()
	database := New(bus)

	changes, cancel := bus.Subscribe(live.Topic(db.CollectionAssignments, "m1"))
	defer cancel()

	err := database.InTx(ctx, func(tx db.Database) error {
		err := tx.InsertAssignment(ctx, &model.CostumeAssignment{ID: "a1", MemberID: "m1", CostumeID: "c1"})
		assert.Empty(t, changes, "published before commit")
		return err
	})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, live.Change{Collection: db.CollectionAssignments, Kind: live.KindAdded, ID: "a1", MemberID: "m1"}, c)
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}
}

func TestAdjustCostumeQuantity_NeverNegative(t *testing.T) {
	ctx := context.Background()
	database := New(nil)
	require.NoError(t, database.InsertCostume(ctx, &model.Costume{ID: "c1", Name: "Pas", Quantity: 1}))

	require.NoError(t, database.AdjustCostumeQuantity(ctx, "c1", -1))
	err := database.AdjustCostumeQuantity(ctx, "c1", -1)
	assert.ErrorIs(t, err, db.ErrOutOfStock)

	err = database.AdjustCostumeQuantity(ctx, "missing", -1)
	assert.ErrorIs(t, err, db.ErrNotFound)

	costume, err := database.GetCostume(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, costume.Quantity)
}

func TestAddAttendee_IsSetUnion(t *testing.T) {
	ctx := context.Background()
	database := New(nil)
	require.NoError(t, database.InsertEvent(ctx, &model.Event{ID: "e1", Title: "Próba"}))

	require.NoError(t, database.AddAttendee(ctx, "e1", "m1"))
	require.NoError(t, database.AddAttendee(ctx, "e1", "m1"))

	event, err := database.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, event.Attendees)

	assert.ErrorIs(t, database.AddAttendee(ctx, "missing", "m1"), db.ErrNotFound)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	database := New(nil)
	require.NoError(t, database.InsertPoll(ctx, &model.Poll{ID: "p1", Question: "Kiedy?", Options: []string{"pon", "wt"}, IsActive: true}))

	poll, err := database.GetPoll(ctx, "p1")
	require.NoError(t, err)
	poll.Votes["intruder"] = 1
	poll.Options[0] = "changed"

	stored, err := database.GetPoll(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, stored.Votes)
	assert.Equal(t, "pon", stored.Options[0])
}

func TestUpsertAttendanceRecord_OnePerEventMember(t *testing.T) {
	ctx := context.Background()
	database := New(nil)

	first := &model.AttendanceRecord{EventID: "e1", MemberID: "m1", MemberName: "Anna", Status: model.AttendanceAbsent}
	require.NoError(t, database.UpsertAttendanceRecord(ctx, first))
	second := &model.AttendanceRecord{EventID: "e1", MemberID: "m1", MemberName: "Anna", Status: model.AttendancePresent}
	require.NoError(t, database.UpsertAttendanceRecord(ctx, second))

	records, err := database.ListAttendanceRecords(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.AttendancePresent, records[0].Status)
	assert.Equal(t, first.ID, records[0].ID)
}

func TestListMembers_SortedByLastName(t *testing.T) {
	ctx := context.Background()
	database := New(nil)
	require.NoError(t, database.InsertMember(ctx, &model.Member{FirstName: "Jan", LastName: "Zieliński", Status: model.StatusActive}))
	require.NoError(t, database.InsertMember(ctx, &model.Member{FirstName: "Anna", LastName: "Kowalska", Status: model.StatusPending}))

	members, err := database.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Kowalska", members[0].LastName)
	assert.NotEmpty(t, members[0].ID)

	active, err := database.ListMembersByStatus(ctx, model.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Jan", active[0].FirstName)
}
