package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/blob/memblob"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
)

var today = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func quantityOf(t *testing.T, store db.CostumeStore, id string) int {
	t.Helper()
	c, err := store.GetCostume(context.Background(), id)
	require.NoError(t, err)
	return c.Quantity
}

func TestAssignAndReturnCostume_StockFollowsAssignments(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	krakowski := seedCostume(t, store, "Strój krakowski", 5)
	anna := seedMember(t, store, "Anna", "Nowak")
	jan := seedMember(t, store, "Jan", "Kowalski")

	first, err := AssignCostume(ctx, store, logger, anna.ID, krakowski.ID, "pas do poprawki", today)
	require.NoError(t, err)
	assert.Equal(t, 4, quantityOf(t, store, krakowski.ID))
	assert.Equal(t, "Strój krakowski", first.CostumeName)
	assert.Equal(t, "2025-03-10", first.AssignedDate)
	assert.Equal(t, "pas do poprawki", first.Notes)

	_, err = AssignCostume(ctx, store, logger, jan.ID, krakowski.ID, "", today)
	require.NoError(t, err)
	assert.Equal(t, 3, quantityOf(t, store, krakowski.ID))

	require.NoError(t, ReturnCostume(ctx, store, logger, anna.ID, first.ID))
	assert.Equal(t, 4, quantityOf(t, store, krakowski.ID))

	assignments, err := store.ListAssignmentsForMember(ctx, anna.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestAssignCostume_OutOfStock(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	costume := seedCostume(t, store, "Kierpce", 1)
	member := seedMember(t, store, "Ola", "Wiśniewska")

	_, err := AssignCostume(ctx, store, logger, member.ID, costume.ID, "", today)
	require.NoError(t, err)

	_, err = AssignCostume(ctx, store, logger, member.ID, costume.ID, "", today)
	assert.ErrorIs(t, err, db.ErrOutOfStock)

	assert.Equal(t, 0, quantityOf(t, store, costume.ID))
	assignments, err := store.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestAssignCostume_ConcurrentAssignmentsNeverOversell(t *testing.T) {
	store := newTestDB()
	logger := zap.NewNop()

	costume := seedCostume(t, store, "Gorset", 3)
	member := seedMember(t, store, "Ola", "Wiśniewska")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := AssignCostume(context.Background(), store, logger, member.ID, costume.ID, "", today); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, quantityOf(t, store, costume.ID))
}

func TestAssignCostume_UnknownMemberWritesNothing(t *testing.T) {
	store := newTestDB()
	costume := seedCostume(t, store, "Kaftan", 2)

	_, err := AssignCostume(context.Background(), store, zap.NewNop(), "missing", costume.ID, "", today)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, 2, quantityOf(t, store, costume.ID))
}

func TestReturnCostume_SecondReturnIsNotCounted(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	costume := seedCostume(t, store, "Spódnica", 2)
	member := seedMember(t, store, "Ola", "Wiśniewska")

	a, err := AssignCostume(ctx, store, logger, member.ID, costume.ID, "", today)
	require.NoError(t, err)

	require.NoError(t, ReturnCostume(ctx, store, logger, member.ID, a.ID))
	err = ReturnCostume(ctx, store, logger, member.ID, a.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, 2, quantityOf(t, store, costume.ID))
}

func TestReturnCostume_OtherMembersAssignment(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	costume := seedCostume(t, store, "Spódnica", 2)
	anna := seedMember(t, store, "Anna", "Nowak")
	jan := seedMember(t, store, "Jan", "Kowalski")

	a, err := AssignCostume(ctx, store, logger, anna.ID, costume.ID, "", today)
	require.NoError(t, err)

	err = ReturnCostume(ctx, store, logger, jan.ID, a.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.Equal(t, 1, quantityOf(t, store, costume.ID))
}

func TestAvailableCostumes(t *testing.T) {
	store := newTestDB()
	seedCostume(t, store, "Pas", 0)
	seedCostume(t, store, "Chusta", 2)
	seedCostume(t, store, "Buty", 1)

	available, err := AvailableCostumes(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "Buty", available[0].Name)
	assert.Equal(t, "Chusta", available[1].Name)
}

func TestReconcileCostumes(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	costume := seedCostume(t, store, "Strój krakowski", 5)
	gone := seedCostume(t, store, "Stary kontusz", 1)
	member := seedMember(t, store, "Anna", "Nowak")

	_, err := AssignCostume(ctx, store, logger, member.ID, costume.ID, "", today)
	require.NoError(t, err)
	_, err = AssignCostume(ctx, store, logger, member.ID, gone.ID, "", today)
	require.NoError(t, err)
	require.NoError(t, store.DeleteCostume(ctx, gone.ID))

	result, err := ReconcileCostumes(ctx, store, logger)
	require.NoError(t, err)
	require.Len(t, result.Costumes, 1)
	assert.Equal(t, 4, result.Costumes[0].InStock)
	assert.Equal(t, 1, result.Costumes[0].Outstanding)
	assert.Equal(t, 5, result.Costumes[0].Total())
	require.Len(t, result.Orphaned, 1)
	assert.Equal(t, "Stary kontusz", result.Orphaned[0].CostumeName)
}

func TestCreateCostume_ValidationAndRoles(t *testing.T) {
	store := newTestDB()
	logger := zap.NewNop()

	_, err := CreateCostume(asRole(model.RoleMember, "m1"), store, logger, model.Costume{Name: "Pas", Type: model.CostumeAccessory, Gender: model.GenderMale})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = CreateCostume(asRole(model.RoleInstructor, "m2"), store, logger, model.Costume{Name: "Pas", Type: "hat", Gender: model.GenderMale})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Type", verr.Field)

	c, err := CreateCostume(asRole(model.RoleInstructor, "m2"), store, logger, model.Costume{Name: " Pas ", Type: model.CostumeAccessory, Gender: model.GenderMale, Quantity: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Pas", c.Name)
}

func TestUploadCostumeImage(t *testing.T) {
	store := newTestDB()
	blobs := memblob.New("http://blobs.test")
	costume := seedCostume(t, store, "Gorset", 1)

	updated, err := UploadCostumeImage(context.Background(), store, blobs, "folkbase", zap.NewNop(),
		costume.ID, "gorset.jpg", "image/jpeg", strings.NewReader("jpeg"), 4, today)
	require.NoError(t, err)

	path := "teams/folkbase/costumes/" + "1741629600000_gorset.jpg"
	assert.True(t, blobs.Has(path))
	assert.Equal(t, blobs.URL(path), updated.ImageURL)
	stored, err := store.GetCostume(context.Background(), costume.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, stored.ImageURL)
}
