package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/blob/memblob"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/db/memdb"
)

var testTeam = TeamInfo{ID: "folkbase", Name: "Zespół Pieśni i Tańca"}

func TestEnsureProfile_FirstMemberBecomesAdmin(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	first, err := EnsureProfile(ctx, store, testTeam, logger, "uid-1", "kierownik@example.com")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "Administrator", first.Member.FirstName)
	assert.Equal(t, model.RoleAdmin, first.Member.Role)
	assert.Equal(t, model.StatusActive, first.Member.Status)

	team, err := store.GetTeam(ctx, testTeam.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Member.ID, team.AdminID)
	assert.Equal(t, testTeam.Name, team.Name)

	second, err := EnsureProfile(ctx, store, testTeam, logger, "uid-2", "ola.tancerka@example.com")
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.Equal(t, "ola.tancerka", second.Member.FirstName)
	assert.Equal(t, model.RoleMember, second.Member.Role)
	assert.Equal(t, model.StatusPending, second.Member.Status)

	again, err := EnsureProfile(ctx, store, testTeam, logger, "uid-2", "ola.tancerka@example.com")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, second.Member.ID, again.Member.ID)

	count, err := store.CountMembers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// rosterCallsStore records the roster calls EnsureProfile makes inside its transaction
type rosterCallsStore struct {
	*memdb.DB
	calls []string
}

func (m *rosterCallsStore) InTx(ctx context.Context, fn func(tx db.Database) error) error {
	return m.DB.InTx(ctx, func(tx db.Database) error {
		return fn(&rosterCallsTx{Database: tx, store: m})
	})
}

type rosterCallsTx struct {
	db.Database
	store *rosterCallsStore
}

func (m *rosterCallsTx) LockRoster(ctx context.Context) error {
	m.store.calls = append(m.store.calls, "lock")
	return m.Database.LockRoster(ctx)
}

func (m *rosterCallsTx) CountMembers(ctx context.Context) (int, error) {
	m.store.calls = append(m.store.calls, "count")
	return m.Database.CountMembers(ctx)
}

func TestEnsureProfile_LocksRosterBeforeCounting(t *testing.T) {
	store := &rosterCallsStore{DB: newTestDB()}

	_, err := EnsureProfile(context.Background(), store, testTeam, zap.NewNop(), "uid-1", "kierownik@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "count"}, store.calls)
}

func TestEnsureProfile_ConcurrentFirstSignInsMakeOneAdmin(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := EnsureProfile(ctx, store, testTeam, zap.NewNop(), fmt.Sprintf("uid-%d", i), fmt.Sprintf("tancerz%d@example.com", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	members, err := store.ListMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 8)
	admins := 0
	for _, m := range members {
		if m.Role == model.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestEnsureProfile_AnonymousUserGetsPlaceholderName(t *testing.T) {
	store := newTestDB()
	seedMember(t, store, "Anna", "Nowak")

	result, err := EnsureProfile(context.Background(), store, testTeam, zap.NewNop(), "uid-anon", "")
	require.NoError(t, err)
	assert.Equal(t, "Nowy członek", result.Member.FirstName)
	assert.Equal(t, model.StatusPending, result.Member.Status)
}

func TestAddMember(t *testing.T) {
	store := newTestDB()
	logger := zap.NewNop()

	m, err := AddMember(asRole(model.RoleAdmin, "admin"), store, logger, model.Member{
		ID:        "ignored",
		UID:       "ignored",
		FirstName: " Jan ",
		LastName:  "Kowalski",
		Email:     "jan@example.com",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", m.ID)
	assert.Empty(t, m.UID)
	assert.Equal(t, "Jan", m.FirstName)
	assert.Equal(t, model.RoleMember, m.Role)
	assert.Equal(t, model.StatusActive, m.Status)

	_, err = AddMember(asRole(model.RoleAdmin, "admin"), store, logger, model.Member{FirstName: "Jan", LastName: "Kowalski", PESEL: "123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "PESEL", verr.Field)

	_, err = AddMember(asRole(model.RoleChoreographer, "c1"), store, logger, model.Member{FirstName: "Jan", LastName: "Kowalski"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateMember_SelfOrManager(t *testing.T) {
	store := newTestDB()
	logger := zap.NewNop()
	anna := seedMember(t, store, "Anna", "Nowak")
	require.NoError(t, store.UpdateMember(context.Background(), &model.Member{
		ID: anna.ID, UID: "uid-anna", FirstName: "Anna", LastName: "Nowak", Role: model.RoleMember, Status: model.StatusActive,
	}))

	edit := model.Member{ID: anna.ID, FirstName: "Anna", LastName: "Nowak-Kowalska", Role: model.RoleMember, Status: model.StatusActive}

	_, err := UpdateMember(asRole(model.RoleMember, "someone-else"), store, logger, edit)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := UpdateMember(asRole(model.RoleMember, anna.ID), store, logger, edit)
	require.NoError(t, err)
	assert.Equal(t, "Nowak-Kowalska", updated.LastName)
	assert.Equal(t, "uid-anna", updated.UID)
}

func TestLinkMember(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	anna := seedMember(t, store, "Anna", "Nowak")
	jan := seedMember(t, store, "Jan", "Kowalski")

	linked, err := LinkMember(ctx, store, logger, anna.ID, "uid-anna")
	require.NoError(t, err)
	assert.Equal(t, "uid-anna", linked.UID)

	// Relinking the same pair is a no-op
	_, err = LinkMember(ctx, store, logger, anna.ID, "uid-anna")
	require.NoError(t, err)

	_, err = LinkMember(ctx, store, logger, jan.ID, "uid-anna")
	assert.ErrorIs(t, err, db.ErrConflict)

	byUID, err := store.GetMemberByUID(ctx, "uid-anna")
	require.NoError(t, err)
	assert.Equal(t, anna.ID, byUID.ID)
}

func TestDeleteMember_ReturnsHeldCostumes(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	costume := seedCostume(t, store, "Strój łowicki", 2)
	gone := seedCostume(t, store, "Kamizelka", 1)
	anna := seedMember(t, store, "Anna", "Nowak")

	_, err := AssignCostume(ctx, store, logger, anna.ID, costume.ID, "", today)
	require.NoError(t, err)
	_, err = AssignCostume(ctx, store, logger, anna.ID, gone.ID, "", today)
	require.NoError(t, err)
	require.NoError(t, store.DeleteCostume(ctx, gone.ID))
	assert.Equal(t, 1, quantityOf(t, store, costume.ID))

	result, err := DeleteMember(ctx, store, logger, anna.ID)
	require.NoError(t, err)
	assert.Len(t, result.ReturnedAssignments, 2)
	assert.Equal(t, 2, quantityOf(t, store, costume.ID))

	_, err = store.GetMember(ctx, anna.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	assignments, err := store.ListAssignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestDeleteMember_Unknown(t *testing.T) {
	_, err := DeleteMember(context.Background(), newTestDB(), zap.NewNop(), "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUploadAvatar(t *testing.T) {
	store := newTestDB()
	blobs := memblob.New("http://blobs.test")
	anna := seedMember(t, store, "Anna", "Nowak")

	_, err := UploadAvatar(asRole(model.RoleMember, "other"), store, blobs, "folkbase", zap.NewNop(),
		anna.ID, "image/png", strings.NewReader("png"), 3, today)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := UploadAvatar(asRole(model.RoleMember, anna.ID), store, blobs, "folkbase", zap.NewNop(),
		anna.ID, "image/png", strings.NewReader("png"), 3, today)
	require.NoError(t, err)

	path := "teams/folkbase/avatars/" + anna.ID + "_1741629600000"
	assert.True(t, blobs.Has(path))
	assert.Equal(t, blobs.URL(path), updated.PhotoURL)
}
