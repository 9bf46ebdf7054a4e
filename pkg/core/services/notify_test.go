package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
)

func TestNotifyActiveMembers(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()

	anna := seedMember(t, store, "Anna", "Nowak")
	jan := seedMember(t, store, "Jan", "Kowalski")
	noEmail := &model.Member{FirstName: "Ola", LastName: "Maj", Role: model.RoleMember, Status: model.StatusActive}
	require.NoError(t, store.InsertMember(ctx, noEmail))
	pending := &model.Member{FirstName: "Piotr", LastName: "Zieliński", Email: "piotr@example.com", Role: model.RoleMember, Status: model.StatusPending}
	require.NoError(t, store.InsertMember(ctx, pending))

	gmail := &mockGmailClient{failFor: map[string]error{jan.Email: errors.New("quota exceeded")}}
	result, err := NotifyActiveMembers(ctx, store, gmail, zap.NewNop(), "Zespół", Notification{
		Type:    "próba",
		Title:   "Zmiana sali",
		Message: "Próba w sali nr 2",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{anna.Email}, gmail.sentEmails)
	require.Len(t, result.Sent, 1)
	assert.Equal(t, anna.ID, result.Sent[0].MemberID)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Jan Kowalski", result.Failed[0].MemberName)
	assert.Equal(t, "quota exceeded", result.Failed[0].Error)
}

func TestNotifyActiveMembers_AllFail(t *testing.T) {
	store := newTestDB()
	anna := seedMember(t, store, "Anna", "Nowak")

	gmail := &mockGmailClient{failFor: map[string]error{anna.Email: errors.New("smtp down")}}
	_, err := NotifyActiveMembers(context.Background(), store, gmail, zap.NewNop(), "Zespół", Notification{Title: "a", Message: "b"})
	assert.Error(t, err)
}

func TestNotifyActiveMembers_NoRecipients(t *testing.T) {
	result, err := NotifyActiveMembers(context.Background(), newTestDB(), &mockGmailClient{}, zap.NewNop(), "Zespół", Notification{Title: "a", Message: "b"})
	require.NoError(t, err)
	assert.Empty(t, result.Sent)
	assert.Empty(t, result.Failed)
}

func TestNotifyActiveMembers_Validation(t *testing.T) {
	_, err := NotifyActiveMembers(context.Background(), newTestDB(), &mockGmailClient{}, zap.NewNop(), "Zespół", Notification{Title: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title", verr.Field)

	_, err = NotifyActiveMembers(asRole(model.RoleMember, "m1"), newTestDB(), &mockGmailClient{}, zap.NewNop(), "Zespół", Notification{Title: "a", Message: "b"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDashboard(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	seedCostume(t, store, "Gorset", 2)
	birthday := &model.Member{FirstName: "Zofia", LastName: "Maj", BirthDate: "1990-03-12", Role: model.RoleMember, Status: model.StatusActive}
	require.NoError(t, store.InsertMember(ctx, birthday))
	seedMember(t, store, "Anna", "Nowak")

	seedEvent(t, store, "Wczoraj", model.EventRehearsal, now.AddDate(0, 0, -1))
	// Earlier today still counts as upcoming
	seedEvent(t, store, "Rano", model.EventRehearsal, now.Add(-6*time.Hour))
	for i := 1; i <= 5; i++ {
		seedEvent(t, store, "Próba", model.EventRehearsal, now.AddDate(0, 0, i))
	}

	summary, err := Dashboard(ctx, store, now)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Members)
	assert.Equal(t, 1, summary.Costumes)
	assert.Equal(t, 0, summary.Repertoire)
	require.NotNil(t, summary.NextEvent)
	assert.Equal(t, "Rano", summary.NextEvent.Title)
	assert.Len(t, summary.FollowingEvents, 3)

	require.Len(t, summary.Birthdays, 1)
	assert.Equal(t, "Zofia Maj", summary.Birthdays[0].Member.FullName())
	assert.Equal(t, 2, summary.Birthdays[0].DaysLeft)
}

func TestDashboard_Empty(t *testing.T) {
	summary, err := Dashboard(context.Background(), newTestDB(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, summary.NextEvent)
	assert.Empty(t, summary.FollowingEvents)
	assert.NotNil(t, summary.Birthdays)
}
