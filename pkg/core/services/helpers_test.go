package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/folkbase/folkbase/pkg/authctx"
	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db/memdb"
	"github.com/folkbase/folkbase/pkg/live"
)

func init() {
	blobRetryDelay = time.Millisecond
}

func newTestDB() *memdb.DB {
	return memdb.New(live.NewBus())
}

func asRole(role model.Role, memberID string) context.Context {
	return authctx.WithUser(context.Background(), authctx.Principal{UID: "uid-" + memberID, MemberID: memberID, Role: role})
}

func seedMember(t *testing.T, store *memdb.DB, first, last string) model.Member {
	t.Helper()
	m := &model.Member{
		FirstName: first,
		LastName:  last,
		Email:     first + "@example.com",
		Role:      model.RoleMember,
		Status:    model.StatusActive,
	}
	require.NoError(t, store.InsertMember(context.Background(), m))
	return *m
}

func seedCostume(t *testing.T, store *memdb.DB, name string, quantity int) model.Costume {
	t.Helper()
	c := &model.Costume{
		Name:     name,
		Type:     model.CostumeSet,
		Gender:   model.GenderUnisex,
		Quantity: quantity,
	}
	require.NoError(t, store.InsertCostume(context.Background(), c))
	return *c
}

func seedEvent(t *testing.T, store *memdb.DB, title string, eventType model.EventType, start time.Time) model.Event {
	t.Helper()
	e := &model.Event{
		Title:     title,
		Type:      eventType,
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
		Attendees: []string{},
	}
	require.NoError(t, store.InsertEvent(context.Background(), e))
	return *e
}

// mockGmailClient implements GmailClient for testing
type mockGmailClient struct {
	sentEmails []string
	failFor    map[string]error
}

func (m *mockGmailClient) SendEmail(to, subject, body string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sentEmails = append(m.sentEmails, to)
	return nil
}
