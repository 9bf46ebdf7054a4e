package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

func TestMapError(t *testing.T) {
	t.Run("no rows is not found", func(t *testing.T) {
		err := mapError(pgx.ErrNoRows, "member m1")
		assert.ErrorIs(t, err, db.ErrNotFound)
		assert.Contains(t, err.Error(), "member m1")
	})

	t.Run("unique violation is conflict", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "23505"}, "account a1")
		assert.ErrorIs(t, err, db.ErrConflict)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := mapError(cause, "event e1")
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, db.ErrNotFound)
	})
}

func TestExpectRow(t *testing.T) {
	assert.NoError(t, expectRow(pgconn.NewCommandTag("UPDATE 1"), "costume c1"))
	assert.ErrorIs(t, expectRow(pgconn.NewCommandTag("UPDATE 0"), "costume c1"), db.ErrNotFound)
}

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    live.Change
		wantErr bool
	}{
		{
			name:    "insert",
			payload: `{"table":"events","op":"INSERT","id":"e1","member_id":""}`,
			want:    live.Change{Collection: "events", Kind: live.KindAdded, ID: "e1"},
		},
		{
			name:    "update with member",
			payload: `{"table":"assignments","op":"UPDATE","id":"a1","member_id":"m1"}`,
			want:    live.Change{Collection: "assignments", Kind: live.KindModified, ID: "a1", MemberID: "m1"},
		},
		{
			name:    "delete",
			payload: `{"table":"quiz_results","op":"DELETE","id":"r1","member_id":"u1"}`,
			want:    live.Change{Collection: "quiz_results", Kind: live.KindRemoved, ID: "r1", MemberID: "u1"},
		},
		{name: "truncate is rejected", payload: `{"table":"events","op":"TRUNCATE"}`, wantErr: true},
		{name: "malformed", payload: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNotification(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewIDAndNullable(t *testing.T) {
	assert.Equal(t, "fixed", newID("fixed"))
	assert.Len(t, newID(""), 36)
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("uid"))
	assert.Equal(t, "uid", *nullable("uid"))
}
