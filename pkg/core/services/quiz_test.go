package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/quiz"
	"github.com/folkbase/folkbase/pkg/db/memdb"
)

func seedQuestions(t *testing.T, store *memdb.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := CreateQuestion(context.Background(), store, zap.NewNop(), model.Question{
			Text:               fmt.Sprintf("Pytanie %d", i),
			Options:            []string{"a", "b", "c", "d"},
			CorrectOptionIndex: 0,
			Category:           "Tańce",
		})
		require.NoError(t, err)
	}
}

func TestCreateQuestion_RequiresFourOptions(t *testing.T) {
	store := newTestDB()
	_, err := CreateQuestion(context.Background(), store, zap.NewNop(), model.Question{
		Text:    "Skąd pochodzi krakowiak?",
		Options: []string{"Kraków", "Łowicz"},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Options", verr.Field)
}

func TestPlayQuiz_FullRound(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()
	seedQuestions(t, store, 12)

	member := &model.Member{FirstName: "Anna", LastName: "Nowak", UID: "uid-anna", Role: model.RoleMember, Status: model.StatusActive}
	require.NoError(t, store.InsertMember(ctx, member))

	sessions := NewQuizSessions()
	view, err := StartQuiz(ctx, store, sessions, "uid-anna", 3, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, quiz.PhaseInProgress, view.Phase)
	assert.Equal(t, 3, view.Total)
	assert.Len(t, view.Options, 4)
	assert.Nil(t, view.Selected)

	// Answer every question correctly except the last
	for i := 0; i < 3; i++ {
		answer := 0
		if i == 2 {
			answer = 3
		}
		view, err = PlayQuiz(sessions, "uid-anna", func(s *quiz.Session) error { return s.Select(answer) })
		require.NoError(t, err)
		require.NotNil(t, view.Selected)
		assert.Equal(t, answer, *view.Selected)

		if i < 2 {
			_, err = PlayQuiz(sessions, "uid-anna", func(s *quiz.Session) error { return s.Next() })
			require.NoError(t, err)
		}
	}

	result, err := FinishQuiz(ctx, store, sessions, logger, "uid-anna")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, "Anna Nowak", result.UserName)

	// A finished session cannot be submitted twice
	_, err = FinishQuiz(ctx, store, sessions, logger, "uid-anna")
	assert.ErrorIs(t, err, quiz.ErrFinished)
}

// flakyResultStore fails the first failures result inserts
type flakyResultStore struct {
	*memdb.DB
	failures int
}

func (m *flakyResultStore) InsertQuizResult(ctx context.Context, result *model.QuizResult) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("network down")
	}
	return m.DB.InsertQuizResult(ctx, result)
}

func TestFinishQuiz_FailedSaveCanBeRetried(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	seedQuestions(t, store, 1)

	sessions := NewQuizSessions()
	_, err := StartQuiz(ctx, store, sessions, "uid-anna", 1, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	_, err = PlayQuiz(sessions, "uid-anna", func(s *quiz.Session) error { return s.Select(0) })
	require.NoError(t, err)

	flaky := &flakyResultStore{DB: store, failures: 1}
	_, err = FinishQuiz(ctx, flaky, sessions, zap.NewNop(), "uid-anna")
	require.Error(t, err)

	view, err := PlayQuiz(sessions, "uid-anna", func(*quiz.Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, quiz.PhaseInProgress, view.Phase)

	result, err := FinishQuiz(ctx, flaky, sessions, zap.NewNop(), "uid-anna")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)

	results, err := store.ListQuizResults(ctx)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFinishQuiz_NoSession(t *testing.T) {
	_, err := FinishQuiz(context.Background(), newTestDB(), NewQuizSessions(), zap.NewNop(), "nobody")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSubmitQuizResult_AnonymousWithoutProfile(t *testing.T) {
	store := newTestDB()
	result, err := SubmitQuizResult(context.Background(), store, zap.NewNop(), "uid-ghost", 4, 10)
	require.NoError(t, err)
	assert.Equal(t, AnonymousQuizName, result.UserName)

	_, err = SubmitQuizResult(context.Background(), store, zap.NewNop(), "uid-ghost", 11, 10)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestQuizRanking(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	logger := zap.NewNop()

	for _, score := range []int{3, 9, 6} {
		_, err := SubmitQuizResult(ctx, store, logger, fmt.Sprintf("uid-%d", score), score, 10)
		require.NoError(t, err)
	}

	ranked, err := QuizRanking(ctx, store, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, 9, ranked[0].Score)
	assert.Equal(t, 6, ranked[1].Score)
}

func TestStartQuiz_ReplacesSession(t *testing.T) {
	store := newTestDB()
	ctx := context.Background()
	seedQuestions(t, store, 2)

	sessions := NewQuizSessions()
	_, err := StartQuiz(ctx, store, sessions, "uid-1", 0, nil)
	require.NoError(t, err)
	_, err = PlayQuiz(sessions, "uid-1", func(s *quiz.Session) error { return s.Select(1) })
	require.NoError(t, err)

	view, err := StartQuiz(ctx, store, sessions, "uid-1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)
	assert.Nil(t, view.Selected)
	assert.Equal(t, 1, sessions.Len())
}
