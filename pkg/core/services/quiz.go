package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/core/quiz"
	"github.com/folkbase/folkbase/pkg/core/stats"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/metrics"
)

// AnonymousQuizName is recorded for results of users without a member profile
const AnonymousQuizName = "Anonimowy członek"

func CreateQuestion(ctx context.Context, store db.QuizStore, logger *zap.Logger, question model.Question) (result *model.Question, err error) {
	defer func() { metrics.RecordMutation(db.CollectionQuestions, "insert", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	question.ID = ""
	question.Text = strings.TrimSpace(question.Text)
	if err := validateRecord(question); err != nil {
		return nil, err
	}
	if err := store.InsertQuestion(ctx, &question); err != nil {
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}
	logger.Debug("Question created", zap.String("question_id", question.ID))
	return &question, nil
}

func UpdateQuestion(ctx context.Context, store db.QuizStore, logger *zap.Logger, question model.Question) (result *model.Question, err error) {
	defer func() { metrics.RecordMutation(db.CollectionQuestions, "update", err) }()

	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	if err := validateRecord(question); err != nil {
		return nil, err
	}
	if err := store.UpdateQuestion(ctx, &question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	logger.Debug("Question updated", zap.String("question_id", question.ID))
	return &question, nil
}

func DeleteQuestion(ctx context.Context, store db.QuizStore, logger *zap.Logger, questionID string) (err error) {
	defer func() { metrics.RecordMutation(db.CollectionQuestions, "delete", err) }()

	if err := requireManager(ctx); err != nil {
		return err
	}
	if err := store.DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	logger.Debug("Question deleted", zap.String("question_id", questionID))
	return nil
}

// QuizResultStore defines the store operations needed to record a quiz result
type QuizResultStore interface {
	GetMemberByUID(ctx context.Context, uid string) (*model.Member, error)
	InsertQuizResult(ctx context.Context, result *model.QuizResult) error
}

// SubmitQuizResult appends a finished quiz to the results. The name comes
// from the user's member profile when there is one.
func SubmitQuizResult(ctx context.Context, store QuizResultStore, logger *zap.Logger, userID string, score, total int) (result *model.QuizResult, err error) {
	defer func() { metrics.RecordMutation(db.CollectionQuizResults, "insert", err) }()

	if score < 0 || score > total {
		return nil, invalid("score", "must be between 0 and %d", total)
	}

	name := AnonymousQuizName
	member, err := store.GetMemberByUID(ctx, userID)
	switch {
	case err == nil && member.FullName() != "":
		name = member.FullName()
	case err != nil && !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	result = &model.QuizResult{
		UserID:         userID,
		UserName:       name,
		Score:          score,
		TotalQuestions: total,
	}
	if err := store.InsertQuizResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save quiz result: %w", err)
	}

	logger.Info("Quiz result saved",
		zap.String("user_id", userID),
		zap.Int("score", score),
		zap.Int("total", total))
	return result, nil
}

// QuizRanking lists results by score, earlier results first on ties
func QuizRanking(ctx context.Context, store db.QuizStore, limit int) ([]model.QuizResult, error) {
	results, err := store.ListQuizResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quiz results: %w", err)
	}
	ranked := stats.RankResults(results)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// QuizView is what a player sees of their session. The correct answer is not included.
type QuizView struct {
	Phase    quiz.Phase `json:"phase"`
	Index    int        `json:"index"`
	Total    int        `json:"total"`
	Question string     `json:"question,omitempty"`
	Options  []string   `json:"options,omitempty"`
	Category string     `json:"category,omitempty"`
	Selected *int       `json:"selected,omitempty"`
	Score    *int       `json:"score,omitempty"`
}

// ViewQuiz renders the player's view of a session
func ViewQuiz(s *quiz.Session) QuizView {
	view := QuizView{Phase: s.Phase(), Index: s.Index(), Total: s.Total()}
	if q, ok := s.Current(); ok {
		view.Question = q.Text
		view.Options = q.Options
		view.Category = q.Category
	}
	if a, ok := s.Answer(s.Index()); ok {
		view.Selected = &a
	}
	if s.Phase() == quiz.PhaseFinished {
		score := s.Score()
		view.Score = &score
	}
	return view
}

// StartQuiz draws a new sample from the question bank and replaces the user's session
func StartQuiz(ctx context.Context, store db.QuizStore, sessions *Registry[*quiz.Session], uid string, size int, rng *rand.Rand) (QuizView, error) {
	bank, err := store.ListQuestions(ctx)
	if err != nil {
		return QuizView{}, fmt.Errorf("failed to fetch questions: %w", err)
	}
	session := quiz.NewSession(bank, size, rng)
	sessions.Put(uid, session)
	return ViewQuiz(session), nil
}

// PlayQuiz applies step to the user's session and returns the resulting view
func PlayQuiz(sessions *Registry[*quiz.Session], uid string, step func(*quiz.Session) error) (QuizView, error) {
	var view QuizView
	err := sessions.Do(uid, func(s *quiz.Session) error {
		if err := step(s); err != nil {
			return err
		}
		view = ViewQuiz(s)
		return nil
	})
	return view, err
}

// FinishQuiz records the user's result and only then marks the session
// finished. When the write fails the session stays on its last question and
// the player can submit again.
func FinishQuiz(ctx context.Context, store QuizResultStore, sessions *Registry[*quiz.Session], logger *zap.Logger, uid string) (*model.QuizResult, error) {
	var result *model.QuizResult
	err := sessions.Do(uid, func(s *quiz.Session) error {
		score, err := s.Grade()
		if err != nil {
			return err
		}
		result, err = SubmitQuizResult(ctx, store, logger, uid, score, s.Total())
		if err != nil {
			return err
		}
		_, err = s.Submit()
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// quizSessionTTL drops play-throughs abandoned for this long
const quizSessionTTL = 2 * time.Hour

// NewQuizSessions creates the registry that holds play-throughs between requests
func NewQuizSessions() *Registry[*quiz.Session] {
	return NewRegistry[*quiz.Session](quizSessionTTL)
}
