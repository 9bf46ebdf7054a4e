package quiz

import (
	"errors"
	"math/rand/v2"

	"github.com/folkbase/folkbase/pkg/core/model"
)

// DefaultSampleSize is the maximum number of questions drawn for a session
const DefaultSampleSize = 10

type Phase string

const (
	PhaseInProgress Phase = "in-progress"
	PhaseFinished   Phase = "finished"
)

var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrNotAnswered     = errors.New("current question has no answer")
	ErrNotLastQuestion = errors.New("quiz can only be submitted from the last question")
	ErrFinished        = errors.New("quiz is already finished")
	ErrInvalidAnswer   = errors.New("answer index out of range")
)

// Session is one play-through of a sampled question set.
// The sample is drawn once in NewSession and reused by Reset.
type Session struct {
	questions []model.Question
	answers   map[int]int
	index     int
	phase     Phase
	score     int
}

// NewSession draws a random sample of at most size questions from bank.
// A nil rng uses the package-level source.
func NewSession(bank []model.Question, size int, rng *rand.Rand) *Session {
	if size <= 0 {
		size = DefaultSampleSize
	}

	sample := make([]model.Question, len(bank))
	copy(sample, bank)
	swap := func(i, j int) { sample[i], sample[j] = sample[j], sample[i] }
	if rng != nil {
		rng.Shuffle(len(sample), swap)
	} else {
		rand.Shuffle(len(sample), swap)
	}
	if len(sample) > size {
		sample = sample[:size]
	}

	return &Session{
		questions: sample,
		answers:   make(map[int]int),
		phase:     PhaseInProgress,
	}
}

// Questions returns the sampled questions in play order
func (s *Session) Questions() []model.Question {
	return s.questions
}

// Total returns the number of sampled questions
func (s *Session) Total() int {
	return len(s.questions)
}

// Index returns the position of the current question
func (s *Session) Index() int {
	return s.index
}

// Phase returns the session phase
func (s *Session) Phase() Phase {
	return s.phase
}

// Score returns the score of a finished session
func (s *Session) Score() int {
	return s.score
}

// Current returns the current question
func (s *Session) Current() (model.Question, bool) {
	if s.index >= len(s.questions) {
		return model.Question{}, false
	}
	return s.questions[s.index], true
}

// Answer returns the selected answer for question i
func (s *Session) Answer(i int) (int, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// Select records the answer for the current question
func (s *Session) Select(answer int) error {
	if s.phase == PhaseFinished {
		return ErrFinished
	}
	q, ok := s.Current()
	if !ok {
		return ErrNoQuestions
	}
	if answer < 0 || answer >= len(q.Options) {
		return ErrInvalidAnswer
	}
	s.answers[s.index] = answer
	return nil
}

// Next moves to the following question; the current one must be answered
func (s *Session) Next() error {
	if s.phase == PhaseFinished {
		return ErrFinished
	}
	if _, ok := s.answers[s.index]; !ok {
		return ErrNotAnswered
	}
	if s.index < len(s.questions)-1 {
		s.index++
	}
	return nil
}

// Previous moves back one question
func (s *Session) Previous() error {
	if s.phase == PhaseFinished {
		return ErrFinished
	}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// Grade scores the session without finishing it, so a caller can record the
// result first. It has the same gates as Submit.
func (s *Session) Grade() (int, error) {
	if s.phase == PhaseFinished {
		return 0, ErrFinished
	}
	if len(s.questions) == 0 {
		return 0, ErrNoQuestions
	}
	if s.index != len(s.questions)-1 {
		return 0, ErrNotLastQuestion
	}
	if _, ok := s.answers[s.index]; !ok {
		return 0, ErrNotAnswered
	}

	score := 0
	for i, q := range s.questions {
		if a, ok := s.answers[i]; ok && a == q.CorrectOptionIndex {
			score++
		}
	}
	return score, nil
}

// Submit scores the session and moves it to finished. It is only allowed on
// the last question once it is answered.
func (s *Session) Submit() (int, error) {
	score, err := s.Grade()
	if err != nil {
		return 0, err
	}
	s.score = score
	s.phase = PhaseFinished
	return score, nil
}

// Reset starts the session again with the same sample
func (s *Session) Reset() {
	s.answers = make(map[int]int)
	s.index = 0
	s.score = 0
	s.phase = PhaseInProgress
}
