package checkin

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
)

type State string

const (
	StateScanning State = "scanning"
	StateSuccess  State = "success"
	StateError    State = "error"
)

// Messages shown to the member after a scan
const (
	MessageSuccess      = "Obecność potwierdzona! Miłej próby."
	MessageUnknownEvent = "Nie znaleziono wydarzenia. Błędny kod QR."
	MessageWriteFailed  = "Wystąpił błąd podczas zapisu."
)

// EventStore defines the store operations the scanner needs
type EventStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	AddAttendee(ctx context.Context, eventID, memberID string) error
}

// Scanner is a single self check-in session for one member.
// It starts in scanning; success and error are terminal until Reset is called.
type Scanner struct {
	store    EventStore
	logger   *zap.Logger
	memberID string

	mu      sync.Mutex
	state   State
	message string
	eventID string
}

// NewScanner creates a scanner in the scanning state for the given member
func NewScanner(store EventStore, logger *zap.Logger, memberID string) *Scanner {
	return &Scanner{
		store:    store,
		logger:   logger,
		memberID: memberID,
		state:    StateScanning,
	}
}

// State returns the current state
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Message returns the message for the current state
func (s *Scanner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// EventID returns the event id of the last handled payload
func (s *Scanner) EventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventID
}

// HandlePayload processes a scanned code payload (an event id).
// Payloads received outside the scanning state, or empty ones, are ignored.
func (s *Scanner) HandlePayload(ctx context.Context, payload string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	eventID := strings.TrimSpace(payload)
	if eventID == "" || s.state != StateScanning {
		return s.state
	}
	s.eventID = eventID

	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.logger.Info("Check-in for unknown event",
				zap.String("event_id", eventID),
				zap.String("member_id", s.memberID))
			return s.fail(MessageUnknownEvent)
		}
		s.logger.Warn("Failed to look up event for check-in",
			zap.String("event_id", eventID),
			zap.Error(err))
		return s.fail(MessageWriteFailed)
	}

	if err := s.store.AddAttendee(ctx, eventID, s.memberID); err != nil {
		s.logger.Warn("Failed to record check-in",
			zap.String("event_id", eventID),
			zap.String("member_id", s.memberID),
			zap.Error(err))
		return s.fail(MessageWriteFailed)
	}

	s.logger.Info("Member checked in",
		zap.String("event_id", eventID),
		zap.String("member_id", s.memberID))
	s.state = StateSuccess
	s.message = MessageSuccess
	return s.state
}

// Reset returns the scanner to scanning. This is always an explicit user action.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateScanning
	s.message = ""
	s.eventID = ""
}

func (s *Scanner) fail(message string) State {
	s.state = StateError
	s.message = message
	return s.state
}
