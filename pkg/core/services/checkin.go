package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/folkbase/folkbase/pkg/core/checkin"
	"github.com/folkbase/folkbase/pkg/metrics"
)

const scannerTTL = 30 * time.Minute

// CheckInResult is the scanner state after handling a payload
type CheckInResult struct {
	State   checkin.State `json:"state"`
	Message string        `json:"message"`
	EventID string        `json:"eventId,omitempty"`
}

// NewCheckInScanners creates the registry of per-member scanners
func NewCheckInScanners() *Registry[*checkin.Scanner] {
	return NewRegistry[*checkin.Scanner](scannerTTL)
}

// CheckIn feeds a scanned payload to the member's scanner. While the scanner
// shows success or error further payloads are ignored until ResetCheckIn.
func CheckIn(
	ctx context.Context,
	store checkin.EventStore,
	scanners *Registry[*checkin.Scanner],
	logger *zap.Logger,
	memberID, payload string,
) (CheckInResult, error) {
	if memberID == "" {
		return CheckInResult{}, ErrForbidden
	}

	var result CheckInResult
	err := scanners.GetOrCreate(memberID,
		func() *checkin.Scanner { return checkin.NewScanner(store, logger, memberID) },
		func(s *checkin.Scanner) error {
			before := s.State()
			state := s.HandlePayload(ctx, payload)
			if before == checkin.StateScanning && state != checkin.StateScanning {
				metrics.CheckIns.WithLabelValues(string(state)).Inc()
			}
			result = CheckInResult{State: state, Message: s.Message(), EventID: s.EventID()}
			return nil
		})
	return result, err
}

// ResetCheckIn puts the member's scanner back into scanning
func ResetCheckIn(scanners *Registry[*checkin.Scanner], memberID string) CheckInResult {
	_ = scanners.Do(memberID, func(s *checkin.Scanner) error {
		s.Reset()
		return nil
	})
	return CheckInResult{State: checkin.StateScanning}
}
