package auth

import (
	"strings"
	"sync"
	"time"
)

const (
	maxFailedAttempts = 5
	throttleWindow    = 15 * time.Minute
)

// throttle counts failed sign-ins per email inside a sliding window
type throttle struct {
	mu       sync.Mutex
	failures map[string][]time.Time
}

func newThrottle() *throttle {
	return &throttle{failures: make(map[string][]time.Time)}
}

func throttleKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (t *throttle) prune(key string, now time.Time) []time.Time {
	recent := t.failures[key][:0]
	for _, at := range t.failures[key] {
		if now.Sub(at) < throttleWindow {
			recent = append(recent, at)
		}
	}
	if len(recent) == 0 {
		delete(t.failures, key)
		return nil
	}
	t.failures[key] = recent
	return recent
}

// blocked reports whether the email has used up its attempts
func (t *throttle) blocked(email string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.prune(throttleKey(email), now)) >= maxFailedAttempts
}

func (t *throttle) fail(email string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := throttleKey(email)
	t.failures[key] = append(t.prune(key, now), now)
}

func (t *throttle) reset(email string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, throttleKey(email))
}
