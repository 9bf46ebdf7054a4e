package services

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned when a user has no session in a registry
var ErrNoSession = errors.New("no active session")

type registryEntry[T any] struct {
	mu      sync.Mutex
	value   T
	touched time.Time
}

// Registry holds one per-user session object (a quiz play-through, a check-in
// scanner) between requests. Entries idle longer than ttl are dropped.
// Calls for the same key run one at a time; calls for different keys never
// wait on each other.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*registryEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

func NewRegistry[T any](ttl time.Duration) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*registryEntry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put replaces the session for key
func (r *Registry[T]) Put(key string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	r.entries[key] = &registryEntry[T]{value: value, touched: r.now()}
}

// Do runs fn with the session for key, or returns ErrNoSession
func (r *Registry[T]) Do(key string, fn func(T) error) error {
	entry, ok := r.lookup(key, nil)
	if !ok {
		return ErrNoSession
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.value)
}

// GetOrCreate runs fn with the session for key, creating it first when missing
func (r *Registry[T]) GetOrCreate(key string, create func() T, fn func(T) error) error {
	entry, _ := r.lookup(key, create)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.value)
}

// lookup finds and touches the entry for key under the registry lock only.
// A nil create leaves a missing key missing.
func (r *Registry[T]) lookup(key string, create func() T) (*registryEntry[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	entry, ok := r.entries[key]
	if !ok {
		if create == nil {
			return nil, false
		}
		entry = &registryEntry[T]{value: create()}
		r.entries[key] = entry
	}
	entry.touched = r.now()
	return entry, true
}

func (r *Registry[T]) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	return len(r.entries)
}

func (r *Registry[T]) prune() {
	if r.ttl <= 0 {
		return
	}
	now := r.now()
	for key, entry := range r.entries {
		if now.Sub(entry.touched) > r.ttl {
			delete(r.entries, key)
		}
	}
}
