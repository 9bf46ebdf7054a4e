// Package memdb is an in-memory db.Database. It backs tests and the
// server's demo mode and publishes the same change feed as the Postgres
// trigger does.
package memdb

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/folkbase/folkbase/pkg/core/model"
	"github.com/folkbase/folkbase/pkg/db"
	"github.com/folkbase/folkbase/pkg/live"
)

type state struct {
	teams       map[string]model.Team
	members     map[string]model.Member
	events      map[string]model.Event
	costumes    map[string]model.Costume
	assignments map[string]model.CostumeAssignment
	repertoire  map[string]model.RepertoireItem
	media       map[string]model.MediaAsset
	questions   map[string]model.Question
	results     map[string]model.QuizResult
	polls       map[string]model.Poll
	attendance  map[string]model.AttendanceRecord
	albums      map[string]model.Album
	photos      map[string]model.Photo
	tombstones  map[string]db.BlobTombstone
	accounts    map[string]db.Account
	revoked     map[string]time.Time
	resets      map[string]db.PasswordReset
}

func newState() *state {
	return &state{
		teams:       map[string]model.Team{},
		members:     map[string]model.Member{},
		events:      map[string]model.Event{},
		costumes:    map[string]model.Costume{},
		assignments: map[string]model.CostumeAssignment{},
		repertoire:  map[string]model.RepertoireItem{},
		media:       map[string]model.MediaAsset{},
		questions:   map[string]model.Question{},
		results:     map[string]model.QuizResult{},
		polls:       map[string]model.Poll{},
		attendance:  map[string]model.AttendanceRecord{},
		albums:      map[string]model.Album{},
		photos:      map[string]model.Photo{},
		tombstones:  map[string]db.BlobTombstone{},
		accounts:    map[string]db.Account{},
		revoked:     map[string]time.Time{},
		resets:      map[string]db.PasswordReset{},
	}
}

// clone deep-copies the state so a transaction can be discarded
func (s *state) clone() *state {
	c := &state{
		teams:       maps.Clone(s.teams),
		members:     maps.Clone(s.members),
		events:      make(map[string]model.Event, len(s.events)),
		costumes:    maps.Clone(s.costumes),
		assignments: maps.Clone(s.assignments),
		repertoire:  maps.Clone(s.repertoire),
		media:       maps.Clone(s.media),
		questions:   make(map[string]model.Question, len(s.questions)),
		results:     maps.Clone(s.results),
		polls:       make(map[string]model.Poll, len(s.polls)),
		attendance:  maps.Clone(s.attendance),
		albums:      maps.Clone(s.albums),
		photos:      maps.Clone(s.photos),
		tombstones:  maps.Clone(s.tombstones),
		accounts:    maps.Clone(s.accounts),
		revoked:     maps.Clone(s.revoked),
		resets:      maps.Clone(s.resets),
	}
	for k, v := range s.events {
		c.events[k] = cloneEvent(v)
	}
	for k, v := range s.questions {
		c.questions[k] = cloneQuestion(v)
	}
	for k, v := range s.polls {
		c.polls[k] = clonePoll(v)
	}
	return c
}

func cloneEvent(e model.Event) model.Event {
	e.Attendees = slices.Clone(e.Attendees)
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	e.Program = slices.Clone(e.Program)
	return e
}

func cloneQuestion(q model.Question) model.Question {
	q.Options = slices.Clone(q.Options)
	return q
}

func clonePoll(p model.Poll) model.Poll {
	p.Options = slices.Clone(p.Options)
	p.Votes = maps.Clone(p.Votes)
	if p.Votes == nil {
		p.Votes = map[string]int{}
	}
	return p
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// DB is an in-memory database. Reads return copies.
type DB struct {
	mu      sync.Locker
	state   *state
	bus     *live.Bus
	pending *[]live.Change // non-nil inside a transaction
	now     func() time.Time
}

var _ db.Database = (*DB)(nil)

// New creates an empty database. bus may be nil.
func New(bus *live.Bus) *DB {
	return &DB{
		mu:    &sync.Mutex{},
		state: newState(),
		bus:   bus,
		now:   time.Now,
	}
}

// InTx runs fn against a copy of the state and swaps it in when fn succeeds.
// The database is locked for the whole transaction, so fn must only use tx.
// Changes are published only after commit.
func (d *DB) InTx(ctx context.Context, fn func(tx db.Database) error) error {
	if d.pending != nil {
		return fn(d)
	}

	changes, err := d.commit(fn)
	if err != nil {
		return err
	}
	if d.bus != nil {
		for _, c := range changes {
			d.bus.Publish(c)
		}
	}
	return nil
}

func (d *DB) commit(fn func(tx db.Database) error) ([]live.Change, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var changes []live.Change
	tx := &DB{
		mu:      noopLocker{},
		state:   d.state.clone(),
		bus:     d.bus,
		pending: &changes,
		now:     d.now,
	}
	if err := fn(tx); err != nil {
		return nil, err
	}
	d.state = tx.state
	return changes, nil
}

func (d *DB) emit(collection string, kind live.Kind, id, memberID string) {
	c := live.Change{Collection: collection, Kind: kind, ID: id, MemberID: memberID}
	if d.pending != nil {
		*d.pending = append(*d.pending, c)
		return
	}
	if d.bus != nil {
		d.bus.Publish(c)
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func (d *DB) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return d.now().UTC()
	}
	return t
}

// sortedValues returns the map values ordered by cmp
func sortedValues[T any](m map[string]T, cmp func(a, b T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortStableFunc(out, cmp)
	return out
}
