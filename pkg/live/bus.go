package live

import (
	"sync"

	"github.com/folkbase/folkbase/pkg/metrics"
)

type Kind string

const (
	KindAdded    Kind = "added"
	KindModified Kind = "modified"
	KindRemoved  Kind = "removed"
)

// Change notifies subscribers that a document in a collection changed.
// MemberID is set for collections that are also scoped per member.
type Change struct {
	Collection string `json:"collection"`
	Kind       Kind   `json:"kind"`
	ID         string `json:"id"`
	MemberID   string `json:"memberId,omitempty"`
}

// Topic returns the member-scoped topic for a collection, e.g. "assignments/<id>"
func Topic(collection, memberID string) string {
	if memberID == "" {
		return collection
	}
	return collection + "/" + memberID
}

const subscriberBuffer = 16

// Bus is a topic-keyed fan-out of change notifications
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan Change]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[chan Change]struct{})}
}

// Subscribe registers for changes on topic. The returned cancel is safe to call more than once.
func (b *Bus) Subscribe(topic string) (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)

	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan Change]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	metrics.LiveSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if subs, ok := b.subs[topic]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subs, topic)
				}
			}
			close(ch)
			b.mu.Unlock()
			metrics.LiveSubscribers.Dec()
		})
	}
}

// Publish delivers c to the collection topic and, when set, the member topic.
// It never blocks: a full subscriber buffer drops its oldest pending change.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.deliver(c.Collection, c)
	if c.MemberID != "" {
		b.deliver(Topic(c.Collection, c.MemberID), c)
	}
}

func (b *Bus) deliver(topic string, c Change) {
	for ch := range b.subs[topic] {
		select {
		case ch <- c:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers returns the number of subscriptions on topic
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
