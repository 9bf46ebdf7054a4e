package live

import (
	"context"
	"sync"
)

// Loader runs the one-shot query behind a projection. Filters and ordering
// are baked into the closure.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Projection keeps a caller-supplied callback up to date with a collection.
// All callbacks run on the projection's own goroutine, in bus order.
type Projection[T any] struct {
	bus      *Bus
	topic    string
	load     Loader[T]
	onChange func([]T)

	// OnError receives load failures. The projection keeps running.
	OnError func(error)
}

func NewProjection[T any](bus *Bus, topic string, load Loader[T], onChange func([]T)) *Projection[T] {
	return &Projection[T]{
		bus:      bus,
		topic:    topic,
		load:     load,
		onChange: onChange,
	}
}

// Start loads the collection once, then reloads after every change on the
// topic. The returned cancel stops the projection and unsubscribes.
func (p *Projection[T]) Start(ctx context.Context) (cancel func()) {
	ctx, stop := context.WithCancel(ctx)
	changes, unsubscribe := p.bus.Subscribe(p.topic)

	go func() {
		defer unsubscribe()
		p.refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				p.refresh(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			unsubscribe()
		})
	}
}

func (p *Projection[T]) refresh(ctx context.Context) {
	items, err := p.load(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	p.onChange(items)
}
