package substrate

import (
	"context"
	"sync"
)

// Broadcast is the in-process Bus implementation. Every subscriber owns an
// unbounded FIFO queue drained by its own delivery goroutine, so publishers
// never block on slow listeners and no listener misses an event published
// after it subscribed.
type Broadcast struct {
	subs      map[uint64]*subscriber
	nextSubID uint64

	done      chan struct{}
	closeOnce sync.Once

	mu sync.RWMutex
}

type subscriber struct {
	name string

	mu    sync.Mutex
	queue []Event

	wake chan struct{}
	out  chan Event
	stop chan struct{}
}

// NewBroadcast builds an empty in-process broadcast bus.
func NewBroadcast() *Broadcast {
	return &Broadcast{
		subs: make(map[uint64]*subscriber),
		done: make(chan struct{}),
	}
}

// Publish fans ev out to every subscriber registered for ev.Name at call
// time. Delivery order is FIFO per subscriber.
func (b *Broadcast) Publish(ctx context.Context, ev Event) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		return false
	case <-b.done:
		return false
	default:
	}

	b.mu.RLock()
	matched := make([]*subscriber, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.name == ev.Name {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matched {
		sub.enqueue(ev)
	}

	return true
}

// Subscribe registers a listener for events named name. The returned
// function removes the listener; it is safe to call more than once and
// concurrently with event delivery.
func (b *Broadcast) Subscribe(ctx context.Context, name string) (<-chan Event, func()) {
	if ctx == nil {
		ctx = context.Background()
	}

	sub := &subscriber{
		name: name,
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
		stop: make(chan struct{}),
	}

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		close(sub.out)
		return sub.out, func() {}
	default:
	}

	id := b.nextSubID
	b.nextSubID++
	b.subs[id] = sub
	b.mu.Unlock()

	go sub.deliver()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.stop)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-b.done:
			unsubscribe()
		case <-sub.stop:
		}
	}()

	return sub.out, unsubscribe
}

// Close shuts the bus down: publishes start failing and every subscription
// channel closes. Safe to call more than once.
func (b *Broadcast) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
}

func (s *subscriber) enqueue(ev Event) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return Event{}, false
	}

	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

// deliver pumps queued events to the subscription channel until the
// subscriber is stopped. The out channel closes on exit.
func (s *subscriber) deliver() {
	defer close(s.out)

	for {
		ev, ok := s.next()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.stop:
				return
			}
		}

		select {
		case s.out <- ev:
		case <-s.stop:
			return
		}
	}
}
