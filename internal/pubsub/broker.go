package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker delivers each published event to every subscriber. A subscriber
// whose buffer is full misses the event; Dropped counts those misses.
type Broker[T any] struct {
	mu      sync.Mutex
	subs    map[chan Event[T]]struct{}
	closed  bool
	size    int
	seq     uint64
	last    *Event[T]
	dropped atomic.Uint64
}

// NewBroker creates a broker whose subscribers buffer 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscribers buffer size events.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{}), size: size}
}

// Subscribe returns a channel receiving every event published after the call.
// The channel is closed when ctx is done or the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	return b.subscribe(ctx, nil)
}

// SubscribeSince is Subscribe, except that the most recent event is queued
// first when its Seq is greater than seq. A reconnecting client passes the
// last Seq it saw so it learns of an event published while it was away.
func (b *Broker[T]) SubscribeSince(ctx context.Context, seq uint64) <-chan Event[T] {
	return b.subscribe(ctx, &seq)
}

func (b *Broker[T]) subscribe(ctx context.Context, since *uint64) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(chan Event[T], max(b.size, 1))
	if b.closed {
		close(sub)
		return sub
	}
	if since != nil && b.last != nil && b.last.Seq > *since {
		sub <- *b.last
	}
	b.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()
	return sub
}

func (b *Broker[T]) unsubscribe(sub chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub)
	}
}

// Publish stamps the event and offers it to every subscriber. It returns
// how many received it.
func (b *Broker[T]) Publish(eventType EventType, payload T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0
	}
	b.seq++
	event := Event[T]{Seq: b.seq, Type: eventType, Payload: payload, Timestamp: time.Now()}
	b.last = &event

	delivered := 0
	for sub := range b.subs {
		select {
		case sub <- event:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Last returns the most recent event, if any was published.
func (b *Broker[T]) Last() (Event[T], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return Event[T]{}, false
	}
	return *b.last, true
}

// Dropped returns how many deliveries were skipped because a subscriber's
// buffer was full.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later publishes are ignored and
// later subscriptions receive a closed channel.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
