package bus

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Bus is an in-process publish/subscribe event bus. Subscribers filter by a
// kind prefix such as "session." or "receipt.".
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
	now  func() time.Time
}

type subscription struct {
	prefix string
	ch     chan Event
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
		now:  time.Now,
	}
}

// Publish delivers evt to every subscriber whose prefix matches evt.Kind. It
// never blocks; a subscriber with a full buffer misses the event.
func (b *Bus) Publish(evt Event) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !strings.HasPrefix(evt.Kind, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Subscribe returns a channel receiving events whose kind starts with prefix,
// and a function that cancels the subscription. The channel is not closed on
// cancel.
func (b *Bus) Subscribe(prefix string, bufSize int) (<-chan Event, func()) {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = &subscription{prefix: prefix, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
