package auth

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// SessionEvent reports a sign-in or sign-out
type SessionEvent struct {
	Type  EventType `json:"type"`
	Email string    `json:"email,omitempty"`
	At    time.Time `json:"at"`
}

const subscriberBuffer = 8

// Broadcaster fans session events out to subscribers. Slow subscribers miss
// events rather than block the publisher.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan SessionEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan SessionEvent)}
}

// Subscribe returns an event channel and a function that closes it
func (b *Broadcaster) Subscribe() (<-chan SessionEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan SessionEvent, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *Broadcaster) Publish(ev SessionEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Warn().Int("subscriber", id).Str("event", string(ev.Type)).Msg("dropping session event for slow subscriber")
		}
	}
}

// Subscribers reports the number of open subscriptions
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
