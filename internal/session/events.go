package session

import (
	"sync"
	"time"

	"restyle/internal/domain"
)

const eventBuffer = 16

// Event is one progress update pushed to websocket subscribers.
type Event struct {
	SessionID string       `json:"sessionId"`
	Stage     domain.Stage `json:"stage,omitempty"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	Done      bool         `json:"done,omitempty"`
	At        time.Time    `json:"at"`
}

// Broker fans progress events out to per-session subscribers. There is no
// free-running hub goroutine; Publish delivers under the lock with a
// non-blocking send, so a stalled subscriber loses events rather than
// stalling the action that emits them.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for one session. The returned cancel func
// must be called when the listener goes away; after cancel the channel is
// closed.
func (b *Broker) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, eventBuffer)

	b.mu.Lock()
	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[chan Event]struct{})
		b.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[sessionID]; ok {
				if _, live := set[ch]; live {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(b.subs, sessionID)
				}
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of its session. Slow
// subscribers with a full buffer are skipped.
func (b *Broker) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[evt.SessionID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// DropSession closes every subscriber of a deleted session.
func (b *Broker) DropSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[sessionID] {
		close(ch)
	}
	delete(b.subs, sessionID)
}
