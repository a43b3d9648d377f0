// Package event provides the broadcast bus that coordinates stores and views.
// Delivery is synchronous and in registration order: Publish returns only
// after every subscriber has run.
package event

import "sync"

// Name identifies a coordination event.
type Name string

// Well-known event names emitted by the stores.
const (
	SessionEstablished Name = "session-established"
	SessionEnded       Name = "session-ended"
	ClientSelected     Name = "client-selected"
	ClientUpdated      Name = "client-updated"
	RequestSelected    Name = "request-selected"
	RequestCreated     Name = "request-created"
	OpenRequestUpdated Name = "open-request-updated"
	OpenRequestClosed  Name = "open-request-closed"
)

// Handler receives the payload published under a name.
type Handler func(payload any)

type subscription struct {
	id int
	fn Handler
}

// Bus is a synchronous publish/subscribe broadcaster. Registration is
// mutex-guarded; delivery runs on the publisher's goroutine.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[Name][]subscription
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Name][]subscription)}
}

// Subscribe registers fn for name and returns a cancel func that removes
// the subscription.
func (b *Bus) Subscribe(name Name, fn Handler) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[name] = append(b.subs[name], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[name]
		for i := range list {
			if list[i].id == id {
				b.subs[name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes every handler registered for name, in registration order,
// before returning. Handlers registered during delivery do not receive the
// in-flight event.
func (b *Bus) Publish(name Name, payload any) {
	b.mu.Lock()
	list := make([]subscription, len(b.subs[name]))
	copy(list, b.subs[name])
	b.mu.Unlock()

	for _, s := range list {
		s.fn(payload)
	}
}
