package identity

import (
	"maps"
	"slices"
	"sync"
)

// Broadcaster is the listener registry shared by Provider implementations.
//
// It remembers the last published identity and replays it to late
// subscribers once the first Publish has happened. Deliveries are serialised
// and run outside the state lock; listeners must not call Publish.
type Broadcaster struct {
	deliverMu sync.Mutex

	mu        sync.Mutex
	current   *Identity
	resolved  bool
	listeners map[uint64]Listener
	nextID    uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[uint64]Listener)}
}

// Subscribe registers fn and, if the session state is already known,
// delivers it immediately.
func (b *Broadcaster) Subscribe(fn Listener) func() {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	current, resolved := b.current, b.resolved
	b.mu.Unlock()

	if resolved {
		fn(current.Clone())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish records ident as the current session (nil for signed out) and
// notifies every subscriber in registration order.
func (b *Broadcaster) Publish(ident *Identity) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	b.current = ident.Clone()
	b.resolved = true
	ids := make([]uint64, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	listeners := maps.Clone(b.listeners)
	b.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		listeners[id](ident.Clone())
	}
}

// Current returns the last published identity and whether any state has
// been published yet.
func (b *Broadcaster) Current() (*Identity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.Clone(), b.resolved
}

// Clone returns a deep copy of i; nil stays nil.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Claims = maps.Clone(i.Claims)
	return &c
}
