package session

import (
	"maps"
	"slices"
	"sync"
)

// Store is a single observable State cell. Only this package writes it.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[uint64]*subscriber
	nextID uint64
}

func newStore() *Store {
	return &Store{subs: make(map[uint64]*subscriber)}
}

// Get returns the current State.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn with the current State and then with every new one.
// Calls to one fn are serialised and arrive in publish order. fn runs with
// no Store lock held, so it may call Get or Subscribe, but it must not block
// for long. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	sub := &subscriber{fn: fn}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	sub.push(s.state)
	s.mu.Unlock()

	sub.drain()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			sub.stop()
		})
	}
}

func (s *Store) set(st State) {
	s.mu.Lock()
	s.state = st
	ids := slices.Sorted(maps.Keys(s.subs))
	subs := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		sub := s.subs[id]
		sub.push(st)
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.drain()
	}
}

// subscriber owns the pending states of one callback. Whoever finds it idle
// delivers the queue; anyone else only enqueues.
type subscriber struct {
	fn func(State)

	mu       sync.Mutex
	queue    []State
	draining bool
	stopped  bool
}

func (sub *subscriber) push(st State) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.stopped {
		sub.queue = append(sub.queue, st)
	}
}

func (sub *subscriber) drain() {
	sub.mu.Lock()
	if sub.draining {
		sub.mu.Unlock()
		return
	}
	sub.draining = true
	for len(sub.queue) > 0 && !sub.stopped {
		st := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()
		sub.fn(st)
		sub.mu.Lock()
	}
	sub.draining = false
	sub.mu.Unlock()
}

func (sub *subscriber) stop() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.stopped = true
	sub.queue = nil
}
