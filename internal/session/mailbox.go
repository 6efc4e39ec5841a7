package session

import (
	"sync"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
)

// mailbox is an unbounded FIFO of session-change notifications. push never
// blocks, so the platform's delivery goroutine is never held up by a slow
// role lookup.
type mailbox struct {
	mu     sync.Mutex
	items  []*identity.Identity
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (m *mailbox) push(ident *identity.Identity) {
	m.mu.Lock()
	m.items = append(m.items, ident)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox) pop() (*identity.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return nil, false
	}
	ident := m.items[0]
	m.items[0] = nil
	m.items = m.items[1:]
	return ident, true
}
