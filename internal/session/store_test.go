package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
)

func TestStore_SubscribeReplaysCurrentState(t *testing.T) {
	s := newStore()
	s.set(State{Ready: true})

	var got []State
	cancel := s.Subscribe(func(st State) { got = append(got, st) })
	defer cancel()

	require.Len(t, got, 1)
	assert.True(t, got[0].Ready)
}

func TestStore_SubscribeFromCallback(t *testing.T) {
	s := newStore()

	var (
		outer, inner recorder
		once         sync.Once
	)
	s.Subscribe(func(st State) {
		outer.record(st)
		if st.Ready {
			once.Do(func() { s.Subscribe(inner.record) })
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.set(State{Ready: true})
		s.set(State{Ready: true, User: &User{Role: "member"}})
	}()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("set blocked on a subscriber that subscribed from its callback")
	}

	assert.Equal(t, 3, outer.len())
	got := inner.snapshot()
	require.Len(t, got, 2)
	assert.Nil(t, got[0].User)
	require.NotNil(t, got[1].User)
	assert.Equal(t, "member", got[1].User.Role)
}

func TestStore_DeliversInOrderAndStopsAfterCancel(t *testing.T) {
	s := newStore()
	var rec recorder
	cancel := s.Subscribe(rec.record)

	for _, uid := range []string{"a", "b", "c"} {
		s.set(State{Ready: true, User: &User{Identity: identity.Identity{UID: uid}}})
	}
	cancel()
	cancel()
	s.set(State{Ready: true})

	got := rec.snapshot()
	require.Len(t, got, 4)
	assert.Nil(t, got[0].User)
	for i, uid := range []string{"a", "b", "c"} {
		assert.Equal(t, uid, got[i+1].User.Identity.UID)
	}
}

func TestStore_CancelFromCallback(t *testing.T) {
	s := newStore()
	var (
		rec    recorder
		cancel func()
		mu     sync.Mutex
	)
	mu.Lock()
	cancel = s.Subscribe(func(st State) {
		rec.record(st)
		if st.Ready {
			mu.Lock()
			c := cancel
			mu.Unlock()
			c()
		}
	})
	mu.Unlock()

	s.set(State{Ready: true})
	s.set(State{Ready: true})

	assert.Equal(t, 2, rec.len())
}
