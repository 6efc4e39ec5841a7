package identity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu   sync.Mutex
	seen []*Identity
}

func (r *recorder) listen(ident *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ident)
}

func (r *recorder) events() []*Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Identity(nil), r.seen...)
}

func TestBroadcaster_NoReplayBeforeFirstPublish(t *testing.T) {
	b := NewBroadcaster()
	rec := &recorder{}
	b.Subscribe(rec.listen)

	assert.Empty(t, rec.events())

	_, resolved := b.Current()
	assert.False(t, resolved)
}

func TestBroadcaster_ReplaysCurrentToLateSubscriber(t *testing.T) {
	b := NewBroadcaster()
	b.Publish(&Identity{UID: "u1", Email: "a@x.com"})

	rec := &recorder{}
	b.Subscribe(rec.listen)

	got := rec.events()
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].UID)
}

func TestBroadcaster_ReplaysSignedOutState(t *testing.T) {
	b := NewBroadcaster()
	b.Publish(nil)

	rec := &recorder{}
	b.Subscribe(rec.listen)

	got := rec.events()
	require.Len(t, got, 1)
	assert.Nil(t, got[0])
}

func TestBroadcaster_DeliversInOrderAndStopsAfterUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	rec := &recorder{}
	unsubscribe := b.Subscribe(rec.listen)

	b.Publish(&Identity{UID: "u1"})
	b.Publish(nil)
	b.Publish(&Identity{UID: "u2"})

	unsubscribe()
	unsubscribe()
	b.Publish(&Identity{UID: "u3"})

	got := rec.events()
	require.Len(t, got, 3)
	assert.Equal(t, "u1", got[0].UID)
	assert.Nil(t, got[1])
	assert.Equal(t, "u2", got[2].UID)
}

func TestBroadcaster_ListenersGetCopies(t *testing.T) {
	b := NewBroadcaster()
	b.Subscribe(func(ident *Identity) {
		if ident != nil {
			ident.Email = "mutated"
			ident.Claims["k"] = "mutated"
		}
	})

	b.Publish(&Identity{UID: "u1", Email: "a@x.com", Claims: map[string]any{"k": "v"}})

	current, _ := b.Current()
	assert.Equal(t, "a@x.com", current.Email)
	assert.Equal(t, "v", current.Claims["k"])
}

func TestError_CodeMatching(t *testing.T) {
	err := WrapError(CodeNetworkFailed, assert.AnError)

	assert.Equal(t, CodeNetworkFailed, CodeOf(err))
	assert.ErrorIs(t, err, NewError(CodeNetworkFailed, ""))
	assert.NotErrorIs(t, err, NewError(CodePopupBlocked, ""))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "", CodeOf(assert.AnError))
	assert.Equal(t, "auth/popup-blocked", NewError(CodePopupBlocked, "").Error())
}
