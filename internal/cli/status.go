package cli

import (
	"fmt"

	"github.com/dmitrijs2005/rolekeeper/internal/session"
)

// getStatus renders the prompt suffix, e.g. "(a@x.com member)".
func (a *App) getStatus() string {
	st := a.session.State()
	if st.User == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", st.User.Identity.Email, st.User.Role)
}

// watchSession prints session transitions as the reconciler publishes them.
func (a *App) watchSession() (stop func()) {
	var prev session.State
	return a.session.Subscribe(func(st session.State) {
		if msg := describeTransition(prev, st); msg != "" {
			printlnFn(msg)
		}
		prev = st
	})
}

func describeTransition(prev, next session.State) string {
	if !next.Ready {
		return ""
	}
	switch {
	case next.Err != nil:
		return fmt.Sprintf("Session error: %v", next.Err)
	case next.User == nil && prev.User != nil:
		return "Signed out"
	case next.User == nil && !prev.Ready:
		return "Not signed in"
	case next.User != nil && (prev.User == nil || prev.User.Identity.UID != next.User.Identity.UID || prev.User.Role != next.User.Role):
		return fmt.Sprintf("Signed in as %s (%s)", next.User.Identity.Email, next.User.Role)
	}
	return ""
}
