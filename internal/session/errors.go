package session

import "errors"

var (
	// ErrPopupBlocked replaces the platform's pop-up-blocked failure with a
	// message the UI can show as is.
	ErrPopupBlocked = errors.New("the sign-in pop-up was blocked; allow pop-ups for this app or try again")

	ErrNotStarted     = errors.New("session reconciler not started")
	ErrAlreadyStarted = errors.New("session reconciler already started")
)
