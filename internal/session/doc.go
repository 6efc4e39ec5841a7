// Package session keeps the application's view of "who is signed in, and
// with which role" consistent with the identity platform's live session and
// the per-user Role Record.
//
// Data flow
//
//	identity.Provider --notification--> Reconciler --Get/Create--> roles.Repository
//	                                        |
//	                                        v
//	                                 Store (State) --> readers
//
// The Reconciler is the only writer of the Store. Readers either poll
// State() or Subscribe to every change; a Subscribe callback receives the
// current State immediately.
//
// Guarantees
//
//   - A signed-in user is published only after its role is resolved.
//   - Notifications are reconciled one at a time, in arrival order.
//   - State.Ready flips to true once, after the first notification has been
//     handled, and never goes back.
//
// Actions (Login, Signup, LoginWithGoogle, Logout) call the platform and
// return its error unchanged, apart from a blocked pop-up, which becomes
// ErrPopupBlocked. They never write the Store themselves; the resulting
// notification does.
package session
