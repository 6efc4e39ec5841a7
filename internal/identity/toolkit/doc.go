// Package toolkit talks to the hosted identity platform through the Identity
// Toolkit v1 REST API. Email/password sign-in and account creation map to
// accounts:signInWithPassword and accounts:signUp; Google sign-in runs an
// OAuth 2.0 loopback flow in the system browser and exchanges the resulting
// Google ID token through accounts:signInWithIdp.
//
// The provider keeps the current session in memory and, when a SessionCache
// is configured, on disk, so a restarted process reports the previous
// session as its first notification.
package toolkit
