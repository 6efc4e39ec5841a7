// Package identity describes the external identity platform that owns
// credential checks and the session lifecycle. Concrete platforms live in
// sub-packages: memory (in-process) and toolkit (Identity Toolkit REST API).
package identity

import (
	"context"
	"time"
)

// Identity is the signed-in principal as reported by the platform.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	ProviderID    string
	EmailVerified bool
	CreatedAt     time.Time
	LastSignInAt  time.Time

	// Claims holds provider-defined metadata taken from the ID token.
	Claims map[string]any
}

// Session is what a successful sign-in returns.
type Session struct {
	Identity     Identity
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Listener receives session-change notifications. A nil identity means
// there is no active session.
type Listener func(*Identity)

// SocialProvider configures an interactive (pop-up) sign-in.
type SocialProvider struct {
	ID               string
	Scopes           []string
	CustomParameters map[string]string
}

// GoogleProviderID is the platform provider id for Google accounts.
const GoogleProviderID = "google.com"

// GoogleProvider returns the default Google sign-in configuration.
func GoogleProvider() SocialProvider {
	return SocialProvider{
		ID:     GoogleProviderID,
		Scopes: []string{"openid", "email", "profile"},
		CustomParameters: map[string]string{
			"prompt": "select_account",
		},
	}
}

// Provider is the identity platform SDK surface the session layer consumes.
//
// Subscribe must deliver the current state once the platform has resolved
// it and then every change, one notification at a time.
type Provider interface {
	Subscribe(fn Listener) (unsubscribe func())
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	CreateAccountWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignInWithPopup(ctx context.Context, provider SocialProvider) (*Session, error)
	SignOut(ctx context.Context) error
}
