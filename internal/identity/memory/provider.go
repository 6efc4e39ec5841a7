// Package memory is an in-process identity platform. It keeps accounts in a
// map, hashes passwords with bcrypt and holds a single active session, which
// is enough for local development and for exercising the session layer.
package memory

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
)

// MinPasswordLength mirrors the hosted platform's minimum.
const MinPasswordLength = 6

// PopupFunc simulates the interactive part of a social sign-in. It returns
// the identity chosen in the pop-up or a coded error.
type PopupFunc func(ctx context.Context, provider identity.SocialProvider) (*identity.Identity, error)

// BlockedPopup is the default PopupFunc: there is no browser to open.
func BlockedPopup(context.Context, identity.SocialProvider) (*identity.Identity, error) {
	return nil, identity.NewError(identity.CodePopupBlocked, "no browser available to open the sign-in window")
}

type account struct {
	identity identity.Identity
	hash     []byte
	disabled bool
}

type Provider struct {
	*identity.Broadcaster

	mu       sync.Mutex
	accounts map[string]*account // by lower-cased email
	byUID    map[string]*account
	popup    PopupFunc
	now      func() time.Time
	cost     int
}

type Option func(*Provider)

// WithPopup replaces the pop-up simulation.
func WithPopup(fn PopupFunc) Option {
	return func(p *Provider) { p.popup = fn }
}

// WithBcryptCost sets the hashing cost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New returns a provider with no accounts. The initial session state is
// "signed out" and is published right away, the same way a platform SDK
// resolves an empty local session.
func New(opts ...Option) *Provider {
	p := &Provider{
		Broadcaster: identity.NewBroadcaster(),
		accounts:    make(map[string]*account),
		byUID:       make(map[string]*account),
		popup:       BlockedPopup,
		now:         time.Now,
		cost:        bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(p)
	}
	p.Publish(nil)
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return identity.NewError(identity.CodeInvalidEmail, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return identity.NewError(identity.CodeInvalidEmail, "malformed email address")
	}
	return nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, identity.WrapError(identity.CodeNetworkFailed, err)
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	p.mu.Lock()
	acc, ok := p.accounts[email]
	var disabled bool
	if ok {
		disabled = acc.disabled
	}
	p.mu.Unlock()
	if !ok {
		return nil, identity.NewError(identity.CodeUserNotFound, "no account for this email")
	}
	if disabled {
		return nil, identity.NewError(identity.CodeUserDisabled, "account disabled")
	}
	if acc.hash == nil {
		return nil, identity.NewError(identity.CodeInvalidCredential, "account has no password, use its social provider")
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, identity.NewError(identity.CodeWrongPassword, "wrong password")
		}
		return nil, identity.WrapError(identity.CodeInternal, err)
	}

	return p.startSession(acc), nil
}

func (p *Provider) CreateAccountWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, identity.WrapError(identity.CodeNetworkFailed, err)
	}
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, identity.NewError(identity.CodeWeakPassword, "password should be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, identity.WrapError(identity.CodeInternal, err)
	}

	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return nil, identity.NewError(identity.CodeEmailAlreadyInUse, "email already in use")
	}
	now := p.now()
	acc := &account{
		identity: identity.Identity{
			UID:        uuid.NewString(),
			Email:      email,
			ProviderID: "password",
			CreatedAt:  now,
		},
		hash: hash,
	}
	p.accounts[email] = acc
	p.byUID[acc.identity.UID] = acc
	p.mu.Unlock()

	return p.startSession(acc), nil
}

func (p *Provider) SignInWithPopup(ctx context.Context, provider identity.SocialProvider) (*identity.Session, error) {
	picked, err := p.popup(ctx, provider)
	if err != nil {
		return nil, err
	}
	if picked == nil || picked.Email == "" {
		return nil, identity.NewError(identity.CodeInternal, "pop-up returned no account")
	}
	email := normalizeEmail(picked.Email)

	p.mu.Lock()
	acc, ok := p.accounts[email]
	if !ok {
		acc = &account{
			identity: identity.Identity{
				UID:           uuid.NewString(),
				Email:         email,
				DisplayName:   picked.DisplayName,
				PhotoURL:      picked.PhotoURL,
				EmailVerified: true,
				CreatedAt:     p.now(),
			},
		}
		p.accounts[email] = acc
		p.byUID[acc.identity.UID] = acc
	}
	if acc.disabled {
		p.mu.Unlock()
		return nil, identity.NewError(identity.CodeUserDisabled, "account disabled")
	}
	acc.identity.ProviderID = provider.ID
	p.mu.Unlock()

	return p.startSession(acc), nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return identity.WrapError(identity.CodeNetworkFailed, err)
	}
	p.Publish(nil)
	return nil
}

// Disable marks the account with uid as disabled. Future sign-ins fail with
// auth/user-disabled.
func (p *Provider) Disable(uid string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.byUID[uid]
	if ok {
		acc.disabled = true
	}
	return ok
}

func (p *Provider) startSession(acc *account) *identity.Session {
	p.mu.Lock()
	now := p.now()
	acc.identity.LastSignInAt = now
	ident := acc.identity
	p.mu.Unlock()

	p.Publish(&ident)

	return &identity.Session{
		Identity:  ident,
		IDToken:   "memory." + ident.UID,
		ExpiresAt: now.Add(time.Hour),
	}
}
