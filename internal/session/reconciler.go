package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/identity"
	"github.com/dmitrijs2005/rolekeeper/internal/logging"
	"github.com/dmitrijs2005/rolekeeper/internal/roles"
)

// Actions is the capability bundle handed to consumers.
type Actions interface {
	State() State
	Subscribe(fn func(State)) (cancel func())
	WaitReady(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Signup(ctx context.Context, email, password string) (*identity.Identity, error)
	LoginWithGoogle(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Reconciler keeps the published session State in step with the identity
// platform and the role store. It is the only writer of its Store.
type Reconciler struct {
	provider identity.Provider
	roles    roles.Repository
	logger   logging.Logger
	tracer   trace.Tracer
	store    *Store
	inbox    *mailbox

	social           identity.SocialProvider
	reconcileTimeout time.Duration

	mu          sync.Mutex
	started     bool
	closed      bool
	unsubscribe func()
	cancel      context.CancelFunc
	done        chan struct{}

	readyOnce sync.Once
	ready     chan struct{}
}

// Option configures a Reconciler.
type Option func(*Reconciler)

const tracerName = "github.com/dmitrijs2005/rolekeeper/internal/session"

// WithSocialProvider changes the provider used by LoginWithGoogle.
func WithSocialProvider(sp identity.SocialProvider) Option {
	return func(r *Reconciler) { r.social = sp }
}

// WithTracerProvider sets where spans go; the global provider is used
// otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Reconciler) { r.tracer = tp.Tracer(tracerName) }
}

// WithReconcileTimeout bounds the role lookup for a single notification.
// Zero means no local timeout.
func WithReconcileTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.reconcileTimeout = d }
}

// New returns a Reconciler over provider and repo. Nothing happens until
// Start.
func New(provider identity.Provider, repo roles.Repository, logger logging.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		provider: provider,
		roles:    repo,
		logger:   logger.With("component", "session"),
		tracer:   otel.Tracer(tracerName),
		store:    newStore(),
		inbox:    newMailbox(),
		social:   identity.GoogleProvider(),
		ready:    make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Start subscribes to the platform's session changes and begins reconciling
// them. It returns immediately; use WaitReady to block until the initial
// state is known. Reconciliation stops when ctx is done or Close is called.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(loopCtx)
	r.unsubscribe = r.provider.Subscribe(r.inbox.push)

	r.logger.Debug(ctx, "session subscription opened")
	return nil
}

// Close cancels the platform subscription and stops the reconciliation loop.
// A reconciliation in flight is abandoned and its result never published.
func (r *Reconciler) Close() {
	r.mu.Lock()
	if !r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	unsubscribe, cancel, done := r.unsubscribe, r.cancel, r.done
	r.mu.Unlock()

	unsubscribe()
	cancel()
	<-done
}

func (r *Reconciler) State() State {
	return r.store.Get()
}

func (r *Reconciler) Subscribe(fn func(State)) func() {
	return r.store.Subscribe(fn)
}

// WaitReady blocks until the first notification has been reconciled.
func (r *Reconciler) WaitReady(ctx context.Context) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.done)
	for {
		for {
			ident, ok := r.inbox.pop()
			if !ok {
				break
			}
			r.handle(ctx, ident)
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-r.inbox.signal:
		}
	}
}

// handle reconciles one notification and publishes the outcome.
func (r *Reconciler) handle(ctx context.Context, ident *identity.Identity) {
	ctx, span := r.tracer.Start(ctx, "session.reconcile",
		trace.WithAttributes(attribute.Bool("session.present", ident != nil)))
	defer span.End()

	if ident == nil {
		r.logger.Info(ctx, "session ended")
		r.publish(State{Ready: true})
		return
	}

	role, err := r.reconcileRole(ctx, ident)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		recordError(span, err)
		r.logger.Error(ctx, "role reconciliation failed", "uid", ident.UID, "error", err)
		r.publish(State{Ready: true, Err: err})
		return
	}

	span.SetAttributes(attribute.String("user.id", ident.UID), attribute.String("user.role", role))
	r.logger.Info(ctx, "session started", "uid", ident.UID, "email", ident.Email, "role", role)
	r.publish(State{User: &User{Identity: *ident, Role: role}, Ready: true})
}

func (r *Reconciler) publish(st State) {
	r.store.set(st)
	r.readyOnce.Do(func() { close(r.ready) })
}

// reconcileRole reads the user's Role Record, creating it with the default
// role when it does not exist yet.
func (r *Reconciler) reconcileRole(ctx context.Context, ident *identity.Identity) (string, error) {
	if r.reconcileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.reconcileTimeout)
		defer cancel()
	}

	rec, err := r.roles.Get(ctx, ident.UID)
	if err == nil {
		return roles.ResolveRole(rec), nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("role reconciliation for %s: %w", ident.UID, err)
	}

	created, err := r.roles.Create(ctx, roles.NewRecord(ident.UID, ident.Email))
	if err != nil {
		return "", fmt.Errorf("role reconciliation for %s: %w", ident.UID, err)
	}
	if created {
		r.logger.Info(ctx, "role record created", "uid", ident.UID, "role", roles.DefaultRole)
		return roles.DefaultRole, nil
	}

	// Someone else (signup, another client) created it in between.
	rec, err = r.roles.Get(ctx, ident.UID)
	if err != nil {
		return "", fmt.Errorf("role reconciliation for %s: %w", ident.UID, err)
	}
	return roles.ResolveRole(rec), nil
}

// Login signs in with email and password. The session change arrives
// through the provider subscription.
func (r *Reconciler) Login(ctx context.Context, email, password string) (err error) {
	ctx, span := r.tracer.Start(ctx, "session.login")
	defer func() { endSpan(span, err) }()

	if _, err := r.provider.SignInWithPassword(ctx, email, password); err != nil {
		r.logger.Error(ctx, "login failed", "email", email, "code", identity.CodeOf(err), "error", err)
		return err
	}
	return nil
}

// Signup creates the account and writes its Role Record right away, without
// waiting for the session notification.
func (r *Reconciler) Signup(ctx context.Context, email, password string) (_ *identity.Identity, err error) {
	ctx, span := r.tracer.Start(ctx, "session.signup")
	defer func() { endSpan(span, err) }()

	sess, err := r.provider.CreateAccountWithPassword(ctx, email, password)
	if err != nil {
		r.logger.Error(ctx, "signup failed", "email", email, "code", identity.CodeOf(err), "error", err)
		return nil, err
	}
	ident := sess.Identity.Clone()

	rec := roles.NewRecord(ident.UID, ident.Email)
	if _, err := r.roles.Create(ctx, rec); err != nil {
		r.logger.Error(ctx, "role record write failed", "uid", rec.ID, "error", err)
		return ident, fmt.Errorf("create role record for %s: %w", rec.ID, err)
	}
	return ident, nil
}

// LoginWithGoogle runs the social pop-up sign-in. A blocked pop-up is
// reported as ErrPopupBlocked.
func (r *Reconciler) LoginWithGoogle(ctx context.Context) (err error) {
	ctx, span := r.tracer.Start(ctx, "session.login_with_popup",
		trace.WithAttributes(attribute.String("identity.provider", r.social.ID)))
	defer func() { endSpan(span, err) }()

	if _, err := r.provider.SignInWithPopup(ctx, r.social); err != nil {
		code := identity.CodeOf(err)
		r.logger.Error(ctx, "social login failed", "provider", r.social.ID, "code", code, "error", err)
		if code == identity.CodePopupBlocked {
			return ErrPopupBlocked
		}
		return err
	}
	return nil
}

// Logout ends the platform session.
func (r *Reconciler) Logout(ctx context.Context) (err error) {
	ctx, span := r.tracer.Start(ctx, "session.logout")
	defer func() { endSpan(span, err) }()

	if err := r.provider.SignOut(ctx); err != nil {
		r.logger.Error(ctx, "logout failed", "code", identity.CodeOf(err), "error", err)
		return err
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	if code := identity.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("identity.error_code", code))
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		recordError(span, err)
	}
	span.End()
}
