package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/rolekeeper/internal/config"
	"github.com/dmitrijs2005/rolekeeper/internal/logging"
	"github.com/dmitrijs2005/rolekeeper/internal/roles"
	"github.com/dmitrijs2005/rolekeeper/internal/session"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	reconciler *session.Reconciler
	session    session.Actions
	roles      roles.Repository
	closers    []func() error
	reader     *bufio.Reader
	out        io.Writer
}

// NewApp builds the identity provider and role store selected by c and a
// session reconciler over them. Nothing is subscribed until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	a := &App{
		config: c,
		logger: logging.New(os.Stderr, c.LogFormat, c.LogLevel),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	provider, err := a.newProvider(ctx)
	if err != nil {
		a.logger.Error(ctx, "identity provider init failed", "provider", c.IdentityProvider, "error", err)
		a.close()
		return nil, err
	}

	repo, err := roles.Open(ctx, roleOptions(c))
	if err != nil {
		a.logger.Error(ctx, "role store init failed", "store", c.RoleStore, "error", err)
		a.close()
		return nil, err
	}
	a.roles = repo
	a.closers = append(a.closers, repo.Close)

	a.reconciler = session.New(provider, repo, a.logger, session.WithReconcileTimeout(c.ReconcileTimeout))
	a.session = a.reconciler
	return a, nil
}

func roleOptions(c *config.Config) roles.Options {
	return roles.Options{
		Kind:                 c.RoleStore,
		DSN:                  c.RoleStoreDSN,
		FirestoreProject:     c.FirestoreProject,
		FirestoreCredentials: c.FirestoreCredentials,
		FirestoreCollection:  c.FirestoreCollection,
		S3: roles.S3Options{
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			Bucket:    c.S3.Bucket,
			Prefix:    c.S3.Prefix,
		},
	}
}

// Run starts the reconciler, waits for the initial session and runs the REPL
// until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx = session.WithSession(ctx, a.session)
	if err := a.reconciler.Start(ctx); err != nil {
		return err
	}
	stop := a.watchSession()
	defer stop()

	printlnFn("Welcome to rolekeeper (type 'help' for commands)")
	a.waitReady(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) waitReady(ctx context.Context) {
	waitCtx := ctx
	if a.config.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.config.ReadyTimeout)
		defer cancel()
	}
	if err := a.session.WaitReady(waitCtx); err != nil {
		a.logger.Warn(ctx, "session not resolved", "error", err)
		printlnFn("Session is still being resolved; commands may not reflect it yet.")
	}
}

func (a *App) close() {
	if a.reconciler != nil {
		a.reconciler.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn(context.Background(), "shutdown", "error", err)
	}
}
