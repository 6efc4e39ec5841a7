package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/config"
	"github.com/dmitrijs2005/rolekeeper/internal/filex"
	"github.com/dmitrijs2005/rolekeeper/internal/identity"
	"github.com/dmitrijs2005/rolekeeper/internal/identity/memory"
	"github.com/dmitrijs2005/rolekeeper/internal/identity/toolkit"
	"github.com/dmitrijs2005/rolekeeper/internal/migrations"
)

// openBrowser is a test seam for toolkit.OpenBrowser.
var openBrowser = toolkit.OpenBrowser

func (a *App) newProvider(ctx context.Context) (identity.Provider, error) {
	switch a.config.IdentityProvider {
	case config.ProviderMemory, "":
		return memory.New(memory.WithPopup(a.promptPopup)), nil
	case config.ProviderToolkit:
		return a.newToolkitProvider(ctx)
	default:
		return nil, fmt.Errorf("%w: identity provider %q", common.ErrorUnknownBackend, a.config.IdentityProvider)
	}
}

func (a *App) newToolkitProvider(ctx context.Context) (*toolkit.Provider, error) {
	c := a.config
	opts := []toolkit.Option{
		toolkit.WithBaseURL(c.ToolkitBaseURL),
		toolkit.WithLogger(a.logger.With("component", "toolkit")),
	}

	if c.SessionDB != "" {
		if _, err := filex.EnsureParentDir(c.SessionDB); err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite", c.SessionDB)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if _, err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
			return nil, fmt.Errorf("migration error: %w", err)
		}
		opts = append(opts, toolkit.WithSessionCache(toolkit.NewSQLiteSessionCache(db)))
	}

	if c.GoogleClientID != "" {
		opts = append(opts, toolkit.WithPopup(&toolkit.GooglePopup{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			Port:         c.GoogleCallbackPort,
			Open:         a.showAuthURL,
		}))
	}

	return toolkit.New(ctx, c.APIKey, opts...)
}

// showAuthURL prints the sign-in URL and tries to open it in a browser.
func (a *App) showAuthURL(url string) error {
	printlnFn("Continue sign-in in your browser:", url)
	return openBrowser(url)
}

// promptPopup stands in for the Google account chooser when the in-memory
// platform is used.
func (a *App) promptPopup(_ context.Context, provider identity.SocialProvider) (*identity.Identity, error) {
	email, err := getEmail(a.reader, a.out, fmt.Sprintf("Choose a %s account (email, empty to cancel)", provider.ID))
	if err != nil {
		return nil, identity.WrapError(identity.CodePopupClosedByUser, err)
	}
	if email == "" {
		return nil, identity.NewError(identity.CodePopupClosedByUser, "no account chosen")
	}
	return &identity.Identity{Email: email}, nil
}
