package toolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rolekeeper/internal/identity"
	"github.com/dmitrijs2005/rolekeeper/internal/logging"
)

// DefaultBaseURL is the production endpoint. The local emulator serves the
// same API under http://localhost:9099/identitytoolkit.googleapis.com.
const DefaultBaseURL = "https://identitytoolkit.googleapis.com"

type Provider struct {
	*identity.Broadcaster

	apiKey  string
	baseURL string
	client  *http.Client
	cache   SessionCache
	popup   Popup
	logger  logging.Logger
	now     func() time.Time
}

type Option func(*Provider)

func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

func WithSessionCache(c SessionCache) Option {
	return func(p *Provider) { p.cache = c }
}

func WithPopup(popup Popup) Option {
	return func(p *Provider) { p.popup = popup }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New creates the provider and resolves the initial session: the cached one
// if it is still valid, otherwise none.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	p := &Provider{
		Broadcaster: identity.NewBroadcaster(),
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logging.Discard(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	p.Publish(p.restore(ctx))
	return p, nil
}

func (p *Provider) restore(ctx context.Context) *identity.Identity {
	if p.cache == nil {
		return nil
	}
	sess, err := p.cache.Load(ctx)
	if err != nil {
		p.logger.Warn(ctx, "cached session unreadable", "error", err)
		return nil
	}
	if sess == nil {
		return nil
	}
	if !sess.ExpiresAt.IsZero() && !p.now().Before(sess.ExpiresAt) {
		p.logger.Info(ctx, "cached session expired", "uid", sess.Identity.UID)
		if err := p.cache.Clear(ctx); err != nil {
			p.logger.Warn(ctx, "clear cached session", "error", err)
		}
		return nil
	}
	return &sess.Identity
}

// authResponse covers the fields shared by signInWithPassword, signUp and
// signInWithIdp.
type authResponse struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoUrl"`
	IDToken       string `json:"idToken"`
	RefreshToken  string `json:"refreshToken"`
	ExpiresIn     string `json:"expiresIn"`
	EmailVerified bool   `json:"emailVerified"`
	ProviderID    string `json:"providerId"`
}

func (p *Provider) call(ctx context.Context, method string, body any) (*authResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, identity.WrapError(identity.CodeInternal, err)
	}

	endpoint := fmt.Sprintf("%s/v1/accounts:%s?key=%s", p.baseURL, method, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, identity.WrapError(identity.CodeInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if err := json.Unmarshal(data, &ae); err != nil || ae.Error.Message == "" {
			return nil, identity.NewError(identity.CodeInternal, fmt.Sprintf("unexpected status %d", resp.StatusCode))
		}
		code, detail := codeForMessage(ae.Error.Message)
		return nil, identity.NewError(code, detail)
	}

	var out authResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, identity.WrapError(identity.CodeInternal, fmt.Errorf("decode %s response: %w", method, err))
	}
	return &out, nil
}

func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	resp, err := p.call(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return p.startSession(ctx, resp, "password")
}

func (p *Provider) CreateAccountWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	resp, err := p.call(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	return p.startSession(ctx, resp, "password")
}

func (p *Provider) SignInWithPopup(ctx context.Context, provider identity.SocialProvider) (*identity.Session, error) {
	if p.popup == nil {
		return nil, identity.NewError(identity.CodePopupBlocked, "no interactive sign-in available")
	}
	idToken, err := p.popup.Authorize(ctx, provider)
	if err != nil {
		return nil, err
	}

	postBody := url.Values{"id_token": {idToken}, "providerId": {provider.ID}}
	resp, err := p.call(ctx, "signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	})
	if err != nil {
		return nil, err
	}
	if resp.ProviderID == "" {
		resp.ProviderID = provider.ID
	}
	return p.startSession(ctx, resp, resp.ProviderID)
}

func (p *Provider) SignOut(ctx context.Context) error {
	if p.cache != nil {
		if err := p.cache.Clear(ctx); err != nil {
			return identity.WrapError(identity.CodeInternal, err)
		}
	}
	p.Publish(nil)
	return nil
}

func (p *Provider) startSession(ctx context.Context, resp *authResponse, providerID string) (*identity.Session, error) {
	now := p.now()
	sess := &identity.Session{
		Identity: identity.Identity{
			UID:           resp.LocalID,
			Email:         resp.Email,
			DisplayName:   resp.DisplayName,
			PhotoURL:      resp.PhotoURL,
			ProviderID:    providerID,
			EmailVerified: resp.EmailVerified,
			LastSignInAt:  now,
		},
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
	if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil {
		sess.ExpiresAt = now.Add(time.Duration(secs) * time.Second)
	}

	if resp.IDToken != "" {
		claims, err := parseClaims(resp.IDToken)
		if err != nil {
			p.logger.Warn(ctx, "id token claims unavailable", "uid", resp.LocalID, "error", err)
		} else {
			sess.Identity.Claims = claims
			sess.Identity.EmailVerified = sess.Identity.EmailVerified || claimBool(claims, "email_verified")
			if t := claimTime(claims, "auth_time"); !t.IsZero() {
				sess.Identity.LastSignInAt = t
			}
		}
	}

	if p.cache != nil {
		if err := p.cache.Save(ctx, sess); err != nil {
			p.logger.Warn(ctx, "session not cached", "uid", sess.Identity.UID, "error", err)
		}
	}

	p.Publish(&sess.Identity)
	return sess, nil
}
