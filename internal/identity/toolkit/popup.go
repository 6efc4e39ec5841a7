package toolkit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
	"github.com/dmitrijs2005/rolekeeper/internal/identity"
)

// Popup runs the interactive part of a social sign-in and returns the
// provider's ID token.
type Popup interface {
	Authorize(ctx context.Context, provider identity.SocialProvider) (idToken string, err error)
}

// BrowserOpener shows url to the user.
type BrowserOpener func(url string) error

// OpenBrowser launches the system browser.
func OpenBrowser(targetURL string) error {
	targetURL = strings.TrimSpace(targetURL)
	if targetURL == "" {
		return errors.New("url was empty")
	}
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, targetURL)
	return exec.Command(cmd, args...).Start()
}

const defaultPopupTimeout = 5 * time.Minute

// GooglePopup is a loopback OAuth 2.0 flow against Google with PKCE. The
// browser is redirected to a one-shot HTTP endpoint on 127.0.0.1.
type GooglePopup struct {
	ClientID     string
	ClientSecret string
	// Port of the callback listener; 0 picks a free one.
	Port    int
	Timeout time.Duration
	Open    BrowserOpener
	// Endpoint defaults to Google's.
	Endpoint oauth2.Endpoint
}

func (g *GooglePopup) Authorize(ctx context.Context, provider identity.SocialProvider) (string, error) {
	if g.ClientID == "" {
		return "", identity.NewError(identity.CodeOperationNotAllowed, "google sign-in is not configured")
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultPopupTimeout
	}
	open := g.Open
	if open == nil {
		open = OpenBrowser
	}
	endpoint := g.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}

	state, err := common.MakeRandHexString(16)
	if err != nil {
		return "", identity.WrapError(identity.CodeInternal, err)
	}
	cb, err := newCallbackEndpoint(g.Port, state)
	if err != nil {
		return "", identity.WrapError(identity.CodeInternal, err)
	}
	defer cb.close()

	conf := &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  cb.redirectURL,
		Scopes:       provider.Scopes,
	}
	verifier := oauth2.GenerateVerifier()
	authOpts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)}
	for k, v := range provider.CustomParameters {
		authOpts = append(authOpts, oauth2.SetAuthURLParam(k, v))
	}

	if err := open(conf.AuthCodeURL(state, authOpts...)); err != nil {
		return "", identity.WrapError(identity.CodePopupBlocked, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	code, err := cb.wait(waitCtx)
	if err != nil {
		return "", err
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", identity.WrapError(identity.CodeInvalidCredential, err)
		}
		return "", transportError(err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", identity.NewError(identity.CodeInternal, "token response has no id_token")
	}
	return idToken, nil
}

type callbackResult struct {
	code string
	err  error
}

// callbackEndpoint receives the authorization redirect.
type callbackEndpoint struct {
	server      *http.Server
	redirectURL string
	state       string
	results     chan callbackResult
}

func newCallbackEndpoint(port int, state string) (*callbackEndpoint, error) {
	ln, err := net.Listen("tcp4", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for callback: %w", err)
	}
	actual := ln.Addr().(*net.TCPAddr).Port

	cb := &callbackEndpoint{
		redirectURL: fmt.Sprintf("http://127.0.0.1:%d/auth/callback", actual),
		state:       state,
		results:     make(chan callbackResult, 1),
	}

	r := chi.NewRouter()
	r.Get("/auth/callback", cb.handleCallback)
	r.Get("/cancel", cb.handleCancel)

	cb.server = &http.Server{
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() { _ = cb.server.Serve(ln) }()
	return cb, nil
}

func (cb *callbackEndpoint) deliver(res callbackResult) {
	select {
	case cb.results <- res:
	default:
	}
}

func (cb *callbackEndpoint) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("state") != cb.state:
		http.Error(w, "State mismatch", http.StatusBadRequest)
		cb.deliver(callbackResult{err: identity.NewError(identity.CodeInvalidCredential, "oauth state mismatch")})
	case q.Get("error") != "":
		http.Error(w, "Sign-in was not completed. You can close this window.", http.StatusOK)
		cb.deliver(callbackResult{err: identity.NewError(identity.CodePopupClosedByUser, q.Get("error"))})
	case q.Get("code") == "":
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		cb.deliver(callbackResult{err: identity.NewError(identity.CodeInternal, "missing authorization code")})
	default:
		_, _ = w.Write([]byte("Signed in. You can close this window."))
		cb.deliver(callbackResult{code: q.Get("code")})
	}
}

func (cb *callbackEndpoint) handleCancel(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("Sign-in canceled. You can close this window."))
	cb.deliver(callbackResult{err: identity.NewError(identity.CodePopupClosedByUser, "sign-in canceled")})
}

func (cb *callbackEndpoint) wait(ctx context.Context) (string, error) {
	select {
	case res := <-cb.results:
		return res.code, res.err
	case <-ctx.Done():
		return "", identity.WrapError(identity.CodePopupClosedByUser, ctx.Err())
	}
}

func (cb *callbackEndpoint) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = cb.server.Shutdown(ctx)
}
