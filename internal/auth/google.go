package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"neolist/internal/config"
	"neolist/internal/logging"
	"neolist/internal/store"
)

const (
	// Firestore access goes through the datastore scope.
	datastoreScope = "https://www.googleapis.com/auth/datastore"

	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5
)

// Scopes requested at sign-in.
var Scopes = []string{"openid", "email", datastoreScope}

// Google signs users in with an installed-app OAuth flow and keeps the
// token and session in the config directory.
type Google struct {
	cfg    *config.Config
	logger *log.Logger

	mu     sync.Mutex
	source oauth2.TokenSource // saved token, resolved by Source on first use

	// Prompt receives the authorization URL during SignIn.
	Prompt io.Writer
}

// NewGoogle creates a Google identity over the files in cfg.Dir.
func NewGoogle(cfg *config.Config, logger *log.Logger, prompt io.Writer) *Google {
	if prompt == nil {
		prompt = io.Discard
	}
	return &Google{cfg: cfg, logger: logging.OrDiscard(logger), Prompt: prompt}
}

// UserID returns the saved session's user, or "" without a token.
func (g *Google) UserID() string {
	s, ok := g.Session()
	if !ok {
		return ""
	}
	return s.UserID
}

// Session returns the saved session if a token is also present.
func (g *Google) Session() (Session, bool) {
	if !g.cfg.HasToken() {
		return Session{}, false
	}
	s, err := LoadSession(g.cfg.SessionPath())
	if err != nil {
		if !os.IsNotExist(err) {
			g.logger.Warn("unreadable session", "err", err)
		}
		return Session{}, false
	}
	return s, s.UserID != ""
}

// SignOut removes the token and session. Errors are logged.
func (g *Google) SignOut() {
	g.forgetSource()
	if err := g.cfg.RemoveToken(); err != nil {
		g.logger.Error("failed to remove token", "err", err)
	}
}

// Source returns a token source over whatever token is saved when a
// request is made. Clients built while signed out start working after
// SignIn, and stop after SignOut.
func (g *Google) Source(ctx context.Context) oauth2.TokenSource {
	return savedSource{ctx: ctx, g: g}
}

type savedSource struct {
	ctx context.Context
	g   *Google
}

// Token implements oauth2.TokenSource. Without a saved token it fails with
// store.ErrUnauthenticated.
func (s savedSource) Token() (*oauth2.Token, error) {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	if s.g.source == nil {
		if !s.g.cfg.HasToken() {
			return nil, store.ErrUnauthenticated
		}
		ts, err := s.g.TokenSource(s.ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrUnauthenticated, err)
		}
		s.g.source = ts
	}
	return s.g.source.Token()
}

func (g *Google) forgetSource() {
	g.mu.Lock()
	g.source = nil
	g.mu.Unlock()
}

// TokenSource returns an auto-refreshing token source for the saved token.
func (g *Google) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	oauthConfig, err := g.oauthConfig()
	if err != nil {
		return nil, err
	}
	tokenData, err := os.ReadFile(g.cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	return oauthConfig.TokenSource(ctx, &token), nil
}

// Valid reports whether the saved token can still be refreshed.
func (g *Google) Valid(ctx context.Context) bool {
	if _, ok := g.Session(); !ok {
		return false
	}
	data, err := os.ReadFile(g.cfg.TokenPath())
	if err != nil {
		return false
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil || token.RefreshToken == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ts, err := g.TokenSource(ctx)
	if err != nil {
		return false
	}
	_, err = ts.Token()
	return err == nil
}

func (g *Google) oauthConfig() (*oauth2.Config, error) {
	if !g.cfg.HasOAuthClient() {
		return nil, fmt.Errorf("%w in %s", ErrNoClient, g.cfg.Dir)
	}
	clientJSON, err := os.ReadFile(g.cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// SignIn runs the loopback OAuth flow with PKCE, saves the token and
// session, and returns the user ID from the ID token.
func (g *Google) SignIn(ctx context.Context) (string, error) {
	oauthConfig, err := g.oauthConfig()
	if err != nil {
		return "", err
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		return "", fmt.Errorf("could not bind to local port for OAuth callback")
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()
	authURL := oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	fmt.Fprintln(g.Prompt, "Open this URL in your browser:")
	fmt.Fprintln(g.Prompt, authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("oauth state mismatch"))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("no code in callback"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Signed in to neolist</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			sendErr(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return "", err
	case <-time.After(oauthCallbackTimeout):
		return "", fmt.Errorf("oauth callback timed out")
	case <-ctx.Done():
		return "", ErrCancelled
	}

	exchangeCtx, cancelExchange := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancelExchange()

	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("failed to exchange code for token: %w", err)
	}

	rawID, _ := token.Extra("id_token").(string)
	session, err := SessionFromIDToken(rawID)
	if err != nil {
		return "", err
	}

	if err := g.cfg.EnsureDir(); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := saveToken(g.cfg.TokenPath(), token); err != nil {
		return "", fmt.Errorf("failed to save token: %w", err)
	}
	if err := SaveSession(g.cfg.SessionPath(), session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	g.forgetSource()
	g.logger.Debug("signed in", "user", session.UserID, "email", session.Email)
	return session.UserID, nil
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		addr := fmt.Sprintf("localhost:%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}

// saveToken saves an OAuth token to a file with mode 0600.
func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
