package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/google/uuid"
	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/avolkov/spotsync/syncer/config"
)

// Session manages the user OAuth flow and the on-disk token cache.
// With a valid cached token no browser interaction happens.
type Session struct {
	auth        *spotifyauth.Authenticator
	tokenPath   string
	redirectURI string
}

// NewSession creates a session for the given application credentials.
func NewSession(creds *config.Credentials, tokenPath string) *Session {
	auth := spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistReadCollaborative,
		),
	)
	return &Session{
		auth:        auth,
		tokenPath:   tokenPath,
		redirectURI: creds.RedirectURI,
	}
}

// Client returns an authenticated API client, reusing the cached
// token when possible and falling back to the interactive
// authorization-code flow.
func (s *Session) Client(ctx context.Context) (*spotifyapi.Client, error) {
	if tok, err := s.loadToken(); err == nil {
		log.Printf("INFO: auth_token_cache_hit path=%s", s.tokenPath)
		return spotifyapi.New(s.auth.Client(ctx, tok)), nil
	}

	client, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// authorize runs the browser-based authorization-code flow with a
// local callback server and persists the resulting token.
func (s *Session) authorize(ctx context.Context) (*spotifyapi.Client, error) {
	addr, err := callbackAddr(s.redirectURI)
	if err != nil {
		return nil, &AuthError{Message: "invalid redirect URI", Original: err}
	}

	state := uuid.NewString()
	clientCh := make(chan *spotifyapi.Client, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		tok, err := s.auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "Couldn't get token", http.StatusForbidden)
			errCh <- &AuthError{Message: "token exchange failed", Original: err}
			return
		}
		if st := r.FormValue("state"); st != state {
			http.NotFound(w, r)
			errCh <- &AuthError{Message: fmt.Sprintf("state mismatch: %s", st)}
			return
		}
		if err := s.saveToken(tok); err != nil {
			log.Printf("WARN: auth_token_cache_write_failed path=%s error=%v", s.tokenPath, err)
		}
		fmt.Fprintf(w, "Login completed. You can close this window.")
		clientCh <- spotifyapi.New(s.auth.Client(r.Context(), tok))
	})

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- &AuthError{Message: "callback server failed", Original: err}
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := s.auth.AuthURL(state)
	fmt.Printf("Log in to Spotify by visiting this page in your browser:\n%s\n", authURL)
	log.Printf("INFO: auth_flow_started redirect=%s", s.redirectURI)

	select {
	case client := <-clientCh:
		log.Printf("INFO: auth_flow_complete token_cache=%s", s.tokenPath)
		return client, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token cache: %w", err)
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, fmt.Errorf("cached token expired with no refresh token")
	}
	return &tok, nil
}

func (s *Session) saveToken(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	// Token grants playlist access; keep it user-readable only.
	return os.WriteFile(s.tokenPath, data, 0600)
}

// callbackAddr derives the listen address from the redirect URI.
func callbackAddr(redirectURI string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", err
	}
	port := u.Port()
	if port == "" {
		port = "8080"
	}
	return ":" + port, nil
}
