package gmail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/mikezhu1928477/Google/internal/logger"
	"github.com/mikezhu1928477/Google/internal/tokenstore"
)

// ErrAuthRequired is returned when no usable token exists and the caller did
// not ask for an interactive flow.
var ErrAuthRequired = errors.New("gmail: authentication required")

// AuthManager handles the installed-app OAuth flow for Gmail and the cached
// token behind it.
type AuthManager struct {
	oauthConfig *oauth2.Config
	store       *tokenstore.Store
}

// NewAuthManager parses the OAuth client secrets file and opens the token
// store at tokenFile.
func NewAuthManager(credentialsFile, tokenFile string) (*AuthManager, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(b, gmailapi.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	store, err := tokenstore.New(tokenFile)
	if err != nil {
		return nil, err
	}

	return &AuthManager{oauthConfig: oauthConfig, store: store}, nil
}

// TokenPath returns the location of the cached token.
func (a *AuthManager) TokenPath() string {
	return a.store.Path()
}

// HasToken reports whether a cached token exists and can be read. An expired
// token with a refresh token still counts, since it can be refreshed.
func (a *AuthManager) HasToken() bool {
	tok, err := a.store.Load()
	if err != nil {
		return false
	}
	return tok.Valid() || tok.RefreshToken != ""
}

// TokenSource returns an oauth2.TokenSource backed by the cached token.
// Refreshed tokens are persisted so the next run does not refresh again.
// Returns ErrAuthRequired when no cached token exists.
func (a *AuthManager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := a.store.Load()
	if err != nil {
		return nil, ErrAuthRequired
	}
	if !tok.Valid() && tok.RefreshToken == "" {
		return nil, ErrAuthRequired
	}

	base := a.oauthConfig.TokenSource(ctx, tok)
	return &persistingTokenSource{base: base, store: a.store, last: tok}, nil
}

// Authenticate runs the interactive authorization-code flow: print the
// consent URL, read the code from in, exchange it, and persist the token.
func (a *AuthManager) Authenticate(ctx context.Context, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := a.oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Go to the following link in your browser then paste the authorization code:\n%s\n\nCode: ", authURL)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("unable to read authorization code: %w", err)
		}
		return nil, fmt.Errorf("no authorization code provided")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return nil, fmt.Errorf("no authorization code provided")
	}

	tok, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %w", err)
	}

	if err := a.store.Save(tok); err != nil {
		return nil, err
	}
	logger.Info("gmail token saved", "path", a.store.Path())

	return tok, nil
}

// ClearToken removes the cached token.
func (a *AuthManager) ClearToken() error {
	return a.store.Clear()
}

// persistingTokenSource saves tokens back to the store whenever the
// underlying source hands out a new one (i.e. after a refresh).
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store *tokenstore.Store
	last  *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		if err := p.store.Save(tok); err != nil {
			logger.Warn("failed to persist refreshed token", "error", err)
		} else {
			logger.Debug("refreshed token persisted", "expiry", tok.Expiry)
		}
		p.last = tok
	}

	return tok, nil
}
