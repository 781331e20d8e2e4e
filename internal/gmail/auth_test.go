package gmail

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mikezhu1928477/Google/internal/tokenstore"
)

const testClientSecret = `{
  "installed": {
    "client_id": "test-client.apps.googleusercontent.com",
    "project_id": "test-project",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost"]
  }
}`

func newTestAuthManager(t *testing.T) *AuthManager {
	t.Helper()
	dir := t.TempDir()
	credPath := filepath.Join(dir, "gmail_credentials.json")
	require.NoError(t, os.WriteFile(credPath, []byte(testClientSecret), 0600))

	mgr, err := NewAuthManager(credPath, filepath.Join(dir, "gmail_token.json"))
	require.NoError(t, err)
	return mgr
}

func TestNewAuthManagerParsesClientSecret(t *testing.T) {
	mgr := newTestAuthManager(t)

	assert.Equal(t, "test-client.apps.googleusercontent.com", mgr.oauthConfig.ClientID)
	assert.Contains(t, mgr.oauthConfig.Scopes, "https://www.googleapis.com/auth/gmail.send")
	assert.False(t, mgr.HasToken())
}

func TestNewAuthManagerRejectsServiceAccountKey(t *testing.T) {
	dir := t.TempDir()
	credPath := filepath.Join(dir, "service-account.json")
	saJSON := `{"type":"service_account","project_id":"p","client_email":"robot@p.iam.gserviceaccount.com"}`
	require.NoError(t, os.WriteFile(credPath, []byte(saJSON), 0600))

	_, err := NewAuthManager(credPath, filepath.Join(dir, "token.json"))
	assert.Error(t, err, "a service-account key is not an OAuth client secret")
}

func TestTokenSourceRequiresCachedToken(t *testing.T) {
	mgr := newTestAuthManager(t)

	_, err := mgr.TokenSource(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestHasTokenAcceptsRefreshableToken(t *testing.T) {
	mgr := newTestAuthManager(t)

	// Expired, but refreshable.
	require.NoError(t, mgr.store.Save(&oauth2.Token{
		AccessToken:  "expired",
		RefreshToken: "1//refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}))
	assert.True(t, mgr.HasToken())

	// Expired with no refresh token is unusable.
	require.NoError(t, mgr.store.Save(&oauth2.Token{
		AccessToken: "expired",
		Expiry:      time.Now().Add(-time.Hour),
	}))
	assert.False(t, mgr.HasToken())

	_, err := mgr.TokenSource(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestClearToken(t *testing.T) {
	mgr := newTestAuthManager(t)
	require.NoError(t, mgr.store.Save(&oauth2.Token{
		AccessToken: "live",
		Expiry:      time.Now().Add(time.Hour),
	}))
	require.True(t, mgr.HasToken())

	require.NoError(t, mgr.ClearToken())
	assert.False(t, mgr.HasToken())
}

type staticTokenSource struct {
	tok *oauth2.Token
}

func (s *staticTokenSource) Token() (*oauth2.Token, error) {
	return s.tok, nil
}

func TestPersistingTokenSourceSavesRefreshedToken(t *testing.T) {
	store, err := tokenstore.New(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, err)

	old := &oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Hour)}
	require.NoError(t, store.Save(old))

	refreshed := &oauth2.Token{AccessToken: "new", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
	src := &persistingTokenSource{
		base:  &staticTokenSource{tok: refreshed},
		store: store,
		last:  old,
	}

	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", persisted.AccessToken, "refreshed token must be written back")
}
