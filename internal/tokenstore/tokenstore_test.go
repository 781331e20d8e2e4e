package tokenstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "gmail_token.json"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "ya29.test-access-token",
		RefreshToken: "1//test-refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)
	tok := testToken()

	if err := store.Save(tok); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.AccessToken != tok.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, tok.AccessToken)
	}
	if loaded.RefreshToken != tok.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, tok.RefreshToken)
	}
	if !loaded.Expiry.Equal(tok.Expiry) {
		t.Errorf("Expiry = %v, want %v", loaded.Expiry, tok.Expiry)
	}
}

func TestTokenFileIsEncrypted(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(testToken()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "ya29.test-access-token") {
		t.Error("token file contains plaintext access token")
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Error("token file looks like plaintext JSON")
	}
}

func TestLoadLegacyPlaintextToken(t *testing.T) {
	// Token files written before encryption was added are bare JSON.
	path := filepath.Join(t.TempDir(), "gmail_token.json")
	plaintext := `{"access_token":"legacy-access","refresh_token":"legacy-refresh","token_type":"Bearer"}`
	if err := os.WriteFile(path, []byte(plaintext), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tok, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tok.AccessToken != "legacy-access" {
		t.Errorf("AccessToken = %q, want %q", tok.AccessToken, "legacy-access")
	}
	if tok.RefreshToken != "legacy-refresh" {
		t.Errorf("RefreshToken = %q, want %q", tok.RefreshToken, "legacy-refresh")
	}
}

func TestLoadRejectsTamperedCiphertext(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(testToken()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	// Flip a character in the middle of the base64 payload.
	tampered := []byte(string(data))
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}
	if err := os.WriteFile(store.Path(), tampered, 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Load() succeeded on tampered ciphertext, want error")
	}
}

func TestClearAndHasToken(t *testing.T) {
	store := newTestStore(t)

	if store.HasToken() {
		t.Error("HasToken() = true before Save")
	}
	if err := store.Save(testToken()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.HasToken() {
		t.Error("HasToken() = false after Save")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if store.HasToken() {
		t.Error("HasToken() = true after Clear")
	}

	// Clearing an already-missing file is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestSaveNilToken(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(nil); err == nil {
		t.Error("Save(nil) succeeded, want error")
	}
}

func TestKeyIsStablePerDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gmail_token.json")

	first, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := first.Save(testToken()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A second Store over the same directory reuses the salt and can
	// decrypt what the first wrote.
	second, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tok, err := second.Load()
	if err != nil {
		t.Fatalf("Load() with fresh store error = %v", err)
	}
	if tok.AccessToken != "ya29.test-access-token" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
}
