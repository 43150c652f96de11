package google

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

const testClientJSON = `{"installed":{"client_id":"cid.apps.googleusercontent.com","client_secret":"shh",` +
	`"redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth",` +
	`"token_uri":"https://oauth2.googleapis.com/token"}}`

func TestOAuthConfigFromEnv(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "")
		t.Setenv("GOOGLE_OAUTH_CLIENT_FILE", "")
		if _, err := OAuthConfigFromEnv(); !errors.Is(err, ErrNoOAuthClient) {
			t.Fatalf("err = %v, want ErrNoOAuthClient", err)
		}
	})

	t.Run("inline json", func(t *testing.T) {
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testClientJSON)
		cfg, err := OAuthConfigFromEnv()
		if err != nil {
			t.Fatalf("OAuthConfigFromEnv: %v", err)
		}
		if cfg.ClientID != "cid.apps.googleusercontent.com" || len(cfg.Scopes) != 1 {
			t.Fatalf("cfg = %+v", cfg)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.json")
		if err := os.WriteFile(path, []byte(testClientJSON), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "")
		t.Setenv("GOOGLE_OAUTH_CLIENT_FILE", path)
		if _, err := OAuthConfigFromEnv(); err != nil {
			t.Fatalf("OAuthConfigFromEnv: %v", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", `{"web":{}}`)
		if _, err := OAuthConfigFromEnv(); err == nil {
			t.Fatal("expected error for client without redirect URIs")
		}
	})
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	expiry := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	in := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", Expiry: expiry}

	if err := SaveToken(path, in); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	out, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if out.AccessToken != "at" || out.RefreshToken != "rt" || !out.Expiry.Equal(expiry) {
		t.Fatalf("token = %+v", out)
	}
}

func TestLoadTokenRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(path); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := LoadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTokenFileFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", "")
	if got := TokenFileFromEnv(); got != "token.json" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", "/tmp/tok.json")
	if got := TokenFileFromEnv(); got != "/tmp/tok.json" {
		t.Fatalf("got %q", got)
	}
}
