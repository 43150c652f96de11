package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"moodlog/internal/core"
	"moodlog/internal/store"
	"moodlog/internal/store/memory"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestNewTokenManager(t *testing.T) {
	if _, err := NewTokenManager("short", time.Hour); err == nil {
		t.Error("expected error for a short secret")
	}
	m, err := NewTokenManager(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	if m.ttl != 24*time.Hour {
		t.Errorf("default ttl = %v", m.ttl)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.GenerateToken("user-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, raw := range []string{token, "Bearer " + token, "bearer " + token} {
		claims, err := m.ValidateToken(raw)
		if err != nil {
			t.Fatalf("ValidateToken(%q...): %v", raw[:10], err)
		}
		if claims.UserID != "user-1" || claims.Subject != "user-1" || claims.Issuer != "moodlog" {
			t.Errorf("claims = %+v", claims)
		}
	}
}

func TestValidateTokenRejects(t *testing.T) {
	m := newTestManager(t)
	valid, _ := m.GenerateToken("user-1")

	other, _ := NewTokenManager(strings.Repeat("x", 32), time.Hour)
	foreign, _ := other.GenerateToken("user-1")

	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.GenerateToken("user-1")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"bearer only", "Bearer ", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", stale, ErrInvalidToken},
		{"alg none", unsigned, ErrInvalidToken},
		{"tampered", valid + "x", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPasswords(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("CheckPassword: %v", err)
	}
	if err := CheckPassword(hash, "battery staple"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestServiceRegisterAndLogin(t *testing.T) {
	users := memory.New()
	svc := NewService(users, newTestManager(t))
	ctx := context.Background()

	sess, err := svc.Register(ctx, " Lisa@Example.com ", "correct horse", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Token == "" || sess.User.ID == "" {
		t.Fatalf("session = %+v", sess)
	}
	if sess.User.DisplayName != "Lisa" {
		t.Errorf("display name = %q, want local part", sess.User.DisplayName)
	}

	if _, err := svc.Register(ctx, "lisa@example.com", "another pass", "Lisa"); !errors.Is(err, store.ErrConflict) {
		t.Errorf("duplicate register err = %v, want ErrConflict", err)
	}
	if _, err := svc.Register(ctx, "no-at-sign", "correct horse", "X"); !errors.Is(err, core.ErrInvalidEmail) {
		t.Errorf("bad email err = %v", err)
	}

	login, err := svc.Login(ctx, "LISA@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != sess.User.ID || login.User.LastLoginAt.IsZero() {
		t.Errorf("login user = %+v", login.User)
	}

	if _, err := svc.Login(ctx, "lisa@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t)
	token, _ := m.GenerateToken("user-1")

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		setup    func(*http.Request)
		wantCode int
		wantUser string
	}{
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusNoContent, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) }, http.StatusNoContent, "user-1"},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if seen != tt.wantUser {
				t.Errorf("user = %q, want %q", seen, tt.wantUser)
			}
		})
	}
}

func TestUserIDFrom(t *testing.T) {
	if _, ok := UserIDFrom(context.Background()); ok {
		t.Error("empty context should carry no user")
	}
	if id, ok := UserIDFrom(WithUserID(context.Background(), "u1")); !ok || id != "u1" {
		t.Errorf("UserIDFrom = %q, %v", id, ok)
	}
}
