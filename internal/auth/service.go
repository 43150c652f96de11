package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"moodlog/internal/core"
	"moodlog/internal/store"
)

// Session is returned by Register and Login.
type Session struct {
	User  core.User `json:"user"`
	Token string    `json:"token"`
}

// Service registers users and logs them in.
type Service struct {
	users  store.UserStore
	tokens *TokenManager
	now    func() time.Time
}

func NewService(users store.UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens, now: time.Now}
}

// Register creates the account and returns a session for it.
// It returns store.ErrConflict when the email is taken.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (Session, error) {
	u := core.User{
		ID:          uuid.NewString(),
		Email:       strings.TrimSpace(email),
		DisplayName: strings.TrimSpace(displayName),
	}
	if u.DisplayName == "" {
		// Default greeting name is the local part of the address.
		u.DisplayName, _, _ = strings.Cut(u.Email, "@")
	}
	if err := u.Validate(); err != nil {
		return Session{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	created, err := s.users.CreateUser(ctx, u, hash)
	if err != nil {
		return Session{}, fmt.Errorf("register: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", created.ID)
	return s.session(ctx, created)
}

// Login checks the credentials and records the login time.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, hash, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if err := CheckPassword(hash, password); err != nil {
		slog.WarnContext(ctx, "Failed login attempt", "user_id", u.ID)
		return Session{}, err
	}
	return s.session(ctx, u)
}

func (s *Service) session(ctx context.Context, u core.User) (Session, error) {
	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		slog.WarnContext(ctx, "Failed to record login time", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = now.Truncate(time.Second)
	}

	token, err := s.tokens.GenerateToken(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}
