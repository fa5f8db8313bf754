package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/programme-lv/arena/apiclient"
	"github.com/programme-lv/arena/validation"
)

const (
	TokenKey    = "token"
	RedirectKey = "redirectAfterLogin"
)

// Session holds the signed-in identity. It is created once per process,
// hydrated with Init and torn down with Close; pages receive it explicitly.
type Session struct {
	client    *apiclient.Client
	local     Storage
	transient Storage
	logger    *slog.Logger

	mu      sync.RWMutex
	user    *apiclient.User
	token   string
	loading bool
}

func New(client *apiclient.Client, local, transient Storage) *Session {
	return &Session{
		client:    client,
		local:     local,
		transient: transient,
		logger:    slog.Default().With("module", "session"),
	}
}

func (s *Session) SetLogger(l *slog.Logger) {
	s.logger = l
}

// Init verifies a stored token against the backend. Any failure, network
// errors included, clears the token; nothing is retried.
func (s *Session) Init(ctx context.Context) {
	token, ok := s.local.Get(TokenKey)
	if !ok || token == "" {
		return
	}

	s.mu.Lock()
	s.loading = true
	s.token = token
	s.mu.Unlock()
	s.client.SetToken(token)

	user, err := s.client.Profile(ctx).Get()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Info("stored token rejected, logging out", "error", err)
		s.clearLocked()
		return
	}
	s.user = &user
}

type LoginForm struct {
	Username string `form:"username" validate:"notblank"`
	Password string `form:"password" validate:"required"`
}

type RegisterForm struct {
	Username string `form:"username" validate:"notblank,min=3,max=32"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

// Login signs in and returns the path stored by RememberRedirect, or ""
// when there is nowhere to navigate.
func (s *Session) Login(ctx context.Context, username, password string) (string, error) {
	if err := validation.Struct(LoginForm{Username: username, Password: password}); err != nil {
		return "", err
	}

	payload, err := s.client.Login(ctx, apiclient.LoginParams{
		Username: username,
		Password: password,
	}).Get()
	if err != nil {
		return "", err
	}

	if err := s.establish(payload, username); err != nil {
		return "", err
	}
	return s.takeRedirect(), nil
}

// Register creates an account and signs in with it.
func (s *Session) Register(ctx context.Context, username, email, password string) (string, error) {
	form := RegisterForm{Username: username, Email: email, Password: password}
	if err := validation.Struct(form); err != nil {
		return "", err
	}

	payload, err := s.client.Register(ctx, apiclient.RegisterParams{
		Username: username,
		Email:    email,
		Password: password,
	}).Get()
	if err != nil {
		return "", err
	}

	if err := s.establish(payload, username); err != nil {
		return "", err
	}
	return s.takeRedirect(), nil
}

func (s *Session) establish(payload apiclient.AuthPayload, username string) error {
	if payload.Token == "" {
		return newErrMissingCredentials("the server did not return a token")
	}
	if err := s.local.Set(TokenKey, payload.Token); err != nil {
		return newErrStorage(err)
	}
	s.client.SetToken(payload.Token)

	user := payload.User
	if user == nil {
		user = userFromToken(payload.Token, username)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = payload.Token
	s.user = user
	return nil
}

type tokenClaims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	UUID     string `json:"uuid,omitempty"`
	jwt.RegisteredClaims
}

// userFromToken rebuilds a partial user from the token's claims. The
// signature is not checked here; the backend checks it on every call.
func userFromToken(token, username string) *apiclient.User {
	user := &apiclient.User{Username: username, Role: apiclient.RoleUser}

	claims := &tokenClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return user
	}
	if claims.Username != "" {
		user.Username = claims.Username
	}
	if claims.Role != "" {
		user.Role = apiclient.Role(claims.Role)
	}
	user.ID = claims.UUID
	if user.ID == "" {
		user.ID = claims.Subject
	}
	return user
}

func (s *Session) takeRedirect() string {
	path, ok := s.transient.Get(RedirectKey)
	if !ok {
		return ""
	}
	if err := s.transient.Remove(RedirectKey); err != nil {
		s.logger.Warn("failed to clear redirect path", "error", err)
	}
	return path
}

// RememberRedirect stores where to go after the next successful login.
func (s *Session) RememberRedirect(path string) {
	if err := s.transient.Set(RedirectKey, path); err != nil {
		s.logger.Warn("failed to store redirect path", "error", err)
	}
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	if err := s.local.Remove(TokenKey); err != nil {
		s.logger.Warn("failed to remove stored token", "error", err)
	}
	s.client.SetToken("")
	s.token = ""
	s.user = nil
}

// Close drops the in-memory identity without touching storage.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
}

func (s *Session) User() *apiclient.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.IsAdmin()
}

func (s *Session) Client() *apiclient.Client {
	return s.client
}
