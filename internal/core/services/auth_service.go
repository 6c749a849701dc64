package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cinefund/internal/core/domain"
	"cinefund/internal/logger"
	"cinefund/internal/pkg/endpoints"

	"go.uber.org/zap"
)

// AuthService drives login, registration and logout and tells observers
// about every state change
type AuthService struct {
	users   UserAPI
	session SessionStore
	log     *zap.Logger

	mu        sync.Mutex
	state     AuthState
	observers []SessionObserver
}

// NewAuthService creates a new auth service in the Unauthenticated state
func NewAuthService(users UserAPI, session SessionStore, log *zap.Logger) *AuthService {
	return &AuthService{
		users:   users,
		session: session,
		log:     logger.OrNop(log),
	}
}

// Subscribe registers o for state changes
func (s *AuthService) Subscribe(o SessionObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// State returns the current state
func (s *AuthService) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Login authenticates and caches the user.
// When the login response carries no user, the user is looked up by name.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*domain.UserSummary, error) {
	env, err := s.users.LoginUser(ctx, domain.LoginRequest{UsernameOrEmail: usernameOrEmail, Password: password})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, withMessage(domain.ErrLoginRejected, messageOr(env.Message, "Invalid credentials"))
	}

	var user *domain.UserSummary
	if env.Data != nil {
		user = &env.Data.UserSummary
	}
	return s.complete(ctx, env.Token, user, usernameOrEmail)
}

// Register creates an account and logs it in
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.UserSummary, error) {
	env, err := s.users.RegisterUser(ctx, req)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, rejected(env.Message, "Registration was not accepted")
	}

	var user *domain.UserSummary
	if env.Data != nil {
		user = &env.Data.UserSummary
	}
	return s.complete(ctx, env.Token, user, req.Username)
}

// complete finishes a successful login or registration. Any failure clears
// the session so no token is left without its user.
func (s *AuthService) complete(ctx context.Context, token string, user *domain.UserSummary, username string) (*domain.UserSummary, error) {
	if token == "" {
		return nil, s.abort(ctx, withMessage(domain.ErrLoginRejected, "Server did not return a token"))
	}

	if user == nil {
		looked, err := s.lookup(ctx, username)
		if err != nil {
			return nil, s.abort(ctx, err)
		}
		user = looked
	}

	if err := s.session.SetCurrentUser(ctx, user); err != nil {
		return nil, s.abort(ctx, fmt.Errorf("failed to cache user: %w", err))
	}
	if err := s.session.SetDisplay(ctx, *user); err != nil {
		return nil, s.abort(ctx, fmt.Errorf("failed to cache user: %w", err))
	}

	s.log.Info("authenticated", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	s.transition(ctx, Authenticated, user)
	return user, nil
}

// abort drops any partial session and reports err
func (s *AuthService) abort(ctx context.Context, err error) error {
	if logoutErr := s.session.Logout(ctx); logoutErr != nil {
		s.log.Warn("failed to clear session after login error", zap.Error(logoutErr))
	}
	if s.State() == Authenticated {
		s.transition(ctx, Unauthenticated, nil)
	}
	return err
}

func (s *AuthService) lookup(ctx context.Context, username string) (*domain.UserSummary, error) {
	env, err := s.users.GetUserByUsername(ctx, endpoints.Username(username))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingUser, err)
	}
	if !env.Success || env.Data == nil {
		return nil, domain.ErrMissingUser
	}
	return &env.Data.UserSummary, nil
}

// Logout clears the session. Calling it while logged out is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.session.Logout(ctx)
	s.transition(ctx, Unauthenticated, nil)
	return err
}

// Restore derives the state from persisted data: authenticated iff both a
// cached user and a token exist
func (s *AuthService) Restore(ctx context.Context) (*domain.UserSummary, error) {
	user, err := s.session.CurrentUser(ctx)
	if err != nil && !errors.Is(err, domain.ErrSessionCorrupt) {
		return nil, err
	}
	if err != nil {
		s.log.Warn("discarding corrupt session", zap.Error(err))
		user = nil
	}

	if user != nil && s.session.IsAuthenticated() {
		s.transition(ctx, Authenticated, user)
		return user, nil
	}
	s.transition(ctx, Unauthenticated, nil)
	return nil, nil
}

func (s *AuthService) transition(ctx context.Context, state AuthState, user *domain.UserSummary) {
	s.mu.Lock()
	s.state = state
	observers := append([]SessionObserver(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.SessionChanged(ctx, state, user)
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
