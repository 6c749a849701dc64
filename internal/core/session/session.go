// Package session is the client-side view of who is logged in. The bearer
// token lives in the API client; the user snapshot and display fields live
// in a key-value store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"cinefund/internal/adapters/persistence/repositories"
	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/jwt"
)

// Persisted keys
const (
	KeyCurrentUser = "currentUser"
	KeyUserName    = "userName"
	KeyUserRole    = "userRole"
	KeyUserID      = "userId"
)

// ErrNotJWT is returned by TokenClaims for opaque tokens
var ErrNotJWT = jwt.ErrNotJWT

// TokenHolder owns the bearer token
type TokenHolder interface {
	Token() string
	SetToken(ctx context.Context, token string) error
}

// Display holds the denormalized fields shown in the header of the UI
type Display struct {
	UserName string
	Role     string
	UserID   string
}

// Store combines the token holder and the persisted user snapshot
type Store struct {
	tokens TokenHolder
	kv     repositories.KeyValueRepository
}

func New(tokens TokenHolder, kv repositories.KeyValueRepository) *Store {
	return &Store{tokens: tokens, kv: kv}
}

// IsAuthenticated reports whether a token is present
func (s *Store) IsAuthenticated() bool {
	return s.tokens.Token() != ""
}

// CurrentUser returns the cached user, or nil when none is cached
func (s *Store) CurrentUser(ctx context.Context) (*domain.UserSummary, error) {
	raw, ok, err := s.kv.Get(ctx, KeyCurrentUser)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" || raw == "null" {
		return nil, nil
	}

	var user domain.UserSummary
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionCorrupt, err)
	}
	return &user, nil
}

// SetCurrentUser replaces the cached user; nil removes it
func (s *Store) SetCurrentUser(ctx context.Context, user *domain.UserSummary) error {
	if user == nil {
		return s.kv.Delete(ctx, KeyCurrentUser)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyCurrentUser, string(raw))
}

// SetDisplay writes the display fields of user
func (s *Store) SetDisplay(ctx context.Context, user domain.UserSummary) error {
	name := user.FullName()
	if name == "" {
		name = user.Username
	}
	return errors.Join(
		s.kv.Set(ctx, KeyUserName, name),
		s.kv.Set(ctx, KeyUserRole, string(user.Role)),
		s.kv.Set(ctx, KeyUserID, strconv.FormatInt(user.ID, 10)),
	)
}

func (s *Store) Display(ctx context.Context) (Display, error) {
	var d Display
	for key, dst := range map[string]*string{
		KeyUserName: &d.UserName,
		KeyUserRole: &d.Role,
		KeyUserID:   &d.UserID,
	} {
		v, _, err := s.kv.Get(ctx, key)
		if err != nil {
			return Display{}, err
		}
		*dst = v
	}
	return d, nil
}

func (s *Store) ClearDisplay(ctx context.Context) error {
	return errors.Join(
		s.kv.Delete(ctx, KeyUserName),
		s.kv.Delete(ctx, KeyUserRole),
		s.kv.Delete(ctx, KeyUserID),
	)
}

// Logout clears the token and every cached user field. Safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) error {
	return errors.Join(
		s.tokens.SetToken(ctx, ""),
		s.kv.Delete(ctx, KeyCurrentUser),
		s.ClearDisplay(ctx),
	)
}

// TokenClaims decodes the current token without verifying it
func (s *Store) TokenClaims() (*jwt.Claims, error) {
	token := s.tokens.Token()
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}
	return jwt.ParseUnverified(token)
}
