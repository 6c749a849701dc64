package sandbox

import (
	"fmt"
	"strings"

	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/password"
)

func validRole(r domain.Role) bool {
	switch r {
	case domain.RoleInvestor, domain.RoleProducer, domain.RoleAdmin:
		return true
	}
	return false
}

// Register creates a user. The role defaults to INVESTOR.
func (s *Store) Register(req domain.RegisterRequest) (domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = domain.RoleInvestor
	}
	req.Role = domain.Role(strings.ToUpper(string(req.Role)))

	switch {
	case req.Username == "":
		return domain.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return domain.User{}, fmt.Errorf("%w: a valid email is required", ErrValidation)
	case !password.ValidatePassword(req.Password):
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, password.MinLength)
	case !validRole(req.Role):
		return domain.User{}, fmt.Errorf("%w: unknown role %s", ErrValidation, req.Role)
	}

	hash, err := password.HashWithCost(req.Password, s.hashCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, req.Username) {
			return domain.User{}, fmt.Errorf("%w: username %s is taken", ErrConflict, req.Username)
		}
		if strings.EqualFold(u.Email, req.Email) {
			return domain.User{}, fmt.Errorf("%w: email %s is already registered", ErrConflict, req.Email)
		}
	}

	s.nextUser++
	rec := &userRecord{
		User: domain.User{
			UserSummary: domain.UserSummary{
				ID:        s.nextUser,
				FirstName: strings.TrimSpace(req.FirstName),
				LastName:  strings.TrimSpace(req.LastName),
				Username:  req.Username,
				Email:     req.Email,
				Role:      req.Role,
			},
			IsActive:  true,
			CreatedAt: s.timestamp(),
		},
		passwordHash: hash,
	}
	s.users[rec.ID] = rec
	return rec.User, nil
}

// Authenticate checks credentials against username or email
func (s *Store) Authenticate(usernameOrEmail, pass string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, usernameOrEmail) || strings.EqualFold(u.Email, usernameOrEmail) {
			if !u.IsActive || !password.Verify(pass, u.passwordHash) {
				return domain.User{}, ErrInvalidCredentials
			}
			return u.User, nil
		}
	}
	return domain.User{}, ErrInvalidCredentials
}

func (s *Store) User(id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u.User, nil
}

func (s *Store) UserByUsername(name string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, name) {
			return u.User, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", name, ErrNotFound)
}

// Users returns users matching keep, ordered by id
func (s *Store) Users(keep func(domain.User) bool) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.User{}
	for _, id := range sortedKeys(s.users) {
		if u := s.users[id].User; keep == nil || keep(u) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Store) UsersByRole(role string) []domain.User {
	return s.Users(func(u domain.User) bool { return strings.EqualFold(string(u.Role), role) })
}

// SearchUsers matches keyword against names, username and email
func (s *Store) SearchUsers(keyword string) []domain.User {
	return s.Users(func(u domain.User) bool {
		return containsFold(u.FirstName, keyword) || containsFold(u.LastName, keyword) ||
			containsFold(u.Username, keyword) || containsFold(u.Email, keyword)
	})
}

func (s *Store) UpdateUser(id int64, update domain.UserUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if update.FirstName != nil {
		u.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		u.LastName = *update.LastName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	return u.User, nil
}

// AdjustWallet adds amount to the wallet; the balance may not go negative
func (s *Store) AdjustWallet(id int64, amount float64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustWalletLocked(id, amount)
}

func (s *Store) adjustWalletLocked(id int64, amount float64) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if u.WalletBalance+amount < 0 {
		return domain.User{}, ErrInsufficientFunds
	}
	u.WalletBalance += amount
	return u.User, nil
}
