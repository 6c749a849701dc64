// Package sandbox is an in-memory implementation of the CineFund user, movie
// and funding services, used for local development and end-to-end tests.
package sandbox

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"cinefund/internal/core/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store errors. Handlers map them to status codes.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidState       = errors.New("invalid state")
	ErrInsufficientFunds  = errors.New("insufficient wallet balance")
)

// DefaultExpectedReturn is applied to investments that do not name one
const DefaultExpectedReturn = 15.0

type userRecord struct {
	domain.User
	passwordHash string
}

type investmentRecord struct {
	domain.Investment
	createdAt time.Time
}

// Payout is a return payment made to an investor
type Payout struct {
	TransactionID string
	UserID        int64
	MovieID       int64
	ProducerID    int64
	Amount        float64
	PaidAt        time.Time
}

// Store holds all sandbox state. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	users       map[int64]*userRecord
	movies      map[int64]*domain.Movie
	investments map[int64]*investmentRecord
	payouts     []Payout

	nextUser, nextMovie, nextInvestment int64

	hashCost int
	now      func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithHashCost sets the bcrypt cost for new passwords
func WithHashCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:       make(map[int64]*userRecord),
		movies:      make(map[int64]*domain.Movie),
		investments: make(map[int64]*investmentRecord),
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newTransactionID returns prefix + 16 upper-case hex characters
func newTransactionID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(hex[:16])
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
