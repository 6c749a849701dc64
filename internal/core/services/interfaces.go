package services

import (
	"context"

	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/endpoints"
	"cinefund/internal/pkg/response"
)

// Note: the API client in internal/adapters/api satisfies UserAPI, MovieAPI and FundingAPI
// Note: session.Store satisfies SessionStore

// UserAPI defines the user service calls used by AuthService
type UserAPI interface {
	LoginUser(ctx context.Context, req domain.LoginRequest) (*response.Envelope[domain.User], error)
	RegisterUser(ctx context.Context, req domain.RegisterRequest) (*response.Envelope[domain.User], error)
	GetUserByUsername(ctx context.Context, name endpoints.Username) (*response.Envelope[domain.User], error)
}

// MovieAPI defines the movie service calls used by MovieService
type MovieAPI interface {
	GetAllMovies(ctx context.Context) (*response.Envelope[[]domain.Movie], error)
	GetMovieByID(ctx context.Context, id endpoints.MovieID) (*response.Envelope[domain.Movie], error)
}

// FundingAPI defines the funding service calls used by InvestmentService
type FundingAPI interface {
	CreateInvestment(ctx context.Context, req domain.InvestmentRequest) (*response.Envelope[domain.Investment], error)
	ConfirmInvestment(ctx context.Context, tx endpoints.TransactionID) (*response.Envelope[domain.Investment], error)
	CancelInvestment(ctx context.Context, tx endpoints.TransactionID, reason string) (*response.Envelope[domain.Investment], error)
	GetInvestmentsByUserGateway(ctx context.Context, id endpoints.UserID) (*response.Envelope[[]domain.Investment], error)
	ProcessReturns(ctx context.Context, id endpoints.MovieID, totalRevenue float64) (*response.Envelope[domain.ProducerReturnResult], error)
	ProcessReturnsForProducer(ctx context.Context, producer endpoints.ProducerID, movie endpoints.MovieID, req domain.ReturnRequest) (*response.Envelope[domain.ProducerReturnResult], error)
	ProcessReturnsForAllProducerMovies(ctx context.Context, producer endpoints.ProducerID, revenues map[int64]float64) (*response.Envelope[domain.BulkReturnResult], error)
	GetProducerReturnSummary(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[domain.ReturnSummary], error)
	GetInvestorsForProducer(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[[]domain.Investor], error)
}

// SessionStore defines the session operations the controllers need
type SessionStore interface {
	IsAuthenticated() bool
	CurrentUser(ctx context.Context) (*domain.UserSummary, error)
	SetCurrentUser(ctx context.Context, user *domain.UserSummary) error
	SetDisplay(ctx context.Context, user domain.UserSummary) error
	Logout(ctx context.Context) error
}

// AuthState is the authentication state of the front-end
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// SessionObserver is notified on every auth state transition
type SessionObserver interface {
	SessionChanged(ctx context.Context, state AuthState, user *domain.UserSummary)
}
