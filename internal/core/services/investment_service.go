package services

import (
	"context"
	"math"

	"cinefund/internal/core/domain"
	"cinefund/internal/logger"
	"cinefund/internal/pkg/endpoints"

	"go.uber.org/zap"
)

// Reloader refreshes the movie listing after a mutation
type Reloader interface {
	Load(ctx context.Context) ([]domain.Movie, error)
}

// InvestmentService handles investing and producer-side returns
type InvestmentService struct {
	funding FundingAPI
	session SessionStore
	movies  Reloader
	log     *zap.Logger
}

// NewInvestmentService creates a new investment service. movies may be nil.
func NewInvestmentService(funding FundingAPI, session SessionStore, movies Reloader, log *zap.Logger) *InvestmentService {
	return &InvestmentService{
		funding: funding,
		session: session,
		movies:  movies,
		log:     logger.OrNop(log),
	}
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Invest creates a PENDING investment in movie for the current user and
// reloads the listing
func (s *InvestmentService) Invest(ctx context.Context, movie domain.Movie, amount float64) (*domain.Investment, error) {
	if !validAmount(amount) {
		return nil, withMessage(domain.ErrInvalidAmount, MsgInvalidAmount)
	}
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, withMessage(domain.ErrNotLoggedIn, MsgLoginToInvest)
	}

	req := domain.InvestmentRequest{
		UserID:                   user.ID,
		MovieID:                  movie.ID,
		ProducerID:               movie.ProducerID,
		Amount:                   amount,
		UserName:                 user.FullName(),
		MovieTitle:               movie.Title,
		ProducerName:             movie.ProducerName,
		ExpectedReturnPercentage: movie.ExpectedReturnPercentage,
	}

	env, err := s.funding.CreateInvestment(ctx, req)
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, rejected(env.Message, "Investment was not accepted")
	}

	s.log.Info("investment created",
		zap.String("transaction_id", env.Data.TransactionID),
		zap.Int64("movie_id", movie.ID),
		zap.Float64("amount", amount),
	)

	if s.movies != nil {
		if _, err := s.movies.Load(ctx); err != nil {
			s.log.Warn("reload after invest failed", zap.Error(err))
		}
	}
	return env.Data, nil
}

// Confirm confirms a pending investment
func (s *InvestmentService) Confirm(ctx context.Context, tx string) (*domain.Investment, error) {
	env, err := s.funding.ConfirmInvestment(ctx, endpoints.TransactionID(tx))
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, rejected(env.Message, "Investment could not be confirmed")
	}
	return env.Data, nil
}

// Cancel cancels a pending investment
func (s *InvestmentService) Cancel(ctx context.Context, tx, reason string) error {
	env, err := s.funding.CancelInvestment(ctx, endpoints.TransactionID(tx), reason)
	if err != nil {
		return err
	}
	if !env.Success {
		return rejected(env.Message, "Investment could not be cancelled")
	}
	return nil
}

// MyInvestments lists the investments of the current user
func (s *InvestmentService) MyInvestments(ctx context.Context) ([]domain.Investment, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	env, err := s.funding.GetInvestmentsByUserGateway(ctx, endpoints.UserID(user.ID))
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, rejected(env.Message, "Investments could not be loaded")
	}
	if env.Data == nil {
		return nil, nil
	}
	return *env.Data, nil
}

// ============================================================
// Producer scope
// ============================================================

// ProcessReturns distributes revenue over all unpaid investments of a movie
func (s *InvestmentService) ProcessReturns(ctx context.Context, movieID int64, revenue float64) (*domain.ProducerReturnResult, error) {
	if !validAmount(revenue) {
		return nil, withMessage(domain.ErrInvalidRevenue, MsgInvalidRevenue)
	}
	if _, err := s.producer(ctx); err != nil {
		return nil, err
	}
	env, err := s.funding.ProcessReturns(ctx, endpoints.MovieID(movieID), revenue)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, rejected(env.Message, "Returns could not be processed")
	}
	if env.Data == nil {
		return &domain.ProducerReturnResult{MovieID: movieID, TotalRevenue: revenue}, nil
	}
	return env.Data, nil
}

// ProducerReturns pays returns for one movie owned by the current producer
func (s *InvestmentService) ProducerReturns(ctx context.Context, movieID int64, revenue float64, notes string) (*domain.ProducerReturnResult, error) {
	if !validAmount(revenue) {
		return nil, withMessage(domain.ErrInvalidRevenue, MsgInvalidRevenue)
	}
	user, err := s.producer(ctx)
	if err != nil {
		return nil, err
	}
	env, err := s.funding.ProcessReturnsForProducer(ctx, endpoints.ProducerID(user.ID), endpoints.MovieID(movieID),
		domain.ReturnRequest{TotalRevenue: revenue, Notes: notes})
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, rejected(env.Message, "Returns could not be processed")
	}
	return env.Data, nil
}

// BulkReturns pays returns for several movies at once; revenues maps movie id to revenue
func (s *InvestmentService) BulkReturns(ctx context.Context, revenues map[int64]float64) (*domain.BulkReturnResult, error) {
	for _, revenue := range revenues {
		if !validAmount(revenue) {
			return nil, withMessage(domain.ErrInvalidRevenue, MsgInvalidRevenue)
		}
	}
	user, err := s.producer(ctx)
	if err != nil {
		return nil, err
	}
	env, err := s.funding.ProcessReturnsForAllProducerMovies(ctx, endpoints.ProducerID(user.ID), revenues)
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, rejected(env.Message, "Returns could not be processed")
	}
	return env.Data, nil
}

// ReturnSummary returns the return position of the current producer
func (s *InvestmentService) ReturnSummary(ctx context.Context) (*domain.ReturnSummary, error) {
	user, err := s.producer(ctx)
	if err != nil {
		return nil, err
	}
	env, err := s.funding.GetProducerReturnSummary(ctx, endpoints.ProducerID(user.ID))
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, rejected(env.Message, "Summary could not be loaded")
	}
	return env.Data, nil
}

// Investors lists who invested in the current producer's movies
func (s *InvestmentService) Investors(ctx context.Context) ([]domain.Investor, error) {
	user, err := s.producer(ctx)
	if err != nil {
		return nil, err
	}
	env, err := s.funding.GetInvestorsForProducer(ctx, endpoints.ProducerID(user.ID))
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, rejected(env.Message, "Investors could not be loaded")
	}
	if env.Data == nil {
		return nil, nil
	}
	return *env.Data, nil
}

func (s *InvestmentService) currentUser(ctx context.Context) (*domain.UserSummary, error) {
	user, err := s.session.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.session.IsAuthenticated() {
		return nil, domain.ErrNotLoggedIn
	}
	return user, nil
}

// producer returns the current user when it may act in producer scope
func (s *InvestmentService) producer(ctx context.Context) (*domain.UserSummary, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleProducer && user.Role != domain.RoleAdmin {
		return nil, domain.ErrForbiddenRole
	}
	return user, nil
}
