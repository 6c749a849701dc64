package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cinefund/internal/core/domain"
	"cinefund/internal/logger"
	"cinefund/internal/pkg/endpoints"

	"go.uber.org/zap"
)

// FilterAll disables status filtering
const FilterAll = "all"

// MovieService keeps the last fetched movie listing and the message shown in
// its place
type MovieService struct {
	movies  MovieAPI
	session SessionStore
	log     *zap.Logger

	mu      sync.RWMutex
	all     []domain.Movie
	message string
}

// NewMovieService creates a new movie service
func NewMovieService(movies MovieAPI, session SessionStore, log *zap.Logger) *MovieService {
	return &MovieService{
		movies:  movies,
		session: session,
		log:     logger.OrNop(log),
		message: MsgLoginToBrowse,
	}
}

// Load fetches the listing. The returned error is nil when the backend
// simply has no movies; Message explains the empty listing either way.
func (s *MovieService) Load(ctx context.Context) ([]domain.Movie, error) {
	if !s.session.IsAuthenticated() {
		s.set(nil, MsgLoginToBrowse)
		return nil, withMessage(domain.ErrNotLoggedIn, MsgLoginToBrowse)
	}

	env, err := s.movies.GetAllMovies(ctx)
	if err != nil {
		s.log.Warn("failed to load movies", zap.Error(err))
		s.set(nil, MsgLoadFailed)
		return nil, withMessage(err, MsgLoadFailed)
	}
	if !env.Success || env.Data == nil || len(*env.Data) == 0 {
		s.set(nil, MsgNoMovies)
		return nil, nil
	}

	s.set(*env.Data, "")
	return s.Listing(), nil
}

func (s *MovieService) set(movies []domain.Movie, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = movies
	s.message = message
}

// Listing returns a copy of the last fetched movies
func (s *MovieService) Listing() []domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Movie(nil), s.all...)
}

// Message returns the text shown instead of the listing, empty when movies are shown
func (s *MovieService) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// Filter selects movies by status from the last fetched listing without
// fetching. "all" returns everything; the match ignores case.
func (s *MovieService) Filter(status string) []domain.Movie {
	return FilterMovies(s.Listing(), status)
}

// FilterMovies is the predicate behind Filter; order is preserved
func FilterMovies(movies []domain.Movie, status string) []domain.Movie {
	if status == "" || strings.EqualFold(status, FilterAll) {
		return movies
	}
	var out []domain.Movie
	for _, m := range movies {
		if strings.EqualFold(string(m.Status), status) {
			out = append(out, m)
		}
	}
	return out
}

// Details fetches one movie
func (s *MovieService) Details(ctx context.Context, id int64) (*domain.Movie, error) {
	env, err := s.movies.GetMovieByID(ctx, endpoints.MovieID(id))
	if err != nil {
		return nil, err
	}
	if !env.Success || env.Data == nil {
		return nil, withMessage(domain.ErrMovieNotFound, messageOr(env.Message, fmt.Sprintf("Movie %d not found.", id)))
	}
	return env.Data, nil
}

// CanInvest reports whether user may invest in movie
func CanInvest(movie domain.Movie, user *domain.UserSummary) bool {
	return user != nil && movie.Status == domain.MovieFunding && user.Role == domain.RoleInvestor
}

// SessionChanged reloads on login and clears the listing on logout
func (s *MovieService) SessionChanged(ctx context.Context, state AuthState, _ *domain.UserSummary) {
	if state != Authenticated {
		s.set(nil, MsgLoginToBrowse)
		return
	}
	// failures are reflected in Message
	_, _ = s.Load(ctx)
}
