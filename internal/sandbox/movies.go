package sandbox

import (
	"fmt"
	"strings"

	"cinefund/internal/core/domain"
)

func validateMovie(in domain.MovieInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case in.Budget <= 0:
		return fmt.Errorf("%w: budget must be positive", ErrValidation)
	case in.ProducerID <= 0:
		return fmt.Errorf("%w: producerId is required", ErrValidation)
	}
	return nil
}

func applyMovieInput(m *domain.Movie, in domain.MovieInput) {
	m.Title = strings.TrimSpace(in.Title)
	m.Description = in.Description
	m.Storyline = in.Storyline
	m.Budget = in.Budget
	m.ExpectedReturnPercentage = in.ExpectedReturnPercentage
	m.ProducerID = in.ProducerID
	m.ProducerName = in.ProducerName
	m.DirectorName = in.DirectorName
	m.Cast = in.Cast
	m.Genre = in.Genre
	m.ReleaseDate = in.ReleaseDate
	m.FundingDeadline = in.FundingDeadline
	m.PosterURL = in.PosterURL
	m.TrailerURL = in.TrailerURL
}

// CreateMovie adds a movie in FUNDING status
func (s *Store) CreateMovie(in domain.MovieInput) (domain.Movie, error) {
	if err := validateMovie(in); err != nil {
		return domain.Movie{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ProducerName == "" {
		if p, ok := s.users[in.ProducerID]; ok {
			in.ProducerName = p.FullName()
		}
	}

	s.nextMovie++
	m := &domain.Movie{ID: s.nextMovie, Status: domain.MovieFunding, IsActive: true}
	applyMovieInput(m, in)
	s.movies[m.ID] = m
	return *m, nil
}

func (s *Store) Movie(id int64) (domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	return *m, nil
}

// Movies returns active movies matching keep, ordered by id
func (s *Store) Movies(keep func(domain.Movie) bool) []domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Movie{}
	for _, id := range sortedKeys(s.movies) {
		m := *s.movies[id]
		if m.IsActive && (keep == nil || keep(m)) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) MoviesForFunding() []domain.Movie {
	return s.Movies(func(m domain.Movie) bool { return m.Status == domain.MovieFunding })
}

func (s *Store) MoviesByProducer(id int64) []domain.Movie {
	return s.Movies(func(m domain.Movie) bool { return m.ProducerID == id })
}

func (s *Store) MoviesByStatus(status string) []domain.Movie {
	return s.Movies(func(m domain.Movie) bool { return strings.EqualFold(string(m.Status), status) })
}

func (s *Store) MoviesByGenre(genre string) []domain.Movie {
	return s.Movies(func(m domain.Movie) bool { return strings.EqualFold(m.Genre, genre) })
}

// SearchMovies matches keyword against title, description, director and genre
func (s *Store) SearchMovies(keyword string) []domain.Movie {
	return s.Movies(func(m domain.Movie) bool {
		return containsFold(m.Title, keyword) || containsFold(m.Description, keyword) ||
			containsFold(m.DirectorName, keyword) || containsFold(m.Genre, keyword)
	})
}

// MoviesByBudgetRange returns movies with min <= budget <= max
func (s *Store) MoviesByBudgetRange(minBudget, maxBudget float64) []domain.Movie {
	return s.Movies(func(m domain.Movie) bool { return m.Budget >= minBudget && m.Budget <= maxBudget })
}

func (s *Store) UpdateMovie(id int64, in domain.MovieInput) (domain.Movie, error) {
	if err := validateMovie(in); err != nil {
		return domain.Movie{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	applyMovieInput(m, in)
	return *m, nil
}

// UpdateMovieStatus sets any non-empty status; unknown values are stored as given
func (s *Store) UpdateMovieStatus(id int64, status string) (domain.Movie, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return domain.Movie{}, fmt.Errorf("%w: status is required", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	m.Status = domain.MovieStatus(status)
	return *m, nil
}

// AddFunding adds amount to the raised total. A FUNDING movie that reaches
// its budget becomes FUNDED.
func (s *Store) AddFunding(id int64, amount float64) (domain.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFundingLocked(id, amount)
}

func (s *Store) addFundingLocked(id int64, amount float64) (domain.Movie, error) {
	m, ok := s.movies[id]
	if !ok {
		return domain.Movie{}, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	m.RaisedAmount += amount
	if m.Status == domain.MovieFunding && m.RaisedAmount >= m.Budget {
		m.Status = domain.MovieFunded
	}
	return *m, nil
}
