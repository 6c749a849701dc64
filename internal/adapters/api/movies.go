package api

import (
	"context"
	"net/http"
	"net/url"

	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/endpoints"
	"cinefund/internal/pkg/response"
)

func (c *Client) GetAllMovies(ctx context.Context) (*response.Envelope[[]domain.Movie], error) {
	return get[[]domain.Movie](ctx, c, endpoints.MoviesAll, nil, Gateway)
}

func (c *Client) GetMovieByID(ctx context.Context, id endpoints.MovieID) (*response.Envelope[domain.Movie], error) {
	path, err := endpoints.MovieByID(id)
	return get[domain.Movie](ctx, c, path, err, Gateway)
}

// GetMoviesForFunding lists movies currently open for investment
func (c *Client) GetMoviesForFunding(ctx context.Context) (*response.Envelope[[]domain.Movie], error) {
	return get[[]domain.Movie](ctx, c, endpoints.MoviesFunding, nil, Gateway)
}

func (c *Client) GetMoviesByProducer(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[[]domain.Movie], error) {
	path, err := endpoints.MoviesByProducer(id)
	return get[[]domain.Movie](ctx, c, path, err, Direct)
}

func (c *Client) GetMoviesByStatus(ctx context.Context, status endpoints.MovieStatus) (*response.Envelope[[]domain.Movie], error) {
	path, err := endpoints.MoviesByStatus(status)
	return get[[]domain.Movie](ctx, c, path, err, Direct)
}

func (c *Client) GetMoviesByGenre(ctx context.Context, genre endpoints.Genre) (*response.Envelope[[]domain.Movie], error) {
	path, err := endpoints.MoviesByGenre(genre)
	return get[[]domain.Movie](ctx, c, path, err, Direct)
}

func (c *Client) SearchMovies(ctx context.Context, keyword string) (*response.Envelope[[]domain.Movie], error) {
	path := endpoints.WithQuery(endpoints.MoviesSearch, url.Values{"keyword": {keyword}})
	return get[[]domain.Movie](ctx, c, path, nil, Direct)
}

func (c *Client) GetMoviesByBudgetRange(ctx context.Context, minBudget, maxBudget float64) (*response.Envelope[[]domain.Movie], error) {
	path := endpoints.WithQuery(endpoints.MoviesBudgetRange, url.Values{
		"minBudget": {formatAmount(minBudget)},
		"maxBudget": {formatAmount(maxBudget)},
	})
	return get[[]domain.Movie](ctx, c, path, nil, Direct)
}

func (c *Client) CreateMovie(ctx context.Context, input domain.MovieInput) (*response.Envelope[domain.Movie], error) {
	return call[domain.Movie](ctx, c, http.MethodPost, endpoints.MoviesCreate, input, Direct)
}

func (c *Client) UpdateMovie(ctx context.Context, id endpoints.MovieID, input domain.MovieInput) (*response.Envelope[domain.Movie], error) {
	path, err := endpoints.MovieUpdate(id)
	if err != nil {
		return nil, err
	}
	return call[domain.Movie](ctx, c, http.MethodPut, path, input, Direct)
}

func (c *Client) UpdateMovieStatus(ctx context.Context, id endpoints.MovieID, status domain.MovieStatus) (*response.Envelope[domain.Movie], error) {
	path, err := endpoints.MovieUpdateStatus(id)
	if err != nil {
		return nil, err
	}
	path = endpoints.WithQuery(path, url.Values{"status": {string(status)}})
	return call[domain.Movie](ctx, c, http.MethodPut, path, nil, Direct)
}

// UpdateMovieFunding adds amount to the raised total of a movie
func (c *Client) UpdateMovieFunding(ctx context.Context, id endpoints.MovieID, amount float64) (*response.Envelope[domain.Movie], error) {
	path, err := endpoints.MovieUpdateFunding(id)
	if err != nil {
		return nil, err
	}
	path = endpoints.WithQuery(path, url.Values{"amount": {formatAmount(amount)}})
	return call[domain.Movie](ctx, c, http.MethodPut, path, nil, Direct)
}
