package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/endpoints"
	"cinefund/internal/pkg/response"
)

// CreateInvestment records a PENDING investment
func (c *Client) CreateInvestment(ctx context.Context, req domain.InvestmentRequest) (*response.Envelope[domain.Investment], error) {
	return call[domain.Investment](ctx, c, http.MethodPost, endpoints.FundingInvest, req, Direct)
}

func (c *Client) ConfirmInvestment(ctx context.Context, tx endpoints.TransactionID) (*response.Envelope[domain.Investment], error) {
	path, err := endpoints.FundingConfirm(tx)
	if err != nil {
		return nil, err
	}
	return call[domain.Investment](ctx, c, http.MethodPut, path, nil, Direct)
}

// CancelInvestment cancels a pending investment; reason is optional
func (c *Client) CancelInvestment(ctx context.Context, tx endpoints.TransactionID, reason string) (*response.Envelope[domain.Investment], error) {
	path, err := endpoints.FundingCancel(tx)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		path = endpoints.WithQuery(path, url.Values{"reason": {reason}})
	}
	return call[domain.Investment](ctx, c, http.MethodPut, path, nil, Direct)
}

func (c *Client) GetInvestmentByID(ctx context.Context, id endpoints.InvestmentID) (*response.Envelope[domain.Investment], error) {
	path, err := endpoints.FundingByID(id)
	return get[domain.Investment](ctx, c, path, err, Direct)
}

func (c *Client) GetInvestmentByTransaction(ctx context.Context, tx endpoints.TransactionID) (*response.Envelope[domain.Investment], error) {
	path, err := endpoints.FundingByTransaction(tx)
	return get[domain.Investment](ctx, c, path, err, Direct)
}

func (c *Client) GetInvestmentsByUserDirect(ctx context.Context, id endpoints.UserID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingByUser(id)
	return get[[]domain.Investment](ctx, c, path, err, Direct)
}

func (c *Client) GetInvestmentsByUserGateway(ctx context.Context, id endpoints.UserID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingByUser(id)
	return get[[]domain.Investment](ctx, c, path, err, Gateway)
}

func (c *Client) GetInvestmentsByMovieDirect(ctx context.Context, id endpoints.MovieID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingByMovie(id)
	return get[[]domain.Investment](ctx, c, path, err, Direct)
}

func (c *Client) GetInvestmentsByMovieGateway(ctx context.Context, id endpoints.MovieID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingByMovie(id)
	return get[[]domain.Investment](ctx, c, path, err, Gateway)
}

func (c *Client) GetInvestmentsByProducerDirect(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingByProducer(id)
	return get[[]domain.Investment](ctx, c, path, err, Direct)
}

func (c *Client) GetInvestmentsByProducerGateway(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingByProducer(id)
	return get[[]domain.Investment](ctx, c, path, err, Gateway)
}

func (c *Client) GetConfirmedInvestmentsByMovie(ctx context.Context, id endpoints.MovieID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingConfirmedByMovie(id)
	return get[[]domain.Investment](ctx, c, path, err, Direct)
}

// GetUserMovieInvestments returns the ids of movies the user invested in
func (c *Client) GetUserMovieInvestments(ctx context.Context, id endpoints.UserID) (*response.Envelope[[]int64], error) {
	path, err := endpoints.FundingUserMovies(id)
	return get[[]int64](ctx, c, path, err, Direct)
}

// ProcessReturns distributes totalRevenue over the unpaid investments of a movie
func (c *Client) ProcessReturns(ctx context.Context, id endpoints.MovieID, totalRevenue float64) (*response.Envelope[domain.ProducerReturnResult], error) {
	path, err := endpoints.FundingProcessReturns(id)
	if err != nil {
		return nil, err
	}
	path = endpoints.WithQuery(path, url.Values{"totalRevenue": {formatAmount(totalRevenue)}})
	return call[domain.ProducerReturnResult](ctx, c, http.MethodPost, path, nil, Direct)
}

func (c *Client) GetUnpaidReturns(ctx context.Context) (*response.Envelope[[]domain.Investment], error) {
	return get[[]domain.Investment](ctx, c, endpoints.FundingUnpaidReturns, nil, Direct)
}

func (c *Client) GetUnpaidReturnsByMovie(ctx context.Context, id endpoints.MovieID) (*response.Envelope[[]domain.Investment], error) {
	path, err := endpoints.FundingUnpaidByMovie(id)
	return get[[]domain.Investment](ctx, c, path, err, Direct)
}

func (c *Client) GetInvestorsForProducer(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[[]domain.Investor], error) {
	path, err := endpoints.FundingProducerInvestors(id)
	return get[[]domain.Investor](ctx, c, path, err, Gateway)
}

func (c *Client) GetInvestorsForProducerMovie(ctx context.Context, producer endpoints.ProducerID, movie endpoints.MovieID) (*response.Envelope[[]domain.Investor], error) {
	path, err := endpoints.FundingProducerMovieInvestors(producer, movie)
	return get[[]domain.Investor](ctx, c, path, err, Gateway)
}

// ProcessReturnsForProducer pays returns for one movie of the producer
func (c *Client) ProcessReturnsForProducer(ctx context.Context, producer endpoints.ProducerID, movie endpoints.MovieID, req domain.ReturnRequest) (*response.Envelope[domain.ProducerReturnResult], error) {
	path, err := endpoints.FundingProducerReturns(producer, movie)
	if err != nil {
		return nil, err
	}
	return call[domain.ProducerReturnResult](ctx, c, http.MethodPost, path, req, Gateway)
}

// ProcessReturnsForAllProducerMovies pays returns for every listed movie;
// revenues maps movie id to that movie's revenue
func (c *Client) ProcessReturnsForAllProducerMovies(ctx context.Context, producer endpoints.ProducerID, revenues map[int64]float64) (*response.Envelope[domain.BulkReturnResult], error) {
	path, err := endpoints.FundingProducerAllReturns(producer)
	if err != nil {
		return nil, err
	}
	return call[domain.BulkReturnResult](ctx, c, http.MethodPost, path, BulkRevenueBody(revenues), Gateway)
}

// BulkRevenueBody encodes per-movie revenues as {"movie_<id>": revenue}
func BulkRevenueBody(revenues map[int64]float64) map[string]float64 {
	body := make(map[string]float64, len(revenues))
	for id, revenue := range revenues {
		body["movie_"+strconv.FormatInt(id, 10)] = revenue
	}
	return body
}

func (c *Client) GetProducerReturnSummary(ctx context.Context, id endpoints.ProducerID) (*response.Envelope[domain.ReturnSummary], error) {
	path, err := endpoints.FundingProducerReturnSummary(id)
	return get[domain.ReturnSummary](ctx, c, path, err, Gateway)
}
