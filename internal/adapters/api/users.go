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

// RegisterUser creates an account and, on success, adopts the returned token
func (c *Client) RegisterUser(ctx context.Context, req domain.RegisterRequest) (*response.Envelope[domain.User], error) {
	env, err := call[domain.User](ctx, c, http.MethodPost, endpoints.UsersRegister, req, Direct)
	if err != nil {
		return nil, err
	}
	return env, c.adoptToken(ctx, env.Success, env.Token)
}

// LoginUser authenticates and, on success, adopts the returned token
func (c *Client) LoginUser(ctx context.Context, req domain.LoginRequest) (*response.Envelope[domain.User], error) {
	env, err := call[domain.User](ctx, c, http.MethodPost, endpoints.UsersLogin, req, Direct)
	if err != nil {
		return nil, err
	}
	return env, c.adoptToken(ctx, env.Success, env.Token)
}

func (c *Client) adoptToken(ctx context.Context, success bool, token string) error {
	if !success || token == "" {
		return nil
	}
	return c.SetToken(ctx, token)
}

func (c *Client) GetUserByID(ctx context.Context, id endpoints.UserID) (*response.Envelope[domain.User], error) {
	path, err := endpoints.UserByID(id)
	return get[domain.User](ctx, c, path, err, Direct)
}

func (c *Client) GetUserByUsername(ctx context.Context, name endpoints.Username) (*response.Envelope[domain.User], error) {
	path, err := endpoints.UserByUsername(name)
	return get[domain.User](ctx, c, path, err, Direct)
}

func (c *Client) GetAllUsers(ctx context.Context) (*response.Envelope[[]domain.User], error) {
	return get[[]domain.User](ctx, c, endpoints.UsersAll, nil, Direct)
}

func (c *Client) GetUsersByRole(ctx context.Context, role endpoints.Role) (*response.Envelope[[]domain.User], error) {
	path, err := endpoints.UsersByRole(role)
	return get[[]domain.User](ctx, c, path, err, Direct)
}

// SearchUsers matches keyword against names, username and email
func (c *Client) SearchUsers(ctx context.Context, keyword string) (*response.Envelope[[]domain.User], error) {
	path := endpoints.WithQuery(endpoints.UsersSearch, url.Values{"keyword": {keyword}})
	return get[[]domain.User](ctx, c, path, nil, Direct)
}

func (c *Client) UpdateUser(ctx context.Context, id endpoints.UserID, update domain.UserUpdate) (*response.Envelope[domain.User], error) {
	path, err := endpoints.UserUpdate(id)
	if err != nil {
		return nil, err
	}
	return call[domain.User](ctx, c, http.MethodPut, path, update, Direct)
}

// UpdateWalletBalance adds amount (negative to debit) to the user's wallet
func (c *Client) UpdateWalletBalance(ctx context.Context, id endpoints.UserID, amount float64) (*response.Envelope[domain.User], error) {
	path, err := endpoints.UserWallet(id)
	if err != nil {
		return nil, err
	}
	path = endpoints.WithQuery(path, url.Values{"amount": {formatAmount(amount)}})
	return call[domain.User](ctx, c, http.MethodPut, path, nil, Direct)
}

// InvestInMovie invests through the user service, which debits the wallet
func (c *Client) InvestInMovie(ctx context.Context, id endpoints.UserID, req domain.InvestmentRequest) (*response.Envelope[domain.Investment], error) {
	path, err := endpoints.UserInvest(id)
	if err != nil {
		return nil, err
	}
	return call[domain.Investment](ctx, c, http.MethodPost, path, req, Direct)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
