package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cinefund/internal/adapters/http/middleware"
	"cinefund/internal/config"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := sandbox.NewStore(sandbox.WithHashCost(bcrypt.MinCost))
	require.NoError(t, store.Seed())

	cfg := &config.Config{AppMode: "dev", JWT: config.JWTConfig{Secret: "test-secret", AccessTokenMins: 5}}
	reg := prometheus.NewRegistry()

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	middleware.Setup(app, cfg, nil)
	Setup(app, store, cfg, Options{Backend: "direct", Metrics: middleware.NewMetrics(reg), Gatherer: reg})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, gjson.Result) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, gjson.ParseBytes(raw)
}

func login(t *testing.T, app *fiber.App, username string) (string, int64) {
	t.Helper()
	status, body := do(t, app, http.MethodPost, "/api/users/login",
		map[string]string{"usernameOrEmail": username, "password": sandbox.SeedPassword}, "")
	require.Equal(t, http.StatusOK, status, body.Raw)
	require.True(t, body.Get("success").Bool())
	return body.Get("token").String(), body.Get("data.id").Int()
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body.Get("checks.store").String())
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodPost, "/api/users/login",
		map[string]string{"usernameOrEmail": "investor", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, body.Get("success").Bool())
	assert.Equal(t, "Invalid credentials", body.Get("message").String())
}

func TestRegisterReturnsToken(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodPost, "/api/users/register", map[string]string{
		"firstName": "Nia", "lastName": "Cole", "username": "nia", "email": "nia@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, status, body.Raw)
	assert.NotEmpty(t, body.Get("token").String())
	assert.Equal(t, "INVESTOR", body.Get("data.role").String())

	status, _ = do(t, app, http.MethodPost, "/api/users/register", map[string]string{
		"username": "nia", "email": "other@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)
	status, body := do(t, app, http.MethodGet, "/api/movies", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Access token required", body.Get("message").String())

	status, _ = do(t, app, http.MethodGet, "/api/movies", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMovieListing(t *testing.T) {
	app := newTestApp(t)
	token, _ := login(t, app, "investor")

	status, body := do(t, app, http.MethodGet, "/api/movies", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(5), body.Get("count").Int())
	assert.Len(t, body.Get("data").Array(), 5)

	_, body = do(t, app, http.MethodGet, "/api/movies/funding", nil, token)
	assert.Equal(t, int64(3), body.Get("count").Int())

	status, body = do(t, app, http.MethodGet, "/api/movies/999", nil, token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Movie not found", body.Get("message").String())

	_, body = do(t, app, http.MethodGet, "/api/movies/budget-range?minBudget=100000&maxBudget=300000", nil, token)
	assert.Equal(t, int64(2), body.Get("count").Int())
}

func TestInvestmentLifecycle(t *testing.T) {
	app := newTestApp(t)
	token, userID := login(t, app, "investor")

	status, body := do(t, app, http.MethodPost, "/api/funding/invest", map[string]interface{}{
		"userId": userID, "movieId": 1, "amount": 500,
	}, token)
	require.Equal(t, http.StatusCreated, status, body.Raw)
	tx := body.Get("data.transactionId").String()
	assert.Regexp(t, `^TXN_[0-9A-F]{16}$`, tx)
	assert.Equal(t, "PENDING", body.Get("data.status").String())

	status, body = do(t, app, http.MethodPut, "/api/funding/confirm/"+tx, nil, token)
	require.Equal(t, http.StatusOK, status, body.Raw)
	assert.Equal(t, "CONFIRMED", body.Get("data.status").String())

	status, body = do(t, app, http.MethodPut, "/api/funding/cancel/"+tx+"?reason=oops", nil, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot cancel a confirmed investment", body.Get("message").String())

	_, body = do(t, app, http.MethodGet, "/api/movies/1", nil, token)
	assert.Equal(t, 500.0, body.Get("data.raisedAmount").Float())

	_, body = do(t, app, http.MethodGet, "/api/funding/user/2/movies", nil, token)
	assert.Equal(t, "[1]", body.Get("data").Raw)
}

func TestWalletInvestment(t *testing.T) {
	app := newTestApp(t)
	token, userID := login(t, app, "investor")

	status, body := do(t, app, http.MethodPost, "/api/users/2/invest", map[string]interface{}{"movieId": 2, "amount": 60000}, token)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient wallet balance", body.Get("message").String())

	status, body = do(t, app, http.MethodPost, "/api/users/2/invest", map[string]interface{}{"movieId": 2, "amount": 1000}, token)
	require.Equal(t, http.StatusCreated, status, body.Raw)
	assert.Equal(t, userID, body.Get("data.userId").Int())

	_, body = do(t, app, http.MethodGet, "/api/users/2", nil, token)
	assert.Equal(t, 49000.0, body.Get("data.walletBalance").Float())
}

func TestReturnsRequireProducer(t *testing.T) {
	app := newTestApp(t)
	investorToken, _ := login(t, app, "investor")
	producerToken, producerID := login(t, app, "producer")

	status, _ := do(t, app, http.MethodPost, "/api/funding/returns/1?totalRevenue=100", nil, investorToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, app, http.MethodGet, "/api/funding/producer/99/returns/summary", nil, producerToken)
	assert.Equal(t, http.StatusForbidden, status)

	_, body := do(t, app, http.MethodPost, "/api/users/2/invest", map[string]interface{}{"movieId": 1, "amount": 100}, investorToken)
	require.True(t, body.Get("success").Bool(), body.Raw)

	status, body = do(t, app, http.MethodPost, "/api/funding/producer/1/movie/1/returns",
		map[string]interface{}{"totalRevenue": 150, "notes": "box office"}, producerToken)
	require.Equal(t, http.StatusOK, status, body.Raw)
	assert.Equal(t, int64(1), body.Get("data.investmentsProcessed").Int())
	assert.Equal(t, producerID, body.Get("data.producerId").Int())

	_, body = do(t, app, http.MethodGet, "/api/funding/producer/1/returns/summary", nil, producerToken)
	assert.Equal(t, int64(1), body.Get("data.paidReturns").Int())
	assert.Equal(t, 150.0, body.Get("data.totalReturnsPaid").Float())

	status, body = do(t, app, http.MethodPost, "/api/funding/producer/1/returns/bulk",
		map[string]float64{"movie_1": 10}, producerToken)
	assert.Equal(t, http.StatusOK, status, body.Raw)
	assert.Equal(t, int64(0), body.Get("data.totalMovies").Int())
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	do(t, app, http.MethodGet, "/health", nil, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `cinefund_sandbox_http_requests_total{backend="direct",method="GET",route="/health",status="200"} 1`)
}

func TestUserListingPages(t *testing.T) {
	app := newTestApp(t)
	token, _ := login(t, app, "admin")

	status, body := do(t, app, http.MethodGet, "/api/users?page=2&limit=2", nil, token)
	require.Equal(t, http.StatusOK, status, body.Raw)
	assert.Len(t, body.Get("data.items").Array(), 1)
	assert.Equal(t, int64(3), body.Get("data.meta.total").Int())
	assert.Equal(t, int64(2), body.Get("data.meta.totalPages").Int())
	assert.False(t, body.Get("data.meta.hasNext").Bool())

	_, body = do(t, app, http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, int64(3), body.Get("count").Int())
}
