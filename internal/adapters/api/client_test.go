package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"cinefund/internal/adapters/persistence/repositories"
	"cinefund/internal/core/domain"
	"cinefund/internal/pkg/endpoints"
	"cinefund/internal/pkg/response"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

// newTestClient wires both backends to h
func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{DirectURL: srv.URL, GatewayURL: srv.URL})
	require.NoError(t, err)
	return c, srv
}

func TestNew_RequiresURLs(t *testing.T) {
	_, err := New(context.Background(), Config{DirectURL: "http://localhost:8084"})
	assert.Error(t, err)
}

func TestNew_LoadsPersistedToken(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryRepository()
	require.NoError(t, store.Set(ctx, TokenKey, "persisted"))

	c, err := New(ctx, Config{DirectURL: "http://d", GatewayURL: "http://g", Tokens: store})
	require.NoError(t, err)
	assert.Equal(t, "persisted", c.Token())
}

func TestSetToken_MirrorsStore(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryRepository()
	c, err := New(ctx, Config{DirectURL: "http://d", GatewayURL: "http://g", Tokens: store})
	require.NoError(t, err)

	require.NoError(t, c.SetToken(ctx, "x"))
	v, ok, _ := store.Get(ctx, TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	require.NoError(t, c.SetToken(ctx, ""))
	_, ok, _ = store.Get(ctx, TokenKey)
	assert.False(t, ok)
	assert.Empty(t, c.Token())
}

func TestBuildHeaders(t *testing.T) {
	c, err := New(context.Background(), Config{DirectURL: "http://d", GatewayURL: "http://g"})
	require.NoError(t, err)

	h := c.BuildHeaders("application/json")
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Empty(t, h.Values("Authorization"))

	require.NoError(t, c.SetToken(context.Background(), "abc"))
	h = c.BuildHeaders("text/plain")
	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.Equal(t, []string{"Bearer abc"}, h.Values("Authorization"))
}

func TestRequest_AuthorizationHeader(t *testing.T) {
	var seen atomic.Value
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Clone())
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	ctx := context.Background()

	// no token, caller-supplied auth is dropped
	_, err := c.Request(ctx, "/api/movies", RequestOptions{Header: http.Header{"Authorization": {"Bearer forged"}}}, Direct)
	require.NoError(t, err)
	h := seen.Load().(http.Header)
	assert.Empty(t, h.Values("Authorization"))
	assert.NotEmpty(t, h.Get(RequestIDHeader))

	// with a token, exactly one header even when the caller sends its own
	require.NoError(t, c.SetToken(ctx, "tok"))
	_, err = c.Request(ctx, "/api/movies", RequestOptions{Header: http.Header{
		"authorization": {"Bearer other"},
		"X-Custom":      {"kept"},
	}}, Direct)
	require.NoError(t, err)
	h = seen.Load().(http.Header)
	assert.Equal(t, []string{"Bearer tok"}, h.Values("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "kept", h.Get("X-Custom"))
}

func TestRequest_SuccessEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.JSONEq(t, `{"userId":1,"movieId":2,"producerId":3,"amount":50}`, string(body))
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"id":7}}`)
	})

	env, err := c.CreateInvestment(context.Background(), domain.InvestmentRequest{UserID: 1, MovieID: 2, ProducerID: 3, Amount: 50})
	require.NoError(t, err)
	assert.True(t, env.Success)
	require.NotNil(t, env.Data)
	assert.Equal(t, int64(7), env.Data.ID)
}

func TestRequest_HTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message from body", http.StatusNotFound, `{"success":false,"message":"not found"}`, "not found"},
		{"fallback", http.StatusInternalServerError, `{"success":false}`, "HTTP error, status=500"},
		{"empty message", http.StatusBadRequest, `{"success":false,"message":""}`, "HTTP error, status=400"},
		{"status wins over success flag", http.StatusConflict, `{"success":true,"message":"taken"}`, "taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.Get(context.Background(), "/api/movies/1", Direct)
			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.Status)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.True(t, IsAPIError(err))
			assert.Equal(t, tt.status, StatusCode(err))
		})
	}
}

func TestRequest_NonJSON(t *testing.T) {
	page := "<html>error page" + strings.Repeat("x", 200) + "</html>"
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, page)
	})

	_, err := c.Get(context.Background(), "/api/movies", Gateway)
	var nonJSON *NonJSONResponseError
	require.True(t, errors.As(err, &nonJSON))
	assert.Equal(t, http.StatusOK, nonJSON.Status)
	assert.Equal(t, page[:100], nonJSON.Preview)
	assert.Contains(t, err.Error(), "non-JSON")
}

func TestRequest_ContentTypeIsCaseInsensitive(t *testing.T) {
	for _, ct := range []string{"Application/JSON; charset=utf-8", "APPLICATION/JSON", "application/json;charset=UTF-8"} {
		t.Run(ct, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", ct)
				io.WriteString(w, `{"success":true,"data":{"id":3,"title":"Northbound"}}`)
			})

			env, err := c.GetMovieByID(context.Background(), 3)
			require.NoError(t, err)
			assert.Equal(t, "Northbound", env.Data.Title)
		})
	}
}

func TestRequest_MalformedJSONPassesThrough(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":`)
	})

	_, err := c.Get(context.Background(), "/api/movies", Direct)
	assert.ErrorIs(t, err, ErrMalformedJSON)
	assert.False(t, IsAPIError(err))
}

func TestRequest_Connectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := New(context.Background(), Config{DirectURL: addr, GatewayURL: addr})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/api/movies", Direct)
	var connErr *ConnectivityError
	require.True(t, errors.As(err, &connErr))
	assert.Contains(t, connErr.Hint, strings.TrimPrefix(addr, "http://"))
	assert.Contains(t, err.Error(), "Cannot connect to server")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRequest_CancelledContextPassesThrough(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/api/movies", Direct)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsAPIError(err))
}

func TestTypedOps_ShapeMismatch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":1}}`)
	})

	_, err := c.GetAllMovies(context.Background())
	assert.ErrorIs(t, err, response.ErrEnvelopeShape)
}

func TestTypedOps_RejectsPayloadWithoutID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/movies" {
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":1},{"foo":1}]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"foo":1}}`)
	})
	ctx := context.Background()

	_, err := c.GetMovieByID(ctx, 1)
	assert.ErrorIs(t, err, response.ErrEnvelopeShape)
	_, err = c.GetAllMovies(ctx)
	assert.ErrorIs(t, err, response.ErrEnvelopeShape)
	_, err = c.GetUserByID(ctx, 1)
	assert.ErrorIs(t, err, response.ErrEnvelopeShape)
}

func TestTypedOps_Backends(t *testing.T) {
	var directHits, gatewayHits []string
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		directHits = append(directHits, r.Method+" "+r.URL.RequestURI())
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}))
	defer direct.Close()
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayHits = append(gatewayHits, r.Method+" "+r.URL.RequestURI())
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}))
	defer gateway.Close()

	ctx := context.Background()
	c, err := New(ctx, Config{DirectURL: direct.URL, GatewayURL: gateway.URL})
	require.NoError(t, err)

	_, err = c.GetAllMovies(ctx)
	require.NoError(t, err)
	_, err = c.GetMoviesByProducer(ctx, 3)
	require.NoError(t, err)
	_, err = c.GetInvestmentsByUserDirect(ctx, 5)
	require.NoError(t, err)
	_, err = c.GetInvestmentsByUserGateway(ctx, 5)
	require.NoError(t, err)
	_, err = c.CancelInvestment(ctx, "TXN_1", "changed my mind")
	require.NoError(t, err)
	_, err = c.ProcessReturnsForProducer(ctx, 3, 2, domain.ReturnRequest{TotalRevenue: 100})
	require.NoError(t, err)
	_, err = c.UpdateWalletBalance(ctx, 5, 12.5)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /api/movies/producer/3",
		"GET /api/funding/user/5",
		"PUT /api/funding/cancel/TXN_1?reason=changed+my+mind",
		"PUT /api/users/5/wallet?amount=12.5",
	}, directHits)
	assert.Equal(t, []string{
		"GET /api/movies",
		"GET /api/funding/user/5",
		"POST /api/funding/producer/3/movie/2/returns",
	}, gatewayHits)
}

func TestTypedOps_InvalidIdentifier(t *testing.T) {
	var hits int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})

	_, err := c.GetMovieByID(context.Background(), 0)
	assert.ErrorIs(t, err, endpoints.ErrInvalidIdentifier)
	_, err = c.ConfirmInvestment(context.Background(), " ")
	assert.ErrorIs(t, err, endpoints.ErrInvalidIdentifier)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestLoginUser_AdoptsToken(t *testing.T) {
	var fail atomic.Bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeJSON(w, http.StatusOK, `{"success":false,"message":"Invalid credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"token":"jwt-1","data":{"id":1,"username":"alice","role":"INVESTOR"}}`)
	})
	ctx := context.Background()

	env, err := c.LoginUser(ctx, domain.LoginRequest{UsernameOrEmail: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "alice", env.Data.Username)
	assert.Equal(t, "jwt-1", c.Token())

	require.NoError(t, c.SetToken(ctx, ""))
	fail.Store(true)
	env, err = c.LoginUser(ctx, domain.LoginRequest{UsernameOrEmail: "alice", Password: "bad"})
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Empty(t, c.Token())
}

func TestBulkRevenueBody(t *testing.T) {
	raw, err := json.Marshal(BulkRevenueBody(map[int64]float64{1: 1000, 12: 250.5}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"movie_1":1000,"movie_12":250.5}`, string(raw))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			writeJSON(w, http.StatusNotFound, `{"success":false}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{DirectURL: srv.URL, GatewayURL: srv.URL, Metrics: metrics})
	require.NoError(t, err)

	_, _ = c.Get(context.Background(), "/ok", Direct)
	_, _ = c.Get(context.Background(), "/ok", Gateway)
	_, _ = c.Get(context.Background(), "/missing", Direct)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("direct", "GET", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("gateway", "GET", outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("direct", "GET", outcomeHTTPError)))
}
