// Package api is the HTTP client for the CineFund user, movie and funding
// services. Every call goes either to the user service directly or through
// the API gateway.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cinefund/internal/logger"
	"cinefund/internal/pkg/response"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// TokenKey is the persisted key of the bearer token
const TokenKey = "authToken"

// RequestIDHeader carries a per-request id for log correlation
const RequestIDHeader = "X-Request-ID"

// ErrMalformedJSON is returned when a JSON content type carries an invalid body
var ErrMalformedJSON = errors.New("malformed JSON response")

// Backend selects the base URL of a request
type Backend int

const (
	// Direct is the user service base URL
	Direct Backend = iota
	// Gateway is the API gateway base URL
	Gateway
)

func (b Backend) String() string {
	if b == Gateway {
		return "gateway"
	}
	return "direct"
}

// TokenStore persists the bearer token between runs
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Config configures a Client. HTTPClient, Tokens, Logger and Metrics are optional.
type Config struct {
	DirectURL  string
	GatewayURL string
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     *zap.Logger
	Metrics    *Metrics
}

// RequestOptions are the per-call parts of a request
type RequestOptions struct {
	Method string
	Body   []byte
	Header http.Header
}

// Client owns the bearer token and issues requests against both backends.
// It is safe for concurrent use.
type Client struct {
	directURL  string
	gatewayURL string
	hint       string
	http       *http.Client
	tokens     TokenStore
	log        *zap.Logger
	metrics    *Metrics

	mu    sync.RWMutex
	token string
}

// New creates a client and loads any persisted token
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.DirectURL == "" || cfg.GatewayURL == "" {
		return nil, errors.New("api: direct and gateway URLs are required")
	}

	c := &Client{
		directURL:  strings.TrimRight(cfg.DirectURL, "/"),
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		http:       cfg.HTTPClient,
		tokens:     cfg.Tokens,
		log:        logger.OrNop(cfg.Logger),
		metrics:    cfg.Metrics,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	c.hint = fmt.Sprintf("Cannot connect to server. Please ensure the API Gateway is running on %s.", hostOf(c.gatewayURL))

	if c.tokens != nil {
		token, ok, err := c.tokens.Get(ctx, TokenKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load token: %w", err)
		}
		if ok {
			c.token = token
		}
	}

	return c, nil
}

// isJSON reports whether a Content-Type names JSON; media types are case-insensitive
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(contentType)
	}
	return strings.Contains(mediaType, "application/json")
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// SetToken replaces the in-memory token and mirrors it to the token store.
// An empty token clears both.
func (c *Client) SetToken(ctx context.Context, token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if c.tokens == nil {
		return nil
	}
	if token == "" {
		return c.tokens.Delete(ctx, TokenKey)
	}
	return c.tokens.Set(ctx, TokenKey, token)
}

// Token returns the current bearer token, empty when logged out
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BuildHeaders returns the headers every request carries
func (c *Client) BuildHeaders(contentType string) http.Header {
	h := make(http.Header, 2)
	h.Set("Content-Type", contentType)
	if token := c.Token(); token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func (c *Client) baseURL(backend Backend) string {
	if backend == Gateway {
		return c.gatewayURL
	}
	return c.directURL
}

// Request sends one request and returns the JSON body of a 2xx response.
// Caller headers are applied first; Content-Type and Authorization are always
// the client's own.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions, backend Backend) (body []byte, err error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL(backend) + path
	requestID := uuid.NewString()
	status := 0
	start := time.Now()

	defer func() {
		elapsed := time.Since(start)
		c.metrics.observe(backend, method, outcomeOf(err), elapsed)
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("url", target),
			zap.Stringer("backend", backend),
			zap.Int("status", status),
			zap.String("request_id", requestID),
			zap.Duration("duration", elapsed),
		}
		if err != nil {
			c.log.Warn("api request failed", append(fields, zap.Error(err))...)
			return
		}
		c.log.Debug("api request", fields...)
	}()

	var reader io.Reader
	if opts.Body != nil {
		reader = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Del("Authorization")
	for k, vs := range c.BuildHeaders("application/json") {
		req.Header[k] = vs
	}
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		if isUnreachable(err) {
			return nil, &ConnectivityError{Hint: c.hint, Err: err}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, &NonJSONResponseError{Status: status, Preview: truncate(string(raw), previewLength)}
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w (status %d)", ErrMalformedJSON, status)
	}

	if status < 200 || status >= 300 {
		msg := gjson.GetBytes(raw, "message")
		if msg.Type != gjson.String || msg.Str == "" {
			return nil, &HTTPError{Status: status, Message: fmt.Sprintf("HTTP error, status=%d", status)}
		}
		return nil, &HTTPError{Status: status, Message: msg.Str}
	}

	return raw, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, backend Backend) ([]byte, error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodGet}, backend)
}

// Post performs a POST request with a JSON body; a nil body sends no payload
func (c *Client) Post(ctx context.Context, path string, body interface{}, backend Backend) ([]byte, error) {
	return c.send(ctx, http.MethodPost, path, body, backend)
}

// Put performs a PUT request with a JSON body; a nil body sends no payload
func (c *Client) Put(ctx context.Context, path string, body interface{}, backend Backend) ([]byte, error) {
	return c.send(ctx, http.MethodPut, path, body, backend)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, backend Backend) ([]byte, error) {
	return c.Request(ctx, path, RequestOptions{Method: http.MethodDelete}, backend)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, backend Backend) ([]byte, error) {
	opts := RequestOptions{Method: method}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		opts.Body = encoded
	}
	return c.Request(ctx, path, opts, backend)
}

// call sends a request and decodes the envelope strictly as T
func call[T any](ctx context.Context, c *Client, method, path string, body interface{}, backend Backend) (*response.Envelope[T], error) {
	raw, err := c.send(ctx, method, path, body, backend)
	if err != nil {
		return nil, err
	}
	return response.Decode[T](raw)
}

func get[T any](ctx context.Context, c *Client, path string, pathErr error, backend Backend) (*response.Envelope[T], error) {
	if pathErr != nil {
		return nil, pathErr
	}
	return call[T](ctx, c, http.MethodGet, path, nil, backend)
}
