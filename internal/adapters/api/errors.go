package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"cinefund/internal/core/domain"
)

// previewLength is how much of a non-JSON body is kept for diagnostics
const previewLength = 100

var (
	_ domain.UserFacing = (*HTTPError)(nil)
	_ domain.UserFacing = (*ConnectivityError)(nil)
)

// NonJSONResponseError is returned when the server answers without a JSON
// content type, whatever the status code
type NonJSONResponseError struct {
	Status  int
	Preview string
}

func (e *NonJSONResponseError) Error() string {
	return fmt.Sprintf("Server returned non-JSON response: %s", e.Preview)
}

// HTTPError is returned for a JSON response with a non-2xx status
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// UserMessage returns the server's message
func (e *HTTPError) UserMessage() string {
	return e.Message
}

// ConnectivityError is returned when the backend host cannot be reached
type ConnectivityError struct {
	Hint string
	Err  error
}

func (e *ConnectivityError) Error() string {
	return e.Hint
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// UserMessage returns the connection hint
func (e *ConnectivityError) UserMessage() string {
	return e.Hint
}

// IsAPIError reports whether err is one of the typed client errors
func IsAPIError(err error) bool {
	var (
		nonJSON *NonJSONResponseError
		httpErr *HTTPError
		connErr *ConnectivityError
	)
	return errors.As(err, &nonJSON) || errors.As(err, &httpErr) || errors.As(err, &connErr)
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	var nonJSON *NonJSONResponseError
	if errors.As(err, &nonJSON) {
		return nonJSON.Status
	}
	return 0
}

// isUnreachable reports transport failures that mean the host is not there:
// refused connections, DNS failures and other dial errors
func isUnreachable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
