package services

import (
	"errors"

	"cinefund/internal/core/domain"
)

// User-facing messages
const (
	MsgLoginToBrowse  = "Please login to browse movies."
	MsgNoMovies       = "No movies available at the moment."
	MsgNoMatch        = "No movies found for the selected filter."
	MsgLoadFailed     = "Failed to load movies. Please try again later."
	MsgInvalidAmount  = "Please enter a valid investment amount."
	MsgLoginToInvest  = "Please login to invest."
	MsgInvalidRevenue = "Please enter a valid revenue amount."
	MsgLoggedOut      = "You have been logged out successfully!"
)

// ErrRejected is returned when a backend answers with success=false
var ErrRejected = errors.New("request rejected")

// userError carries the message shown to the user alongside the cause
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func withMessage(err error, msg string) error {
	return &userError{msg: msg, err: err}
}

func rejected(message, fallback string) error {
	return withMessage(ErrRejected, messageOr(message, fallback))
}

// UserMessage renders err for display
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ue *userError
	if errors.As(err, &ue) {
		return ue.msg
	}
	var uf domain.UserFacing
	if errors.As(err, &uf) {
		return uf.UserMessage()
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, domain.ErrInvalidRevenue):
		return MsgInvalidRevenue
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "Please login to continue."
	case errors.Is(err, domain.ErrForbiddenRole):
		return "Your role is not allowed to perform this action."
	case errors.Is(err, domain.ErrMovieNotFunding):
		return "This movie is not open for funding."
	}
	return err.Error()
}
