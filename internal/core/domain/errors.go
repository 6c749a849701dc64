package domain

import "errors"

// Session errors
var (
	ErrNotLoggedIn    = errors.New("please login to continue")
	ErrMissingUser    = errors.New("response did not include a user")
	ErrLoginRejected  = errors.New("login rejected")
	ErrForbiddenRole  = errors.New("your role is not allowed to perform this action")
	ErrSessionCorrupt = errors.New("cached session is corrupt")
)

// Investment errors
var (
	ErrInvalidAmount   = errors.New("please enter a valid investment amount")
	ErrMovieNotFunding = errors.New("movie is not open for funding")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrInvalidRevenue  = errors.New("please enter a valid revenue amount")
)

// Payload errors
var (
	ErrMissingID = errors.New("payload has no id")
)

// UserFacing is implemented by errors that carry their own display text
type UserFacing interface {
	error
	UserMessage() string
}
