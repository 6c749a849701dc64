// Package endpoints is the static registry of backend URL paths for the
// accounts, movies and funding domains.
//
// Fixed paths are constants. Templated paths are built by functions that take
// typed identifiers and return an error instead of a malformed path.
package endpoints

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned when a path identifier is zero, negative or blank
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Numeric identifiers
type (
	UserID       int64
	MovieID      int64
	ProducerID   int64
	InvestmentID int64
)

// Textual identifiers
type (
	TransactionID string
	Username      string
	Role          string
	Genre         string
	MovieStatus   string
)

// Users
const (
	UsersRegister = "/api/users/register"
	UsersLogin    = "/api/users/login"
	UsersAll      = "/api/users"
	UsersSearch   = "/api/users/search"
)

// Movies
const (
	MoviesAll         = "/api/movies"
	MoviesCreate      = "/api/movies"
	MoviesFunding     = "/api/movies/funding"
	MoviesSearch      = "/api/movies/search"
	MoviesBudgetRange = "/api/movies/budget-range"
)

// Funding
const (
	FundingInvest        = "/api/funding/invest"
	FundingUnpaidReturns = "/api/funding/returns/unpaid"
)

func numeric(kind string, v int64) (string, error) {
	if v <= 0 {
		return "", fmt.Errorf("%s %d: %w", kind, v, ErrInvalidIdentifier)
	}
	return strconv.FormatInt(v, 10), nil
}

func text(kind, v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s %q: %w", kind, v, ErrInvalidIdentifier)
	}
	return url.PathEscape(v), nil
}

// WithQuery appends percent-encoded query parameters to path
func WithQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// ============================================================
// Users
// ============================================================

func UserByID(id UserID) (string, error) {
	seg, err := numeric("user id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/users/" + seg, nil
}

// UserUpdate shares the path of UserByID
func UserUpdate(id UserID) (string, error) {
	return UserByID(id)
}

func UserByUsername(name Username) (string, error) {
	seg, err := text("username", string(name))
	if err != nil {
		return "", err
	}
	return "/api/users/username/" + seg, nil
}

func UsersByRole(role Role) (string, error) {
	seg, err := text("role", string(role))
	if err != nil {
		return "", err
	}
	return "/api/users/role/" + seg, nil
}

func UserWallet(id UserID) (string, error) {
	seg, err := numeric("user id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/users/" + seg + "/wallet", nil
}

// UserInvest is the user-service investment shortcut
func UserInvest(id UserID) (string, error) {
	seg, err := numeric("user id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/users/" + seg + "/invest", nil
}

// ============================================================
// Movies
// ============================================================

func MovieByID(id MovieID) (string, error) {
	seg, err := numeric("movie id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/movies/" + seg, nil
}

// MovieUpdate shares the path of MovieByID
func MovieUpdate(id MovieID) (string, error) {
	return MovieByID(id)
}

func MoviesByProducer(id ProducerID) (string, error) {
	seg, err := numeric("producer id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/movies/producer/" + seg, nil
}

func MoviesByStatus(status MovieStatus) (string, error) {
	seg, err := text("movie status", string(status))
	if err != nil {
		return "", err
	}
	return "/api/movies/status/" + seg, nil
}

func MoviesByGenre(genre Genre) (string, error) {
	seg, err := text("genre", string(genre))
	if err != nil {
		return "", err
	}
	return "/api/movies/genre/" + seg, nil
}

func MovieUpdateStatus(id MovieID) (string, error) {
	seg, err := numeric("movie id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/movies/" + seg + "/status", nil
}

func MovieUpdateFunding(id MovieID) (string, error) {
	seg, err := numeric("movie id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/movies/" + seg + "/funding", nil
}

// ============================================================
// Funding
// ============================================================

func FundingConfirm(tx TransactionID) (string, error) {
	seg, err := text("transaction id", string(tx))
	if err != nil {
		return "", err
	}
	return "/api/funding/confirm/" + seg, nil
}

func FundingCancel(tx TransactionID) (string, error) {
	seg, err := text("transaction id", string(tx))
	if err != nil {
		return "", err
	}
	return "/api/funding/cancel/" + seg, nil
}

func FundingByID(id InvestmentID) (string, error) {
	seg, err := numeric("investment id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/funding/investment/" + seg, nil
}

func FundingByTransaction(tx TransactionID) (string, error) {
	seg, err := text("transaction id", string(tx))
	if err != nil {
		return "", err
	}
	return "/api/funding/transaction/" + seg, nil
}

func FundingByUser(id UserID) (string, error) {
	seg, err := numeric("user id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/funding/user/" + seg, nil
}

func FundingByMovie(id MovieID) (string, error) {
	seg, err := numeric("movie id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/funding/movie/" + seg, nil
}

func FundingByProducer(id ProducerID) (string, error) {
	seg, err := numeric("producer id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/funding/producer/" + seg, nil
}

func FundingConfirmedByMovie(id MovieID) (string, error) {
	p, err := FundingByMovie(id)
	if err != nil {
		return "", err
	}
	return p + "/confirmed", nil
}

func FundingUserMovies(id UserID) (string, error) {
	p, err := FundingByUser(id)
	if err != nil {
		return "", err
	}
	return p + "/movies", nil
}

func FundingProcessReturns(id MovieID) (string, error) {
	seg, err := numeric("movie id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/funding/returns/" + seg, nil
}

func FundingUnpaidByMovie(id MovieID) (string, error) {
	seg, err := numeric("movie id", int64(id))
	if err != nil {
		return "", err
	}
	return "/api/funding/returns/unpaid/movie/" + seg, nil
}

func FundingProducerInvestors(id ProducerID) (string, error) {
	p, err := FundingByProducer(id)
	if err != nil {
		return "", err
	}
	return p + "/investors", nil
}

func FundingProducerMovieInvestors(producer ProducerID, movie MovieID) (string, error) {
	p, err := producerMovie(producer, movie)
	if err != nil {
		return "", err
	}
	return p + "/investors", nil
}

func FundingProducerReturns(producer ProducerID, movie MovieID) (string, error) {
	p, err := producerMovie(producer, movie)
	if err != nil {
		return "", err
	}
	return p + "/returns", nil
}

func FundingProducerAllReturns(id ProducerID) (string, error) {
	p, err := FundingByProducer(id)
	if err != nil {
		return "", err
	}
	return p + "/returns/bulk", nil
}

func FundingProducerReturnSummary(id ProducerID) (string, error) {
	p, err := FundingByProducer(id)
	if err != nil {
		return "", err
	}
	return p + "/returns/summary", nil
}

func producerMovie(producer ProducerID, movie MovieID) (string, error) {
	p, err := FundingByProducer(producer)
	if err != nil {
		return "", err
	}
	seg, err := numeric("movie id", int64(movie))
	if err != nil {
		return "", err
	}
	return p + "/movie/" + seg, nil
}
