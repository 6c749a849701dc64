package endpoints

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders(t *testing.T) {
	tests := []struct {
		name  string
		build func() (string, error)
		want  string
	}{
		{"user by id", func() (string, error) { return UserByID(42) }, "/api/users/42"},
		{"user by username", func() (string, error) { return UserByUsername("jane") }, "/api/users/username/jane"},
		{"users by role", func() (string, error) { return UsersByRole("PRODUCER") }, "/api/users/role/PRODUCER"},
		{"user wallet", func() (string, error) { return UserWallet(3) }, "/api/users/3/wallet"},
		{"user invest", func() (string, error) { return UserInvest(3) }, "/api/users/3/invest"},
		{"movie by id", func() (string, error) { return MovieByID(42) }, "/api/movies/42"},
		{"movies by genre", func() (string, error) { return MoviesByGenre("Sci Fi") }, "/api/movies/genre/Sci%20Fi"},
		{"movie status", func() (string, error) { return MovieUpdateStatus(9) }, "/api/movies/9/status"},
		{"movie funding", func() (string, error) { return MovieUpdateFunding(9) }, "/api/movies/9/funding"},
		{"confirm", func() (string, error) { return FundingConfirm("TXN_ABC") }, "/api/funding/confirm/TXN_ABC"},
		{"cancel", func() (string, error) { return FundingCancel("TXN/../x") }, "/api/funding/cancel/TXN%2F..%2Fx"},
		{"confirmed by movie", func() (string, error) { return FundingConfirmedByMovie(5) }, "/api/funding/movie/5/confirmed"},
		{"user movies", func() (string, error) { return FundingUserMovies(5) }, "/api/funding/user/5/movies"},
		{"unpaid by movie", func() (string, error) { return FundingUnpaidByMovie(5) }, "/api/funding/returns/unpaid/movie/5"},
		{"producer movie investors", func() (string, error) { return FundingProducerMovieInvestors(2, 5) }, "/api/funding/producer/2/movie/5/investors"},
		{"producer returns", func() (string, error) { return FundingProducerReturns(2, 5) }, "/api/funding/producer/2/movie/5/returns"},
		{"producer bulk", func() (string, error) { return FundingProducerAllReturns(2) }, "/api/funding/producer/2/returns/bulk"},
		{"producer summary", func() (string, error) { return FundingProducerReturnSummary(2) }, "/api/funding/producer/2/returns/summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilders_RejectInvalidIdentifiers(t *testing.T) {
	_, err := MovieByID(0)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = UserByID(-1)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = FundingConfirm("  ")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = FundingProducerReturns(1, 0)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, UsersSearch, WithQuery(UsersSearch, nil))
	assert.Equal(t, "/api/users/search?keyword=a+b%26c",
		WithQuery(UsersSearch, url.Values{"keyword": {"a b&c"}}))
}
