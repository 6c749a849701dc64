package sandbox

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"cinefund/internal/core/domain"
)

// CreateInvestment records a PENDING investment. Missing producer, names and
// expected return are filled from the movie and user.
func (s *Store) CreateInvestment(req domain.InvestmentRequest) (domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createInvestmentLocked(req)
}

func (s *Store) createInvestmentLocked(req domain.InvestmentRequest) (domain.Investment, error) {
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return domain.Investment{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	user, ok := s.users[req.UserID]
	if !ok {
		return domain.Investment{}, fmt.Errorf("user %d: %w", req.UserID, ErrNotFound)
	}
	movie, ok := s.movies[req.MovieID]
	if !ok {
		return domain.Investment{}, fmt.Errorf("movie %d: %w", req.MovieID, ErrNotFound)
	}
	if movie.Status != domain.MovieFunding {
		return domain.Investment{}, fmt.Errorf("%w: movie %d is not open for funding", ErrInvalidState, movie.ID)
	}

	if req.ProducerID == 0 {
		req.ProducerID = movie.ProducerID
	}
	if req.UserName == "" {
		req.UserName = user.FullName()
	}
	if req.MovieTitle == "" {
		req.MovieTitle = movie.Title
	}
	if req.ProducerName == "" {
		req.ProducerName = movie.ProducerName
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}
	pct := DefaultExpectedReturn
	if req.ExpectedReturnPercentage != nil {
		pct = *req.ExpectedReturnPercentage
	} else if movie.ExpectedReturnPercentage != nil {
		pct = *movie.ExpectedReturnPercentage
	}

	s.nextInvestment++
	now := s.now()
	rec := &investmentRecord{
		Investment: domain.Investment{
			ID:                       s.nextInvestment,
			UserID:                   req.UserID,
			MovieID:                  req.MovieID,
			ProducerID:               req.ProducerID,
			Amount:                   req.Amount,
			Currency:                 req.Currency,
			TransactionID:            newTransactionID("TXN_"),
			Status:                   domain.InvestmentPending,
			UserName:                 req.UserName,
			MovieTitle:               req.MovieTitle,
			ProducerName:             req.ProducerName,
			ExpectedReturnPercentage: pct,
			ExpectedReturn:           req.Amount * pct / 100,
			InvestmentDate:           now.UTC().Format(time.RFC3339),
		},
		createdAt: now,
	}
	s.investments[rec.ID] = rec
	return rec.Investment, nil
}

// InvestFromWallet debits the wallet, creates the investment and confirms it
func (s *Store) InvestFromWallet(userID int64, req domain.InvestmentRequest) (domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return domain.Investment{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if user.WalletBalance < req.Amount {
		return domain.Investment{}, ErrInsufficientFunds
	}

	req.UserID = userID
	inv, err := s.createInvestmentLocked(req)
	if err != nil {
		return domain.Investment{}, err
	}
	if _, err := s.adjustWalletLocked(userID, -req.Amount); err != nil {
		return domain.Investment{}, err
	}
	return s.confirmLocked(s.investments[inv.ID])
}

func (s *Store) byTransactionLocked(tx string) (*investmentRecord, error) {
	for _, rec := range s.investments {
		if rec.TransactionID == tx {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("investment with transaction ID '%s': %w", tx, ErrNotFound)
}

// ConfirmInvestment moves a PENDING investment to CONFIRMED and credits the movie
func (s *Store) ConfirmInvestment(tx string) (domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.byTransactionLocked(tx)
	if err != nil {
		return domain.Investment{}, err
	}
	return s.confirmLocked(rec)
}

func (s *Store) confirmLocked(rec *investmentRecord) (domain.Investment, error) {
	if rec.Status != domain.InvestmentPending {
		return domain.Investment{}, fmt.Errorf("%w: investment is %s", ErrInvalidState, rec.Status)
	}
	rec.Status = domain.InvestmentConfirmed
	if _, err := s.addFundingLocked(rec.MovieID, rec.Amount); err != nil {
		return domain.Investment{}, err
	}
	return rec.Investment, nil
}

// CancelInvestment cancels a PENDING investment
func (s *Store) CancelInvestment(tx, reason string) (domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.byTransactionLocked(tx)
	if err != nil {
		return domain.Investment{}, err
	}
	switch rec.Status {
	case domain.InvestmentConfirmed:
		return domain.Investment{}, fmt.Errorf("%w: cannot cancel a confirmed investment", ErrInvalidState)
	case domain.InvestmentCancelled:
		return domain.Investment{}, fmt.Errorf("%w: investment is already cancelled", ErrInvalidState)
	case domain.InvestmentPending:
	default:
		return domain.Investment{}, fmt.Errorf("%w: investment is %s", ErrInvalidState, rec.Status)
	}
	rec.Status = domain.InvestmentCancelled
	return rec.Investment, nil
}

func (s *Store) Investment(id int64) (domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.investments[id]
	if !ok {
		return domain.Investment{}, fmt.Errorf("investment %d: %w", id, ErrNotFound)
	}
	return rec.Investment, nil
}

func (s *Store) InvestmentByTransaction(tx string) (domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.byTransactionLocked(tx)
	if err != nil {
		return domain.Investment{}, err
	}
	return rec.Investment, nil
}

// Investments returns investments matching keep, ordered by id
func (s *Store) Investments(keep func(domain.Investment) bool) []domain.Investment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.investmentsLocked(keep)
}

func (s *Store) investmentsLocked(keep func(domain.Investment) bool) []domain.Investment {
	out := []domain.Investment{}
	for _, id := range sortedKeys(s.investments) {
		if inv := s.investments[id].Investment; keep == nil || keep(inv) {
			out = append(out, inv)
		}
	}
	return out
}

func (s *Store) InvestmentsByUser(id int64) []domain.Investment {
	return s.Investments(func(i domain.Investment) bool { return i.UserID == id })
}

func (s *Store) InvestmentsByMovie(id int64) []domain.Investment {
	return s.Investments(func(i domain.Investment) bool { return i.MovieID == id })
}

func (s *Store) InvestmentsByProducer(id int64) []domain.Investment {
	return s.Investments(func(i domain.Investment) bool { return i.ProducerID == id })
}

func (s *Store) ConfirmedByMovie(id int64) []domain.Investment {
	return s.Investments(func(i domain.Investment) bool {
		return i.MovieID == id && i.Status == domain.InvestmentConfirmed
	})
}

// MovieIDsByUser returns the distinct movies with a confirmed investment by the user
func (s *Store) MovieIDsByUser(id int64) []int64 {
	seen := map[int64]bool{}
	ids := []int64{}
	for _, inv := range s.InvestmentsByUser(id) {
		if inv.Status == domain.InvestmentConfirmed && !seen[inv.MovieID] {
			seen[inv.MovieID] = true
			ids = append(ids, inv.MovieID)
		}
	}
	return ids
}

func unpaid(i domain.Investment) bool {
	return i.Status == domain.InvestmentConfirmed && !i.ReturnPaid
}

func (s *Store) UnpaidReturns() []domain.Investment {
	return s.Investments(unpaid)
}

func (s *Store) UnpaidReturnsByMovie(id int64) []domain.Investment {
	return s.Investments(func(i domain.Investment) bool { return i.MovieID == id && unpaid(i) })
}

// ============================================================
// Returns
// ============================================================

// ProcessReturns splits revenue over the unpaid confirmed investments of a
// movie in proportion to their amounts
func (s *Store) ProcessReturns(movieID int64, revenue float64) (domain.ProducerReturnResult, error) {
	if revenue <= 0 || math.IsNaN(revenue) || math.IsInf(revenue, 0) {
		return domain.ProducerReturnResult{}, fmt.Errorf("%w: totalRevenue must be positive", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processReturnsLocked(movieID, revenue)
}

func (s *Store) processReturnsLocked(movieID int64, revenue float64) (domain.ProducerReturnResult, error) {
	var (
		due   []*investmentRecord
		total float64
	)
	for _, id := range sortedKeys(s.investments) {
		rec := s.investments[id]
		if rec.MovieID == movieID && unpaid(rec.Investment) {
			due = append(due, rec)
			total += rec.Amount
		}
	}
	if total == 0 {
		return domain.ProducerReturnResult{}, fmt.Errorf("%w: no investments found for this movie", ErrInvalidState)
	}

	now := s.now()
	for _, rec := range due {
		amount := revenue * rec.Amount / total
		rec.ActualReturnAmount = amount
		rec.ReturnPaid = true
		rec.ReturnPaymentDate = now.UTC().Format(time.RFC3339)
		rec.Status = domain.InvestmentReturnPaid
		s.payouts = append(s.payouts, Payout{
			TransactionID: newTransactionID("PAYOUT_"),
			UserID:        rec.UserID,
			MovieID:       movieID,
			ProducerID:    rec.ProducerID,
			Amount:        amount,
			PaidAt:        now,
		})
		if u, ok := s.users[rec.UserID]; ok {
			u.WalletBalance += amount
		}
	}

	var producerID int64
	if m, ok := s.movies[movieID]; ok {
		producerID = m.ProducerID
	}
	return domain.ProducerReturnResult{
		MovieID:              movieID,
		ProducerID:           producerID,
		TotalRevenue:         revenue,
		InvestmentsProcessed: len(due),
		ProcessedAt:          now.UTC().Format(time.RFC3339),
	}, nil
}

// ProcessReturnsForProducer pays returns for a movie the producer has investments in
func (s *Store) ProcessReturnsForProducer(producerID, movieID int64, req domain.ReturnRequest) (domain.ProducerReturnResult, error) {
	if req.TotalRevenue <= 0 || math.IsNaN(req.TotalRevenue) || math.IsInf(req.TotalRevenue, 0) {
		return domain.ProducerReturnResult{}, fmt.Errorf("%w: totalRevenue must be positive", ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := s.investmentsLocked(func(i domain.Investment) bool {
		return i.ProducerID == producerID && i.MovieID == movieID
	})
	if len(owned) == 0 {
		return domain.ProducerReturnResult{}, fmt.Errorf("%w: no investments found for producer %d and movie %d", ErrNotFound, producerID, movieID)
	}

	res, err := s.processReturnsLocked(movieID, req.TotalRevenue)
	if err != nil {
		return domain.ProducerReturnResult{}, err
	}
	res.ProducerID = producerID
	res.Notes = req.Notes
	return res, nil
}

// ProcessReturnsForAllProducerMovies runs ProcessReturns for every movie of
// the producer named in revenues; other movies are skipped
func (s *Store) ProcessReturnsForAllProducerMovies(producerID int64, revenues map[int64]float64) (domain.BulkReturnResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byMovie := map[int64][]domain.Investment{}
	for _, inv := range s.investmentsLocked(func(i domain.Investment) bool { return i.ProducerID == producerID }) {
		byMovie[inv.MovieID] = append(byMovie[inv.MovieID], inv)
	}
	if len(byMovie) == 0 {
		return domain.BulkReturnResult{}, fmt.Errorf("%w: no investments found for producer %d", ErrNotFound, producerID)
	}

	result := domain.BulkReturnResult{ProducerID: producerID, MoviesProcessed: []domain.MovieReturn{}}
	for _, movieID := range sortedKeys(byMovie) {
		revenue, ok := revenues[movieID]
		if !ok || revenue <= 0 {
			continue
		}
		res, err := s.processReturnsLocked(movieID, revenue)
		if err != nil {
			continue
		}
		result.MoviesProcessed = append(result.MoviesProcessed, domain.MovieReturn{
			MovieID:              movieID,
			MovieTitle:           byMovie[movieID][0].MovieTitle,
			Revenue:              revenue,
			InvestmentsProcessed: res.InvestmentsProcessed,
		})
		result.TotalRevenueProcessed += revenue
		result.TotalInvestmentsProcessed += res.InvestmentsProcessed
	}
	result.TotalMovies = len(result.MoviesProcessed)
	result.ProcessedAt = s.timestamp()
	return result, nil
}

// ParseBulkRevenues decodes {"movie_<id>": revenue} bodies
func ParseBulkRevenues(body map[string]float64) (map[int64]float64, error) {
	out := make(map[int64]float64, len(body))
	for key, revenue := range body {
		const prefix = "movie_"
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			return nil, fmt.Errorf("%w: unexpected key %q", ErrValidation, key)
		}
		id, err := strconv.ParseInt(key[len(prefix):], 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: unexpected key %q", ErrValidation, key)
		}
		out[id] = revenue
	}
	return out, nil
}

// ReturnSummary aggregates the return position of a producer
func (s *Store) ReturnSummary(producerID int64) domain.ReturnSummary {
	summary := domain.ReturnSummary{ProducerID: producerID}
	perMovie := map[int64]*domain.MovieReturnSummary{}

	for _, inv := range s.InvestmentsByProducer(producerID) {
		summary.TotalInvestments++
		summary.TotalInvestmentAmount += inv.Amount
		if inv.ReturnPaid {
			summary.PaidReturns++
			summary.TotalReturnsPaid += inv.ActualReturnAmount
		} else {
			summary.UnpaidReturns++
			if inv.Status == domain.InvestmentConfirmed {
				summary.PendingReturns += inv.ExpectedReturn
			}
		}

		m, ok := perMovie[inv.MovieID]
		if !ok {
			m = &domain.MovieReturnSummary{MovieID: inv.MovieID, MovieTitle: inv.MovieTitle}
			perMovie[inv.MovieID] = m
		}
		m.InvestmentCount++
		m.TotalInvested += inv.Amount
		m.TotalReturnsPaid += inv.ActualReturnAmount
	}

	for _, id := range sortedKeys(perMovie) {
		summary.Movies = append(summary.Movies, *perMovie[id])
	}
	return summary
}

// Investors aggregates confirmed and paid investments per user for a producer,
// optionally restricted to one movie (movieID 0 means all)
func (s *Store) Investors(producerID, movieID int64) []domain.Investor {
	agg := map[int64]*domain.Investor{}
	for _, inv := range s.InvestmentsByProducer(producerID) {
		if movieID != 0 && inv.MovieID != movieID {
			continue
		}
		if inv.Status != domain.InvestmentConfirmed && inv.Status != domain.InvestmentReturnPaid {
			continue
		}
		a, ok := agg[inv.UserID]
		if !ok {
			a = &domain.Investor{UserID: inv.UserID, UserName: inv.UserName}
			agg[inv.UserID] = a
		}
		a.TotalInvested += inv.Amount
		a.InvestmentCount++
	}

	out := []domain.Investor{}
	for _, id := range sortedKeys(agg) {
		out = append(out, *agg[id])
	}
	return out
}

// Payouts returns all return payments made so far
func (s *Store) Payouts() []Payout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Payout(nil), s.payouts...)
}

// ExpirePending cancels PENDING investments created more than ttl ago and
// returns how many were cancelled
func (s *Store) ExpirePending(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for _, rec := range s.investments {
		if rec.Status == domain.InvestmentPending && rec.createdAt.Before(cutoff) {
			rec.Status = domain.InvestmentCancelled
			n++
		}
	}
	return n
}
