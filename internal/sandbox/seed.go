package sandbox

import (
	"fmt"

	"cinefund/internal/core/domain"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "password123"

func pct(v float64) *float64 { return &v }

// Seed loads demo accounts and movies: a producer, an investor with a funded
// wallet, an admin and a handful of movies in different states
func (s *Store) Seed() error {
	accounts := []domain.RegisterRequest{
		{FirstName: "Paula", LastName: "Reyes", Username: "producer", Email: "producer@cinefund.local", Role: domain.RoleProducer},
		{FirstName: "Ivan", LastName: "Novak", Username: "investor", Email: "investor@cinefund.local", Role: domain.RoleInvestor},
		{FirstName: "Ada", LastName: "Admin", Username: "admin", Email: "admin@cinefund.local", Role: domain.RoleAdmin},
	}

	ids := make(map[string]int64, len(accounts))
	for _, a := range accounts {
		a.Password = SeedPassword
		u, err := s.Register(a)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", a.Username, err)
		}
		ids[a.Username] = u.ID
	}
	if _, err := s.AdjustWallet(ids["investor"], 50000); err != nil {
		return fmt.Errorf("seed wallet: %w", err)
	}

	producer := ids["producer"]
	movies := []struct {
		in     domain.MovieInput
		status domain.MovieStatus
	}{
		{domain.MovieInput{Title: "The Last Reel", Description: "A projectionist guards the final print of a lost film.", Budget: 250000, ExpectedReturnPercentage: pct(18), DirectorName: "Mira Holt", Genre: "Drama", ReleaseDate: "2027-03-12", FundingDeadline: "2026-12-31"}, domain.MovieFunding},
		{domain.MovieInput{Title: "Orbit of Ash", Description: "Miners on a dying moon stage a rescue.", Budget: 1200000, ExpectedReturnPercentage: pct(22), DirectorName: "Tomas Ek", Genre: "Sci-Fi", ReleaseDate: "2027-08-01", FundingDeadline: "2027-01-31"}, domain.MovieFunding},
		{domain.MovieInput{Title: "Quiet Harbor", Description: "A fishing town keeps a secret for forty years.", Budget: 400000, DirectorName: "Lena Marsh", Genre: "Thriller", ReleaseDate: "2026-11-20"}, domain.MovieInProduction},
		{domain.MovieInput{Title: "Paper Lanterns", Description: "Two rival bakers share one stall.", Budget: 150000, ExpectedReturnPercentage: pct(12), DirectorName: "Kai Ono", Genre: "Comedy", ReleaseDate: "2026-06-05"}, domain.MovieReleased},
		{domain.MovieInput{Title: "Northbound", Description: "A road movie across three borders.", Budget: 600000, ExpectedReturnPercentage: pct(15), DirectorName: "Rosa Vidal", Genre: "Adventure", FundingDeadline: "2027-02-28"}, domain.MovieFunding},
	}
	for _, m := range movies {
		m.in.ProducerID = producer
		created, err := s.CreateMovie(m.in)
		if err != nil {
			return fmt.Errorf("seed movie %s: %w", m.in.Title, err)
		}
		if m.status != domain.MovieFunding {
			if _, err := s.UpdateMovieStatus(created.ID, string(m.status)); err != nil {
				return err
			}
		}
	}
	return nil
}
