package routes

import (
	"cinefund/internal/adapters/http/handlers"
	"cinefund/internal/adapters/http/middleware"
	"cinefund/internal/config"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the shared parts of every listener
type Options struct {
	// Backend names the listener in logs and metrics ("direct" or "gateway")
	Backend  string
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
}

// Setup configures all routes for one listener
func Setup(app *fiber.App, store *sandbox.Store, cfg *config.Config, opts Options) {
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Handler(opts.Backend))
	}

	healthHandler := handlers.NewHealthHandler(store, cfg, opts.Backend)
	authHandler := handlers.NewAuthHandler(store, cfg)
	userHandler := handlers.NewUserHandler(store)
	movieHandler := handlers.NewMovieHandler(store)
	fundingHandler := handlers.NewFundingHandler(store)

	// ============================================================
	// Public
	// ============================================================
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Get("/", healthHandler.APIInfo)

	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)

	auth := middleware.AuthMiddleware(cfg)

	// ============================================================
	// Users
	// ============================================================
	users.Use(auth)
	users.Get("/", userHandler.ListUsers)
	users.Get("/me", authHandler.Me)
	users.Get("/search", userHandler.SearchUsers)
	users.Get("/username/:username", userHandler.GetUserByUsername)
	users.Get("/role/:role", userHandler.UsersByRole)
	users.Get("/:id", userHandler.GetUser)
	users.Put("/:id", userHandler.UpdateUser)
	users.Put("/:id/wallet", userHandler.UpdateWallet)
	users.Post("/:id/invest", userHandler.Invest)

	// ============================================================
	// Movies
	// ============================================================
	movies := api.Group("/movies", auth)
	movies.Get("/", movieHandler.ListMovies)
	movies.Post("/", middleware.ProducerOrAdmin(), movieHandler.CreateMovie)
	movies.Get("/funding", movieHandler.ListFunding)
	movies.Get("/search", movieHandler.Search)
	movies.Get("/budget-range", movieHandler.BudgetRange)
	movies.Get("/producer/:id", movieHandler.ByProducer)
	movies.Get("/status/:status", movieHandler.ByStatus)
	movies.Get("/genre/:genre", movieHandler.ByGenre)
	movies.Get("/:id", movieHandler.GetMovie)
	movies.Put("/:id", middleware.ProducerOrAdmin(), movieHandler.UpdateMovie)
	movies.Put("/:id/status", middleware.ProducerOrAdmin(), movieHandler.UpdateStatus)
	movies.Put("/:id/funding", middleware.ProducerOrAdmin(), movieHandler.UpdateFunding)

	// ============================================================
	// Funding
	// ============================================================
	funding := api.Group("/funding", auth)
	funding.Post("/invest", fundingHandler.Invest)
	funding.Put("/confirm/:transactionId", fundingHandler.Confirm)
	funding.Put("/cancel/:transactionId", fundingHandler.Cancel)
	funding.Get("/investment/:id", fundingHandler.GetInvestment)
	funding.Get("/transaction/:transactionId", fundingHandler.GetByTransaction)
	funding.Get("/user/:id", fundingHandler.ByUser)
	funding.Get("/user/:id/movies", fundingHandler.UserMovies)
	funding.Get("/movie/:id", fundingHandler.ByMovie)
	funding.Get("/movie/:id/confirmed", fundingHandler.ConfirmedByMovie)

	returns := funding.Group("/returns")
	returns.Get("/unpaid", fundingHandler.Unpaid)
	returns.Get("/unpaid/movie/:id", fundingHandler.UnpaidByMovie)
	returns.Post("/:movieId", middleware.ProducerOrAdmin(), fundingHandler.ProcessReturns)

	producer := funding.Group("/producer/:producerId")
	producer.Get("/", fundingHandler.ByProducer)
	producer.Get("/investors", fundingHandler.Investors)
	producer.Get("/movie/:movieId/investors", fundingHandler.MovieInvestors)
	producer.Post("/movie/:movieId/returns", middleware.ProducerOrAdmin(), fundingHandler.ProducerReturns)
	producer.Post("/returns/bulk", middleware.ProducerOrAdmin(), fundingHandler.BulkReturns)
	producer.Get("/returns/summary", fundingHandler.ReturnSummary)
}
