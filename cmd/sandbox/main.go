package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cinefund/internal/adapters/http/middleware"
	"cinefund/internal/adapters/http/routes"
	"cinefund/internal/config"
	"cinefund/internal/logger"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "cinefund/docs" // Swagger docs
)

// @title CineFund Sandbox API
// @version 1.0
// @description In-memory user, movie and funding services for local development.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.AppMode, *verbose)
	if err != nil {
		log.Fatalf("❌ Failed to create logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	store := sandbox.NewStore()
	if cfg.Sandbox.Seed {
		if err := store.Seed(); err != nil {
			zl.Fatal("❌ Failed to seed sandbox", zap.Error(err))
		}
		zl.Info("✅ Sandbox seeded", zap.String("password", sandbox.SeedPassword))
	}

	expirer := sandbox.NewExpirer(store, cfg.Sandbox.PendingTTL, zl)
	if err := expirer.Start(sandbox.DefaultExpirySchedule); err != nil {
		zl.Fatal("❌ Failed to start expiry job", zap.Error(err))
	}
	defer expirer.Stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	listeners := map[string]string{"direct": cfg.Sandbox.DirectPort}
	if cfg.Sandbox.GatewayPort != cfg.Sandbox.DirectPort {
		listeners["gateway"] = cfg.Sandbox.GatewayPort
	}

	apps := make([]*fiber.App, 0, len(listeners))
	errs := make(chan error, len(listeners))
	for backend, port := range listeners {
		app := fiber.New(fiber.Config{
			AppName:               "CineFund Sandbox (" + backend + ")",
			ErrorHandler:          middleware.CustomErrorHandler,
			DisableStartupMessage: true,
		})
		middleware.Setup(app, cfg, zl.Named(backend))
		routes.Setup(app, store, cfg, routes.Options{Backend: backend, Metrics: metrics, Gatherer: reg})
		apps = append(apps, app)

		zl.Info("🚀 Server starting", zap.String("backend", backend), zap.String("port", port), zap.String("mode", cfg.AppMode))
		go func(app *fiber.App, port string) {
			errs <- app.Listen(":" + port)
		}(app, port)
	}

	go gracefulShutdown(apps, zl)

	for range apps {
		if err := <-errs; err != nil {
			zl.Error("❌ Server error", zap.Error(err))
			shutdown(apps, zl)
		}
	}
}

// gracefulShutdown stops every listener on SIGINT or SIGTERM
func gracefulShutdown(apps []*fiber.App, zl *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("🛑 Shutting down server...")
	shutdown(apps, zl)
	zl.Info("✅ Server stopped gracefully")
}

func shutdown(apps []*fiber.App, zl *zap.Logger) {
	for _, app := range apps {
		if err := app.Shutdown(); err != nil {
			zl.Error("❌ Error during shutdown", zap.Error(err))
		}
	}
}
