package handlers

import (
	"cinefund/internal/config"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store   *sandbox.Store
	cfg     *config.Config
	backend string
}

// NewHealthHandler creates a new health handler; backend names the listener
func NewHealthHandler(store *sandbox.Store, cfg *config.Config, backend string) *HealthHandler {
	return &HealthHandler{store: store, cfg: cfg, backend: backend}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 CineFund sandbox is running",
		"mode":    h.cfg.AppMode,
		"backend": h.backend,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and store health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	storeStatus := "healthy"
	if h.store == nil {
		storeStatus = "unhealthy"
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":   "healthy",
			"store": storeStatus,
		},
	})
}

// APIInfo handles API info
// @Summary API Info
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":  "CineFund sandbox API",
		"version":  "1.0.0",
		"services": []string{"users", "movies", "funding"},
	})
}
