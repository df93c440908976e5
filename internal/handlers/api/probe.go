package api

import (
	"github.com/gofiber/fiber/v3"

	"loganalyser/internal/db"
	"loganalyser/internal/models"
)

// ProbeHandler handles liveness and readiness endpoints.
type ProbeHandler struct {
	store db.Store
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(store db.Store) *ProbeHandler {
	return &ProbeHandler{store: store}
}

// Root greets callers of the bare service URL.
func (h *ProbeHandler) Root(c fiber.Ctx) error {
	return c.JSON(models.MessageResponse{Message: "Hello world"})
}

// Liveness handles /health and /healthz.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(models.StatusResponse{Status: "ok"})
}

// Readiness handles /readyz.
// Returns 200 OK if the application can serve traffic (store is reachable).
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "database unavailable")
	}

	return c.JSON(models.StatusResponse{Status: "ok"})
}
