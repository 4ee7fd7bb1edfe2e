package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/observability"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// DiagnosticsHandler serves storage and performance reports.
type DiagnosticsHandler struct {
	storage *service.StorageService
	metrics *observability.Metrics
}

// NewDiagnosticsHandler constructs handler.
func NewDiagnosticsHandler(storage *service.StorageService, metrics *observability.Metrics) *DiagnosticsHandler {
	return &DiagnosticsHandler{storage: storage, metrics: metrics}
}

// StorageHealth GET /api/storage/health.
func (h *DiagnosticsHandler) StorageHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"storage": h.storage.Health(c.UserContext())})
}

// Backup POST /api/storage/backup. A skipped backup is reported with 400.
func (h *DiagnosticsHandler) Backup(c *fiber.Ctx) error {
	res := h.storage.Backup(c.UserContext(), "manual")
	if res.Skipped {
		return c.Status(fiber.StatusBadRequest).JSON(res)
	}
	return c.JSON(res)
}

// Performance GET /api/metrics/performance.
func (h *DiagnosticsHandler) Performance(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"performance": h.metrics.Snapshot()})
}
