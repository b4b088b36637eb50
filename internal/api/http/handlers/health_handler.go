package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/guardline/request-service/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	postgres *persistence.Postgres
	redis    *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{postgres: postgres, redis: redis}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready GET /health/ready. Redis is cache-only, so its state is reported but
// never fails readiness.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	checks := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := h.postgres.Ping(c.Context()); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(c.Context()); err != nil {
		checks["redis"] = err.Error()
	}

	return c.Status(status).JSON(fiber.Map{"checks": checks})
}
