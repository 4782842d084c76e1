package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// HealthHandler reports service liveness. The only external dependency the
// generator has is the secure random source behind coupon codes, so the
// check probes it.
type HealthHandler struct {
	entropy io.Reader
}

// NewHealthHandler creates a new HealthHandler reading from the given
// entropy source (crypto/rand.Reader in production).
func NewHealthHandler(entropy io.Reader) *HealthHandler {
	return &HealthHandler{entropy: entropy}
}

// Check performs a health check by drawing one byte of secure randomness.
// Returns 200 OK with {"status": "healthy"} when the source works.
// Returns 503 Service Unavailable when it doesn't.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	var probe [1]byte
	if _, err := io.ReadFull(h.entropy, probe[:]); err != nil {
		log.Error().Err(err).Msg("health check failed: secure random source unavailable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "secure random source unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
