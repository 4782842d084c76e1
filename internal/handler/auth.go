package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// PasswordHeader carries the shared app password on guarded routes.
const PasswordHeader = "X-App-Password"

// PasswordGate returns middleware guarding generation endpoints with a
// shared password. The check is request-scoped: nothing about a caller is
// remembered between requests. An empty configured password disables the
// gate, matching deployments that run behind their own access control.
func PasswordGate(password string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if password == "" {
			return c.Next()
		}
		supplied := c.Get(PasswordHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(password)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing app password"})
		}
		return c.Next()
	}
}
