package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger lo que /health necesita de la base de datos (pgxpool.Pool lo cumple).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler estado del servicio y de la base de datos.
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func HealthHandler(service string, db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": service, "database": "down"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": service, "database": "up"})
	}
}
