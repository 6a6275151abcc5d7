package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own header win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		// Trajectories can be deleted or activated at any time; clients
		// revalidate with the ETag.
		case strings.HasPrefix(path, "/v1/trajectories/"):
			ttl = "no-cache"

		// Active trajectory can be switched at any time.
		case strings.HasPrefix(path, "/v1/wells/") &&
			(strings.HasSuffix(path, "/geometry") || strings.HasSuffix(path, "/plot") || strings.HasSuffix(path, "/trajectories")):
			ttl = "public, max-age=30"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=60"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
