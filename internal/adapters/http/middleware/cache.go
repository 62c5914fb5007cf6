package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CacheControl sets cache headers on successful GET responses
func CacheControl(maxAge time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() == "GET" && c.Response().StatusCode() == 200 {
			c.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
		}

		return err
	}
}

// DeviceStatusCache returns cache middleware for the device status poll.
// Agents poll frequently; a short cache window takes the edge off without
// delaying a lock instruction for long.
func DeviceStatusCache() fiber.Handler {
	return CacheControl(30 * time.Second)
}
