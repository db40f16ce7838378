package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/etag"
)

// NoCacheHeaders keeps live verdicts and session data out of every cache
func NoCacheHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return c.Next()
	}
}

// PrivateCacheHeaders lets the officer's browser reuse a successful GET for maxAge
// and revalidate it with a weak ETag afterwards
func PrivateCacheHeaders(maxAge time.Duration) fiber.Handler {
	tag := etag.New(etag.Config{Weak: true})
	value := "private, max-age=" + strconv.Itoa(int(maxAge.Seconds()))

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		// etag runs the handler and may turn the answer into a 304
		err := tag(c)
		if status := c.Response().StatusCode(); status == fiber.StatusOK || status == fiber.StatusNotModified {
			c.Set(fiber.HeaderCacheControl, value)
		}
		return err
	}
}
