package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the request/response header carrying the ray id.
const HeaderName = "X-Ray-ID"

// New creates a middleware that attaches a ray id to every request.
// An incoming X-Ray-ID header is honored so upstream proxies can trace
// through; otherwise a fresh uuid is generated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("ray_id", rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
