package middleware

import "github.com/gofiber/fiber/v2"

const (
	// OwnerIDHeader carries the opaque caller identity resolved by the
	// upstream auth collaborator. This core never authenticates; it only
	// trusts the identity handed to it.
	OwnerIDHeader = "X-User-ID"
	// OwnerIDLocalKey is the key used to store the owner id in Fiber's context locals.
	OwnerIDLocalKey = "owner_id"
)

// Identity requires a resolved caller identity on the request and stores it in
// context locals for downstream handlers. Requests without one are rejected.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(OwnerIDHeader)
		if id == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals(OwnerIDLocalKey, id)

		return c.Next()
	}
}
