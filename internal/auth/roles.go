package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// Require guards a route with a capability. A missing principal is 401, an
// insufficient role is 403.
func Require(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("")
		}
		if !principal.Allows(capability) {
			return apperrors.NewForbidden("")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a session is present.
func RequireAuthenticated() fiber.Handler {
	return Require(CapAuthenticated)
}

// RequireStaff ensures the caller is admin or supervisor.
func RequireStaff() fiber.Handler {
	return Require(CapStaff)
}

// RequireAdmin ensures the caller is admin.
func RequireAdmin() fiber.Handler {
	return Require(CapAdmin)
}
