package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/auth"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// callerOrAnonymous returns the principal attached by the auth middleware, if any.
func callerOrAnonymous(c *fiber.Ctx) *auth.Principal {
	principal, _ := auth.PrincipalFromContext(c)
	return principal
}

func caller(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("")
	}
	return principal, nil
}

// decodeBody parses a JSON body with the app decoder. An empty body leaves
// out untouched, so handlers see zero values and report field errors.
func decodeBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return apperrors.NewValidationError("Invalid JSON body")
	}
	return nil
}
