// Path: internal/handlers/middleware.go
package handlers

import (
	"bank-backend/internal/models"
	"bank-backend/internal/services"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// Authenticate attaches the principal of a valid bearer token. Requests without
// one pass through anonymously; RequireAuth turns that into a 401.
func (h *Handler) Authenticate(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.Next()
	}
	if _, ok := c.Locals(principalKey).(*services.Principal); ok {
		return c.Next()
	}

	principal, err := h.authenticator.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		h.log.WithError(err).Warn("Failed to load user details for bearer token")
		return &services.AppError{Code: fiber.StatusUnauthorized, Message: "Unauthorized", Err: err}
	}
	if principal != nil {
		c.Locals(principalKey, principal)
		c.SetUserContext(services.WithPrincipal(c.UserContext(), principal))
	}
	return c.Next()
}

func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodOptions {
		return c.Next()
	}
	if _, err := currentPrincipal(c); err != nil {
		return err
	}
	return c.Next()
}

// RequireRole answers 403 unless the principal holds ROLE_<role>.
func (h *Handler) RequireRole(role models.UserRole) fiber.Handler {
	authority := "ROLE_" + string(role)
	return func(c *fiber.Ctx) error {
		principal, err := currentPrincipal(c)
		if err != nil {
			return err
		}
		if !principal.HasAuthority(authority) {
			return &services.AppError{Code: fiber.StatusForbidden, Message: "Forbidden"}
		}
		return c.Next()
	}
}

func currentPrincipal(c *fiber.Ctx) (*services.Principal, error) {
	principal, ok := c.Locals(principalKey).(*services.Principal)
	if !ok || principal == nil {
		return nil, &services.AppError{Code: fiber.StatusUnauthorized, Message: "Unauthorized"}
	}
	return principal, nil
}
