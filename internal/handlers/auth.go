// Path: internal/handlers/auth.go
package handlers

import (
	"bank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	req, err := BindAndValidate[models.UserRequest](c)
	if err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	req, err := BindAndValidate[models.LoginRequest](c)
	if err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RefreshToken reads the refresh token from the Authorization header.
func (h *Handler) RefreshToken(c *fiber.Ctx) error {
	resp, err := h.authService.RefreshToken(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout always succeeds.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	return c.JSON(fiber.Map{"message": "Logout successful"})
}
