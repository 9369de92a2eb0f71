// Path: internal/handlers/users.go
package handlers

import (
	"bank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetMe(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetLoggedInUser(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	req, err := BindAndValidate[models.UserRequest](c)
	if err != nil {
		return err
	}
	user, err := h.userService.UpdateLoggedInUser(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) DeleteMe(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.userService.DeleteLoggedInUser(c.UserContext(), principal); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	req, err := BindAndValidate[models.UserRequest](c)
	if err != nil {
		return err
	}
	user, err := h.userService.UpdateUserByID(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.userService.DeleteUserByID(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
