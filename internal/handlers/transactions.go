// Path: internal/handlers/transactions.go
package handlers

import (
	"bank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	req, err := BindAndValidate[models.TransactionRequest](c)
	if err != nil {
		return err
	}

	tx, err := h.transactionService.CreateTransaction(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}
