// Path: internal/handlers/accounts.go
package handlers

import (
	"bank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	req, err := BindAndValidate[models.AccountRequest](c)
	if err != nil {
		return err
	}

	account, err := h.accountService.CreateAccount(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

func (h *Handler) GetAccounts(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	accounts, err := h.accountService.GetLoggedInAccounts(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(accounts)
}

func (h *Handler) GetAllAccounts(c *fiber.Ctx) error {
	accounts, err := h.accountService.GetAllAccounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(accounts)
}

func (h *Handler) GetAccount(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	account, err := h.accountService.GetAccountByID(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(account)
}

func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.accountService.DeleteAccountByID(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetAccountTransactions(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	txs, err := h.transactionService.GetAccountTransactions(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(txs)
}
