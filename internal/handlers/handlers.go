// Path: internal/handlers/handlers.go
package handlers

import (
	"errors"
	"fmt"

	"bank-backend/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	authService        services.AuthService
	authenticator      services.RequestAuthenticator
	accountService     services.AccountService
	transactionService services.TransactionService
	userService        services.UserService
	log                *logrus.Logger
}

func NewHandler(svc *services.Service, log *logrus.Logger) *Handler {
	return &Handler{
		authService:        svc.Auth,
		authenticator:      svc.Authenticator,
		accountService:     svc.Accounts,
		transactionService: svc.Transactions,
		userService:        svc.Users,
		log:                log,
	}
}

// ErrorHandler writes every error as {"error": message, "details": details}.
func (h *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	details := ""

	var appErr *services.AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		details = appErr.Details
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	entry := h.log.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"status": code,
	}).WithError(err)
	if code >= fiber.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   message,
		"details": details,
	})
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

var validate = validator.New()

// BindAndValidate parses the request body into T and validates it using go-playground/validator.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, invalidInput(err)
	}
	if err := validate.Struct(input); err != nil {
		return nil, invalidInput(err)
	}
	return &input, nil
}

func invalidInput(err error) error {
	return &services.AppError{
		Code:    fiber.StatusBadRequest,
		Message: services.GenericMessage,
		Err:     fmt.Errorf("%w: %v", services.ErrInvalidRequest, err),
	}
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, invalidInput(fmt.Errorf("bad id %q", c.Params("id")))
	}
	return uint(id), nil
}
