// Path: internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrAuthentication      = errors.New("authentication failed")
	ErrInvalidToken        = errors.New("invalid token")
	ErrNotFound            = errors.New("not found")
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrAccountNotFound     = fmt.Errorf("account %w", ErrNotFound)
	ErrAuthorization       = errors.New("not authorized")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrGenerationExhausted = errors.New("account number generation exhausted")
	ErrBalanceIntegrity    = errors.New("balance integrity check failed")
)

// GenericMessage is the only message a client sees for rejected input, credentials or ownership.
const GenericMessage = "Error with Data Passed. Try Again!"

// AppError is a custom error type that includes an HTTP status code.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Details string `json:"details"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("AppError: %s (Code: %d): %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("AppError: %s (Code: %d, Details: %s)", e.Message, e.Code, e.Details)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// badRequest hides the cause from the client. The cause stays reachable through errors.Is.
func badRequest(err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: GenericMessage, Err: err}
}

func internalError(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: err}
}
