// Path: internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"bank-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore persists users. Deleting a user removes its accounts, their transactions and its tokens.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// LockByUsername loads the user and holds a row lock until the surrounding transaction ends.
	LockByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	// LockByID loads the account and holds a row lock until the surrounding transaction ends.
	LockByID(ctx context.Context, id uint) (*models.Account, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Account, error)
	FindAll(ctx context.Context) ([]models.Account, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal, balanceHash string) error
	Delete(ctx context.Context, id uint) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByAccountID(ctx context.Context, accountID uint) ([]models.Transaction, error)
}

// TokenStore tracks issued token pairs and their revocation state.
type TokenStore interface {
	FindByAccessToken(ctx context.Context, accessToken string) (*models.Token, error)
	FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error)
	// FindActiveTokensForUser returns every token of the user that is not logged out.
	FindActiveTokensForUser(ctx context.Context, userID uint) ([]models.Token, error)
	Save(ctx context.Context, token *models.Token) error
	SaveAll(ctx context.Context, tokens []models.Token) error
	// Revoke marks the token as logged out. Revoking twice is a no-op.
	Revoke(ctx context.Context, token *models.Token) error
	// RevokeAllForUser logs out every active token of the user and returns how many were revoked.
	RevokeAllForUser(ctx context.Context, userID uint) (int64, error)
}

// Store groups the entity stores and runs units of work atomically.
type Store interface {
	Users() UserStore
	Accounts() AccountStore
	Transactions() TransactionStore
	Tokens() TokenStore
	// WithinTransaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}
