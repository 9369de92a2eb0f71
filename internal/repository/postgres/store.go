// Path: internal/repository/postgres/store.go
package postgres

import (
	"context"
	"errors"

	"bank-backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure Store satisfies the repository.Store interface at compile time.
var _ repository.Store = (*Store)(nil)

// Store provides gorm-backed persistence for every entity.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repository.UserStore               { return &userStore{db: s.db} }
func (s *Store) Accounts() repository.AccountStore         { return &accountStore{db: s.db} }
func (s *Store) Transactions() repository.TransactionStore { return &transactionStore{db: s.db} }
func (s *Store) Tokens() repository.TokenStore             { return &tokenStore{db: s.db} }

// WithinTransaction runs fn inside a gorm transaction. Nested calls use savepoints.
func (s *Store) WithinTransaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrAlreadyExists
	default:
		return err
	}
}
