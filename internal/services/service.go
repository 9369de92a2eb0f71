// Path: internal/services/service.go
package services

import (
	"bank-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// Service bundles every application service over one store.
type Service struct {
	Auth          AuthService
	Authenticator RequestAuthenticator
	Authorizer    OwnershipAuthorizer
	Accounts      AccountService
	Transactions  TransactionService
	Users         UserService
	Codec         JWTService
}

// NewService wires the services. secretKey signs balance hashes.
func NewService(store repository.Store, codec JWTService, encoder PasswordEncoder, secretKey []byte, log *logrus.Logger) (*Service, error) {
	auth, err := NewAuthService(store, codec, encoder, log)
	if err != nil {
		return nil, err
	}
	authorizer := NewOwnershipAuthorizer(store.Accounts())

	return &Service{
		Auth:          auth,
		Authenticator: NewRequestAuthenticator(store.Users(), codec, auth, log),
		Authorizer:    authorizer,
		Accounts:      NewAccountService(store, authorizer, secretKey, log),
		Transactions:  NewTransactionService(store, authorizer, secretKey, log),
		Users:         NewUserService(store, encoder, log),
		Codec:         codec,
	}, nil
}
