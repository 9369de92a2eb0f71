// Path: internal/services/account_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxAccountNumberAttempts = 10

// AccountService handles account-related operations.
type AccountService interface {
	CreateAccount(ctx context.Context, principal *Principal, req *models.AccountRequest) (*models.Account, error)
	GetLoggedInAccounts(ctx context.Context, principal *Principal) ([]models.Account, error)
	GetAccountByID(ctx context.Context, principal *Principal, id uint) (*models.Account, error)
	GetAllAccounts(ctx context.Context) ([]models.Account, error)
	DeleteAccountByID(ctx context.Context, principal *Principal, id uint) error
}

type accountService struct {
	store         repository.Store
	authorizer    OwnershipAuthorizer
	secretKey     []byte
	validate      *validator.Validate
	log           *logrus.Logger
	accountNumber func() string
}

// NewAccountService creates a new AccountService. secretKey signs balance hashes.
func NewAccountService(store repository.Store, authorizer OwnershipAuthorizer, secretKey []byte, log *logrus.Logger) AccountService {
	return &accountService{
		store:         store,
		authorizer:    authorizer,
		secretKey:     secretKey,
		validate:      validator.New(),
		log:           log,
		accountNumber: utils.GenerateAccountNumber,
	}
}

// CreateAccount opens an empty account. Users may only open accounts for themselves.
func (s *accountService) CreateAccount(ctx context.Context, principal *Principal, req *models.AccountRequest) (*models.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, badRequest(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}
	if !principal.IsAdmin() && principal.UserID != req.UserID {
		s.log.WithFields(logrus.Fields{"principal": principal.UserID, "target": req.UserID}).Info("Account creation for another user denied")
		return nil, badRequest(ErrAuthorization)
	}

	if _, err := s.store.Users().FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, badRequest(ErrUserNotFound)
		}
		return nil, internalError("Failed to query user", err)
	}

	for attempt := 0; attempt < maxAccountNumberAttempts; attempt++ {
		number := s.accountNumber()
		taken, err := s.store.Accounts().ExistsByAccountNumber(ctx, number)
		if err != nil {
			return nil, internalError("Failed to check account number", err)
		}
		if taken {
			continue
		}

		account := &models.Account{
			AccountNumber: number,
			Balance:       decimal.Zero,
			BalanceHash:   utils.CalculateBalanceHash(decimal.Zero, number, s.secretKey),
			AccountType:   req.AccountType,
			UserID:        req.UserID,
		}
		if err := s.store.Accounts().Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				continue
			}
			return nil, internalError("Failed to create account", err)
		}

		s.log.Infof("Account created for user %d: %s", req.UserID, account.AccountNumber)
		return account, nil
	}
	return nil, internalError("Failed to create account", ErrGenerationExhausted)
}

func (s *accountService) GetLoggedInAccounts(ctx context.Context, principal *Principal) ([]models.Account, error) {
	accounts, err := s.store.Accounts().FindByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, internalError("Failed to query accounts", err)
	}
	if err := s.verifyAll(accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, principal *Principal, id uint) (*models.Account, error) {
	if err := s.authorize(ctx, principal, id); err != nil {
		return nil, err
	}
	account, err := s.store.Accounts().FindByID(ctx, id)
	if err != nil {
		return nil, accountLookupError(err)
	}
	if err := s.verify(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAllAccounts(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.store.Accounts().FindAll(ctx)
	if err != nil {
		return nil, internalError("Failed to query accounts", err)
	}
	if err := s.verifyAll(accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteAccountByID removes the account together with its transactions.
func (s *accountService) DeleteAccountByID(ctx context.Context, principal *Principal, id uint) error {
	if err := s.authorize(ctx, principal, id); err != nil {
		return err
	}
	if err := s.store.Accounts().Delete(ctx, id); err != nil {
		return accountLookupError(err)
	}
	s.log.WithFields(logrus.Fields{"account_id": id, "user_id": principal.UserID}).Info("Account deleted")
	return nil
}

func (s *accountService) authorize(ctx context.Context, principal *Principal, accountID uint) error {
	allowed, err := s.authorizer.IsAllowed(ctx, accountID, principal)
	if err != nil {
		return internalError("Failed to check account ownership", err)
	}
	if !allowed {
		s.log.WithField("account_id", accountID).Info("Account access denied")
		return badRequest(ErrAuthorization)
	}
	return nil
}

func (s *accountService) verify(account *models.Account) error {
	if !utils.VerifyBalanceHash(account.Balance, account.AccountNumber, account.BalanceHash, s.secretKey) {
		s.log.WithField("account_id", account.ID).Error("Balance integrity check failed")
		return &AppError{
			Code:    500,
			Message: "Balance integrity check failed",
			Details: fmt.Sprintf("account_id: %d", account.ID),
			Err:     ErrBalanceIntegrity,
		}
	}
	return nil
}

func (s *accountService) verifyAll(accounts []models.Account) error {
	for i := range accounts {
		if err := s.verify(&accounts[i]); err != nil {
			return err
		}
	}
	return nil
}

func accountLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return badRequest(ErrAccountNotFound)
	}
	return internalError("Failed to query account", err)
}
