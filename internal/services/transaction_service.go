// Path: internal/services/transaction_service.go
package services

import (
	"context"
	"fmt"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// TransactionService handles transaction-related operations.
type TransactionService interface {
	CreateTransaction(ctx context.Context, principal *Principal, req *models.TransactionRequest) (*models.Transaction, error)
	GetAccountTransactions(ctx context.Context, principal *Principal, accountID uint) ([]models.Transaction, error)
}

type transactionService struct {
	store      repository.Store
	authorizer OwnershipAuthorizer
	secretKey  []byte
	validate   *validator.Validate
	log        *logrus.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store repository.Store, authorizer OwnershipAuthorizer, secretKey []byte, log *logrus.Logger) TransactionService {
	return &transactionService{
		store:      store,
		authorizer: authorizer,
		secretKey:  secretKey,
		validate:   validator.New(),
		log:        log,
	}
}

// CreateTransaction applies a withdrawal or lodgement under a row lock on the account.
// A withdrawal never takes the balance below zero.
func (s *transactionService) CreateTransaction(ctx context.Context, principal *Principal, req *models.TransactionRequest) (*models.Transaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, badRequest(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, badRequest(fmt.Errorf("%w: amount must be positive", ErrInvalidRequest))
	}

	var created *models.Transaction
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		account, err := tx.Accounts().LockByID(ctx, req.AccountID)
		if err != nil {
			return accountLookupError(err)
		}

		// Ownership is read on the connection that holds the row lock.
		allowed, err := NewOwnershipAuthorizer(tx.Accounts()).IsAllowed(ctx, account.ID, principal)
		if err != nil {
			return internalError("Failed to check account ownership", err)
		}
		if !allowed {
			return badRequest(ErrAuthorization)
		}

		if !utils.VerifyBalanceHash(account.Balance, account.AccountNumber, account.BalanceHash, s.secretKey) {
			return &AppError{Code: 500, Message: "Balance integrity check failed", Details: fmt.Sprintf("account_id: %d", account.ID), Err: ErrBalanceIntegrity}
		}

		newBalance := account.Balance
		switch req.TransactionType {
		case models.TransactionWithdrawal:
			newBalance = account.Balance.Sub(amount)
			if newBalance.IsNegative() {
				return badRequest(fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, account.Balance.StringFixed(2), amount.StringFixed(2)))
			}
		case models.TransactionLodgement:
			newBalance = account.Balance.Add(amount)
		default:
			return badRequest(fmt.Errorf("%w: unknown transaction type %q", ErrInvalidRequest, req.TransactionType))
		}

		newHash := utils.CalculateBalanceHash(newBalance, account.AccountNumber, s.secretKey)
		if err := tx.Accounts().UpdateBalance(ctx, account.ID, newBalance, newHash); err != nil {
			return internalError("Failed to update account balance", err)
		}

		created = &models.Transaction{
			Amount:          amount,
			Description:     req.Description,
			TransactionType: req.TransactionType,
			AccountID:       account.ID,
		}
		if err := tx.Transactions().Create(ctx, created); err != nil {
			return internalError("Failed to insert transaction record", err)
		}
		return nil
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{"account_id": req.AccountID, "type": req.TransactionType}).WithError(err).Info("Transaction rejected")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"account_id": created.AccountID, "type": created.TransactionType}).Info("Transaction completed")
	return created, nil
}

func (s *transactionService) GetAccountTransactions(ctx context.Context, principal *Principal, accountID uint) ([]models.Transaction, error) {
	allowed, err := s.authorizer.IsAllowed(ctx, accountID, principal)
	if err != nil {
		return nil, internalError("Failed to check account ownership", err)
	}
	if !allowed {
		return nil, badRequest(ErrAuthorization)
	}

	if _, err := s.store.Accounts().FindByID(ctx, accountID); err != nil {
		return nil, accountLookupError(err)
	}
	txs, err := s.store.Transactions().FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, internalError("Failed to query transactions", err)
	}
	return txs, nil
}
