package services

import (
	"context"
	"sync"
	"testing"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func newFundedAccount(t *testing.T, env *testEnv, owner *models.User) *models.Account {
	t.Helper()
	acc, err := env.svc.Accounts.CreateAccount(context.Background(), NewPrincipal(owner), &models.AccountRequest{UserID: owner.ID, AccountType: models.AccountCurrent})
	require.NoError(t, err)
	return acc
}

func txRequest(accountID uint, kind models.TransactionType, amount string) *models.TransactionRequest {
	return &models.TransactionRequest{
		AccountID:       accountID,
		Amount:          decimal.RequireFromString(amount),
		Description:     "test",
		TransactionType: kind,
	}
}

type TransactionServiceSuite struct {
	suite.Suite
	env *testEnv
	ctx context.Context

	// newStore overrides the in-memory store when set.
	newStore func(t *testing.T) repository.Store
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) SetupTest() {
	if s.newStore != nil {
		s.env = newTestEnvWithStore(s.T(), s.newStore(s.T()))
	} else {
		s.env = newTestEnv(s.T())
	}
	s.ctx = context.Background()
}

func (s *TransactionServiceSuite) TestWithdrawalFromEmptyAccountRejected() {
	alice, _ := s.env.register(s.T(), "alice", models.RoleUser)
	acc := newFundedAccount(s.T(), s.env, alice)

	_, err := s.env.svc.Transactions.CreateTransaction(s.ctx, NewPrincipal(alice), txRequest(acc.ID, models.TransactionWithdrawal, "50"))
	s.ErrorIs(err, ErrInsufficientFunds)

	stored, err := s.env.svc.Accounts.GetAccountByID(s.ctx, NewPrincipal(alice), acc.ID)
	s.Require().NoError(err)
	s.True(stored.Balance.IsZero())

	txs, err := s.env.svc.Transactions.GetAccountTransactions(s.ctx, NewPrincipal(alice), acc.ID)
	s.Require().NoError(err)
	s.Empty(txs)
}

func (s *TransactionServiceSuite) TestLodgementThenWithdrawal() {
	alice, _ := s.env.register(s.T(), "alice", models.RoleUser)
	acc := newFundedAccount(s.T(), s.env, alice)
	p := NewPrincipal(alice)

	_, err := s.env.svc.Transactions.CreateTransaction(s.ctx, p, txRequest(acc.ID, models.TransactionLodgement, "100.25"))
	s.Require().NoError(err)
	_, err = s.env.svc.Transactions.CreateTransaction(s.ctx, p, txRequest(acc.ID, models.TransactionWithdrawal, "100.25"))
	s.Require().NoError(err)
	_, err = s.env.svc.Transactions.CreateTransaction(s.ctx, p, txRequest(acc.ID, models.TransactionWithdrawal, "0.01"))
	s.ErrorIs(err, ErrInsufficientFunds)

	stored, err := s.env.svc.Accounts.GetAccountByID(s.ctx, p, acc.ID)
	s.Require().NoError(err)
	s.True(stored.Balance.IsZero(), "balance %s", stored.Balance)

	txs, err := s.env.svc.Transactions.GetAccountTransactions(s.ctx, p, acc.ID)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)
	s.Equal(models.TransactionLodgement, txs[0].TransactionType)
	s.Equal(models.TransactionWithdrawal, txs[1].TransactionType)
}

func (s *TransactionServiceSuite) TestAmountValidation() {
	alice, _ := s.env.register(s.T(), "alice", models.RoleUser)
	acc := newFundedAccount(s.T(), s.env, alice)

	for _, amount := range []string{"0", "-5", "0.001"} {
		_, err := s.env.svc.Transactions.CreateTransaction(s.ctx, NewPrincipal(alice), txRequest(acc.ID, models.TransactionLodgement, amount))
		s.ErrorIs(err, ErrInvalidRequest, amount)
	}

	req := txRequest(acc.ID, models.TransactionLodgement, "5")
	req.Description = ""
	_, err := s.env.svc.Transactions.CreateTransaction(s.ctx, NewPrincipal(alice), req)
	s.ErrorIs(err, ErrInvalidRequest)
}

func (s *TransactionServiceSuite) TestOwnership() {
	alice, _ := s.env.register(s.T(), "alice", models.RoleUser)
	bob, _ := s.env.register(s.T(), "bob", models.RoleUser)
	admin, _ := s.env.register(s.T(), "admin", models.RoleAdmin)
	acc := newFundedAccount(s.T(), s.env, alice)

	_, err := s.env.svc.Transactions.CreateTransaction(s.ctx, NewPrincipal(bob), txRequest(acc.ID, models.TransactionLodgement, "10"))
	s.ErrorIs(err, ErrAuthorization)

	_, err = s.env.svc.Transactions.GetAccountTransactions(s.ctx, NewPrincipal(bob), acc.ID)
	s.ErrorIs(err, ErrAuthorization)

	_, err = s.env.svc.Transactions.CreateTransaction(s.ctx, NewPrincipal(bob), txRequest(9999, models.TransactionLodgement, "10"))
	s.ErrorIs(err, ErrAccountNotFound)

	_, err = s.env.svc.Transactions.CreateTransaction(s.ctx, NewPrincipal(admin), txRequest(acc.ID, models.TransactionLodgement, "10"))
	s.Require().NoError(err)
}

func (s *TransactionServiceSuite) TestConcurrentWithdrawalsNeverOverdraw() {
	alice, _ := s.env.register(s.T(), "alice", models.RoleUser)
	acc := newFundedAccount(s.T(), s.env, alice)
	p := NewPrincipal(alice)

	_, err := s.env.svc.Transactions.CreateTransaction(s.ctx, p, txRequest(acc.ID, models.TransactionLodgement, "30"))
	s.Require().NoError(err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.env.svc.Transactions.CreateTransaction(s.ctx, p, txRequest(acc.ID, models.TransactionWithdrawal, "10")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(3, succeeded)
	stored, err := s.env.svc.Accounts.GetAccountByID(s.ctx, p, acc.ID)
	s.Require().NoError(err)
	s.True(stored.Balance.IsZero())
}
