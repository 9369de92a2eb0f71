package services

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// observedStore wraps a store to see which reads cross a transaction boundary
// and to simulate a user vanishing before its row is locked.
type observedStore struct {
	repository.Store
	shared *observation
	inTx   bool
}

type observation struct {
	txOpen       atomic.Bool
	outsideReads atomic.Int32
	userVanishes atomic.Bool
}

func newObservedStore() *observedStore {
	return &observedStore{Store: memory.NewStore(), shared: &observation{}}
}

func (s *observedStore) Accounts() repository.AccountStore {
	return observedAccounts{AccountStore: s.Store.Accounts(), store: s}
}

func (s *observedStore) Users() repository.UserStore {
	return observedUsers{UserStore: s.Store.Users(), store: s}
}

func (s *observedStore) WithinTransaction(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx repository.Store) error {
		s.shared.txOpen.Store(true)
		defer s.shared.txOpen.Store(false)
		return fn(&observedStore{Store: tx, shared: s.shared, inTx: true})
	})
}

type observedAccounts struct {
	repository.AccountStore
	store *observedStore
}

func (a observedAccounts) FindByUserID(ctx context.Context, userID uint) ([]models.Account, error) {
	if !a.store.inTx && a.store.shared.txOpen.Load() {
		a.store.shared.outsideReads.Add(1)
	}
	return a.AccountStore.FindByUserID(ctx, userID)
}

type observedUsers struct {
	repository.UserStore
	store *observedStore
}

func (u observedUsers) LockByUsername(ctx context.Context, username string) (*models.User, error) {
	if u.store.shared.userVanishes.Load() {
		return nil, repository.ErrNotFound
	}
	return u.UserStore.LockByUsername(ctx, username)
}

func TestCreateTransactionChecksOwnershipInsideTransaction(t *testing.T) {
	store := newObservedStore()
	env := newTestEnvWithStore(t, store)
	ctx := context.Background()
	alice, _ := env.register(t, "alice", models.RoleUser)
	acc := newFundedAccount(t, env, alice)

	_, err := env.svc.Transactions.CreateTransaction(ctx, NewPrincipal(alice), txRequest(acc.ID, models.TransactionLodgement, "10"))
	require.NoError(t, err)
	assert.Zero(t, store.shared.outsideReads.Load())

	bob, _ := env.register(t, "bob", models.RoleUser)
	_, err = env.svc.Transactions.CreateTransaction(ctx, NewPrincipal(bob), txRequest(acc.ID, models.TransactionLodgement, "10"))
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.Zero(t, store.shared.outsideReads.Load())
}

func TestUserVanishingBeforeLockIsBadRequest(t *testing.T) {
	store := newObservedStore()
	env := newTestEnvWithStore(t, store)
	ctx := context.Background()
	_, reg := env.register(t, "alice", models.RoleUser)
	store.shared.userVanishes.Store(true)

	assertGenericBadRequest := func(t *testing.T, err error) {
		t.Helper()
		assert.ErrorIs(t, err, ErrUserNotFound)
		var appErr *AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, GenericMessage, appErr.Message)
	}

	t.Run("login", func(t *testing.T) {
		_, err := env.svc.Auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: testPassword})
		assertGenericBadRequest(t, err)
	})
	t.Run("refresh", func(t *testing.T) {
		_, err := env.svc.Auth.RefreshToken(ctx, bearer(reg.RefreshToken))
		assertGenericBadRequest(t, err)
	})
}
