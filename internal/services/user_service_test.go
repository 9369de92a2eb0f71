package services

import (
	"context"
	"testing"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLoggedInUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, reg := env.register(t, "alice", models.RoleUser)
	p := NewPrincipal(alice)

	t.Run("profile only keeps sessions", func(t *testing.T) {
		req := userRequest("alice", models.RoleUser)
		req.FirstName = "Alicia"
		updated, err := env.svc.Users.UpdateLoggedInUser(ctx, p, req)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", updated.FirstName)
		assert.True(t, env.svc.Auth.IsValid(ctx, reg.AccessToken, updated))
	})

	t.Run("role escalation denied", func(t *testing.T) {
		_, err := env.svc.Users.UpdateLoggedInUser(ctx, p, userRequest("alice", models.RoleAdmin))
		assert.ErrorIs(t, err, ErrAuthorization)
	})

	t.Run("password change revokes sessions", func(t *testing.T) {
		req := userRequest("alice", models.RoleUser)
		req.Password = "a-brand-new-password"
		updated, err := env.svc.Users.UpdateLoggedInUser(ctx, p, req)
		require.NoError(t, err)
		assert.False(t, env.svc.Auth.IsValid(ctx, reg.AccessToken, updated))

		_, err = env.svc.Auth.Login(ctx, &models.LoginRequest{Username: "alice", Password: "a-brand-new-password"})
		assert.NoError(t, err)
	})
}

func TestUpdateUserByIDRejectsTakenUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _ := env.register(t, "alice", models.RoleUser)
	env.register(t, "bob", models.RoleUser)

	_, err := env.svc.Users.UpdateUserByID(ctx, alice.ID, userRequest("bob", models.RoleUser))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	stored, err := env.svc.Users.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)

	_, err = env.svc.Users.UpdateUserByID(ctx, 9999, userRequest("carol", models.RoleUser))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteLoggedInUserCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, reg := env.register(t, "alice", models.RoleUser)
	p := NewPrincipal(alice)

	acc := newFundedAccount(t, env, alice)
	_, err := env.svc.Transactions.CreateTransaction(ctx, p, &models.TransactionRequest{
		AccountID:       acc.ID,
		Amount:          decimal.NewFromInt(10),
		Description:     "salary",
		TransactionType: models.TransactionLodgement,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Users.DeleteLoggedInUser(ctx, p))

	_, err = env.svc.Users.GetLoggedInUser(ctx, p)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = env.store.Accounts().FindByID(ctx, acc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.store.Tokens().FindByAccessToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, env.svc.Users.DeleteUserByID(ctx, alice.ID), ErrUserNotFound)
}

func TestGetAllUsers(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", models.RoleUser)
	env.register(t, "bob", models.RoleAdmin)

	users, err := env.svc.Users.GetAllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}
