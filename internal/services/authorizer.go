// Path: internal/services/authorizer.go
package services

import (
	"context"
	"fmt"

	"bank-backend/internal/repository"
)

// OwnershipAuthorizer decides whether a principal may act on an account.
type OwnershipAuthorizer interface {
	IsAllowed(ctx context.Context, accountID uint, principal *Principal) (bool, error)
}

type ownershipAuthorizer struct {
	accounts repository.AccountStore
}

func NewOwnershipAuthorizer(accounts repository.AccountStore) OwnershipAuthorizer {
	return &ownershipAuthorizer{accounts: accounts}
}

// IsAllowed is true for admins and for the owner of the account. Unknown accounts are simply not owned.
func (a *ownershipAuthorizer) IsAllowed(ctx context.Context, accountID uint, principal *Principal) (bool, error) {
	if principal == nil {
		return false, nil
	}
	if principal.IsAdmin() {
		return true, nil
	}

	accounts, err := a.accounts.FindByUserID(ctx, principal.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to load accounts of user %d: %w", principal.UserID, err)
	}
	for _, acc := range accounts {
		if acc.ID == accountID {
			return true, nil
		}
	}
	return false, nil
}
