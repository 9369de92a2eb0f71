// Path: internal/repository/postgres/transactions.go
package postgres

import (
	"context"

	"bank-backend/internal/models"

	"gorm.io/gorm"
)

type transactionStore struct {
	db *gorm.DB
}

func (r *transactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error)
}

func (r *transactionStore) FindByAccountID(ctx context.Context, accountID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("id").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
