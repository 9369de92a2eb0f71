// Path: internal/repository/postgres/accounts.go
package postgres

import (
	"context"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountStore struct {
	db *gorm.DB
}

func (r *accountStore) Create(ctx context.Context, account *models.Account) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(account).Error)
}

func (r *accountStore) FindByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *accountStore) LockByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&account, id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *accountStore) FindByUserID(ctx context.Context, userID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountStore) FindAll(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("id").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *accountStore) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("account_number = ?", accountNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *accountStore) UpdateBalance(ctx context.Context, id uint, balance decimal.Decimal, balanceHash string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"balance": balance, "balance_hash": balanceHash})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountStore) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
