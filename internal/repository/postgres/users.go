// Path: internal/repository/postgres/users.go
package postgres

import (
	"context"

	"bank-backend/internal/models"
	"bank-backend/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userStore struct {
	db *gorm.DB
}

func (r *userStore) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r *userStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userStore) LockByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userStore) FindAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userStore) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{ID: user.ID}).
		Select("first_name", "last_name", "email", "phone_number", "username", "password", "role").
		Updates(user)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userStore) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
