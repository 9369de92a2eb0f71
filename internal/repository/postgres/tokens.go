// Path: internal/repository/postgres/tokens.go
package postgres

import (
	"context"

	"bank-backend/internal/models"

	"gorm.io/gorm"
)

type tokenStore struct {
	db *gorm.DB
}

func (r *tokenStore) FindByAccessToken(ctx context.Context, accessToken string) (*models.Token, error) {
	var token models.Token
	if err := r.db.WithContext(ctx).Where("access_token = ?", accessToken).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *tokenStore) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	var token models.Token
	if err := r.db.WithContext(ctx).Where("refresh_token = ?", refreshToken).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *tokenStore) FindActiveTokensForUser(ctx context.Context, userID uint) ([]models.Token, error) {
	var tokens []models.Token
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND logged_out = ?", userID, false).
		Order("id").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenStore) Save(ctx context.Context, token *models.Token) error {
	if token.ID == 0 {
		return translate(r.db.WithContext(ctx).Create(token).Error)
	}
	return translate(r.db.WithContext(ctx).Save(token).Error)
}

func (r *tokenStore) SaveAll(ctx context.Context, tokens []models.Token) error {
	for i := range tokens {
		if err := r.Save(ctx, &tokens[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *tokenStore) Revoke(ctx context.Context, token *models.Token) error {
	err := r.db.WithContext(ctx).
		Model(&models.Token{}).
		Where("id = ?", token.ID).
		Update("logged_out", true).Error
	if err != nil {
		return err
	}
	token.LoggedOut = true
	return nil
}

func (r *tokenStore) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Token{}).
		Where("user_id = ? AND logged_out = ?", userID, false).
		Update("logged_out", true)
	return res.RowsAffected, res.Error
}
