package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertResetToken(ctx context.Context, db *gorm.DB, token *domain.PasswordResetToken) error {
	return db.WithContext(ctx).Create(token).Error
}

func (r *repo) FindResetToken(ctx context.Context, db *gorm.DB, platformID uuid.UUID, tokenHash string) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := db.WithContext(ctx).
		Where("platform_id = ? AND token_hash = ?", platformID, tokenHash).
		Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repo) ConsumeResetToken(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.PasswordResetToken{}).
		Where("id = ? AND used_at IS NULL AND expires_at > ?", id, at).
		Update("used_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) InvalidateResetTokens(ctx context.Context, db *gorm.DB, platformID, userID uuid.UUID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.PasswordResetToken{}).
		Where("platform_id = ? AND user_id = ? AND used_at IS NULL", platformID, userID).
		Update("used_at", at).Error
}
