package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	InsertResetToken(ctx context.Context, db *gorm.DB, token *PasswordResetToken) error
	FindResetToken(ctx context.Context, db *gorm.DB, platformID uuid.UUID, tokenHash string) (*PasswordResetToken, error)
	// ConsumeResetToken marks an unused, unexpired token as used and reports
	// whether this call claimed it.
	ConsumeResetToken(ctx context.Context, db *gorm.DB, id uuid.UUID, at time.Time) (bool, error)
	// InvalidateResetTokens burns every outstanding token for userID.
	InvalidateResetTokens(ctx context.Context, db *gorm.DB, platformID, userID uuid.UUID, at time.Time) error
}
