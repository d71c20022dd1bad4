// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/auth/token"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
)

// PasswordResetToken is a single-use reset credential. Only the SHA-256 of
// the raw token is stored.
type PasswordResetToken struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	TokenHash  string     `gorm:"not null;uniqueIndex:password_reset_tokens_hash_key"`
	ExpiresAt  time.Time  `gorm:"not null"`
	UsedAt     *time.Time
	CreatedAt  time.Time
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

type LoginResult struct {
	token.Pair
	User *userdomain.User `json:"user"`
}
