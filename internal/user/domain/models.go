package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin     = "ADMIN"
	RoleLogistics = "LOGISTICS"
	RoleClient    = "CLIENT"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLogistics, RoleClient:
		return true
	}
	return false
}

// User is a platform account. CLIENT users always belong to a company.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID   uuid.UUID  `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:users_platform_email_key"`
	CompanyID    *uuid.UUID `json:"company_id,omitempty" gorm:"type:uuid;index"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"not null;uniqueIndex:users_platform_email_key"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"not null"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }
