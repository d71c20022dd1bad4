package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Brand struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID      `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:brands_platform_company_name_key,where:deleted_at IS NULL"`
	CompanyID  uuid.UUID      `json:"company_id" gorm:"type:uuid;not null;index;uniqueIndex:brands_platform_company_name_key,where:deleted_at IS NULL"`
	Name       string         `json:"name" gorm:"not null;uniqueIndex:brands_platform_company_name_key,where:deleted_at IS NULL"`
	LogoURL    *string        `json:"logo_url,omitempty"`
	IsActive   bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Brand) TableName() string { return "brands" }
