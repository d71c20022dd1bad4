package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Company is a client organisation renting assets from the platform.
type Company struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID    uuid.UUID        `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:companies_platform_slug_key,where:deleted_at IS NULL"`
	Name          string           `json:"name" gorm:"not null"`
	Slug          string           `json:"slug" gorm:"not null;uniqueIndex:companies_platform_slug_key,where:deleted_at IS NULL"`
	ContactEmail  *string          `json:"contact_email,omitempty"`
	ContactPhone  *string          `json:"contact_phone,omitempty"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty" gorm:"type:numeric(5,2)"`
	IsActive      bool             `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `json:"-" gorm:"index"`
}

func (Company) TableName() string { return "companies" }
