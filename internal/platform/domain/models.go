package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Platform is a tenant. Every other row carries its id.
type Platform struct {
	ID                   uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Name                 string           `json:"name" gorm:"not null"`
	Slug                 string           `json:"slug" gorm:"not null;uniqueIndex:platforms_slug_key"`
	Domain               *string          `json:"domain,omitempty" gorm:"uniqueIndex:platforms_domain_key"`
	Currency             string           `json:"currency" gorm:"not null;default:'AED'"`
	DefaultMarginPercent *decimal.Decimal `json:"default_margin_percent,omitempty" gorm:"type:numeric(5,2)"`
	IsActive             bool             `json:"is_active" gorm:"not null;default:true"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

func (Platform) TableName() string { return "platforms" }
