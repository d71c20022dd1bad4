package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Country struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID      `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:countries_platform_iso_key,where:deleted_at IS NULL"`
	Name       string         `json:"name" gorm:"not null"`
	ISOCode    string         `json:"iso_code" gorm:"column:iso_code;not null;uniqueIndex:countries_platform_iso_key,where:deleted_at IS NULL"`
	IsActive   bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Country) TableName() string { return "countries" }
