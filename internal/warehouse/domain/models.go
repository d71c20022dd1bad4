package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Warehouse struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID      `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:warehouses_platform_code_key,where:deleted_at IS NULL"`
	CountryID  uuid.UUID      `json:"country_id" gorm:"type:uuid;not null"`
	CityID     uuid.UUID      `json:"city_id" gorm:"type:uuid;not null;index"`
	Name       string         `json:"name" gorm:"not null"`
	Code       string         `json:"code" gorm:"not null;uniqueIndex:warehouses_platform_code_key,where:deleted_at IS NULL"`
	Address    *string        `json:"address,omitempty"`
	IsActive   bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Warehouse) TableName() string { return "warehouses" }
