package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type City struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID      `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:cities_platform_country_name_key,where:deleted_at IS NULL"`
	CountryID  uuid.UUID      `json:"country_id" gorm:"type:uuid;not null;index;uniqueIndex:cities_platform_country_name_key,where:deleted_at IS NULL"`
	Name       string         `json:"name" gorm:"not null;uniqueIndex:cities_platform_country_name_key,where:deleted_at IS NULL"`
	IsActive   bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (City) TableName() string { return "cities" }
