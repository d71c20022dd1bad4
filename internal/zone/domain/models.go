package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Zone is a storage area inside a warehouse, optionally reserved for one company.
type Zone struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID  uuid.UUID      `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:zones_platform_warehouse_name_key,where:deleted_at IS NULL"`
	WarehouseID uuid.UUID      `json:"warehouse_id" gorm:"type:uuid;not null;index;uniqueIndex:zones_platform_warehouse_name_key,where:deleted_at IS NULL"`
	CompanyID   *uuid.UUID     `json:"company_id,omitempty" gorm:"type:uuid;index"`
	Name        string         `json:"name" gorm:"not null;uniqueIndex:zones_platform_warehouse_name_key,where:deleted_at IS NULL"`
	IsActive    bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Zone) TableName() string { return "zones" }
