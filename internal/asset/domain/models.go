package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ConditionGood     = "GOOD"
	ConditionDamaged  = "DAMAGED"
	ConditionInRepair = "IN_REPAIR"
)

func ValidCondition(value string) bool {
	switch value {
	case ConditionGood, ConditionDamaged, ConditionInRepair:
		return true
	}
	return false
}

// Asset is a rentable inventory line owned by a company and stored in a
// warehouse. AvailableQuantity drops while confirmed orders hold stock.
type Asset struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID        uuid.UUID       `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:assets_platform_sku_key,where:deleted_at IS NULL"`
	CompanyID         uuid.UUID       `json:"company_id" gorm:"type:uuid;not null;index"`
	BrandID           *uuid.UUID      `json:"brand_id,omitempty" gorm:"type:uuid;index"`
	WarehouseID       uuid.UUID       `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	ZoneID            *uuid.UUID      `json:"zone_id,omitempty" gorm:"type:uuid"`
	Name              string          `json:"name" gorm:"not null"`
	SKU               string          `json:"sku" gorm:"column:sku;not null;uniqueIndex:assets_platform_sku_key,where:deleted_at IS NULL"`
	Category          string          `json:"category" gorm:"not null;index"`
	Description       *string         `json:"description,omitempty"`
	ImageURL          *string         `json:"image_url,omitempty"`
	UnitVolume        decimal.Decimal `json:"unit_volume" gorm:"type:numeric(12,3);not null"`
	UnitWeight        decimal.Decimal `json:"unit_weight" gorm:"type:numeric(12,3);not null"`
	TotalQuantity     int             `json:"total_quantity" gorm:"not null"`
	AvailableQuantity int             `json:"available_quantity" gorm:"not null"`
	Condition         string          `json:"condition" gorm:"not null;default:GOOD"`
	IsActive          bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (Asset) TableName() string { return "assets" }

// Reserved is the quantity currently held by confirmed orders.
func (a Asset) Reserved() int {
	return a.TotalQuantity - a.AvailableQuantity
}

// Collection is a named bundle of assets a client can order in one go.
type Collection struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID  uuid.UUID        `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:collections_platform_company_name_key,where:deleted_at IS NULL"`
	CompanyID   uuid.UUID        `json:"company_id" gorm:"type:uuid;not null;index;uniqueIndex:collections_platform_company_name_key,where:deleted_at IS NULL"`
	Name        string           `json:"name" gorm:"not null;uniqueIndex:collections_platform_company_name_key,where:deleted_at IS NULL"`
	Description *string          `json:"description,omitempty"`
	IsActive    bool             `json:"is_active" gorm:"not null;default:true"`
	Items       []CollectionItem `json:"items,omitempty" gorm:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `json:"-" gorm:"index"`
}

func (Collection) TableName() string { return "collections" }

type CollectionItem struct {
	CollectionID uuid.UUID `json:"collection_id" gorm:"type:uuid;primaryKey"`
	AssetID      uuid.UUID `json:"asset_id" gorm:"type:uuid;primaryKey"`
	PlatformID   uuid.UUID `json:"-" gorm:"type:uuid;not null"`
	Quantity     int       `json:"quantity" gorm:"not null"`
	AssetName    string    `json:"asset_name,omitempty" gorm:"-"`
}

func (CollectionItem) TableName() string { return "collection_items" }

// StockLine is a quantity of one asset moved in or out of availability.
type StockLine struct {
	AssetID  uuid.UUID
	Quantity int
}
