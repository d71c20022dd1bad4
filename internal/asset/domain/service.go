package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Asset, error)
	List(ctx context.Context, req ListRequest) ([]Asset, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Asset, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Asset, error)
	Deactivate(ctx context.Context, id string) (*Asset, error)
	UploadImage(ctx context.Context, id string, req UploadImageRequest) (*Asset, error)

	// Reserve and Release run inside the caller's transaction.
	Reserve(ctx context.Context, tx *gorm.DB, lines []StockLine) error
	Release(ctx context.Context, tx *gorm.DB, lines []StockLine) error
}

type CreateRequest struct {
	CompanyID   string           `json:"company_id" binding:"required,uuid"`
	BrandID     string           `json:"brand_id" binding:"omitempty,uuid"`
	WarehouseID string           `json:"warehouse_id" binding:"required,uuid"`
	ZoneID      string           `json:"zone_id" binding:"omitempty,uuid"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	SKU         string           `json:"sku" binding:"required,min=1,max=64"`
	Category    string           `json:"category" binding:"required,min=1,max=80"`
	Description string           `json:"description" binding:"omitempty,max=2000"`
	UnitVolume  decimal.Decimal  `json:"unit_volume"`
	UnitWeight  *decimal.Decimal `json:"unit_weight"`
	Quantity    int              `json:"total_quantity" binding:"gte=0"`
	Condition   string           `json:"condition" binding:"omitempty,oneof=GOOD DAMAGED IN_REPAIR"`
}

type UpdateRequest struct {
	BrandID       *string          `json:"brand_id"`
	WarehouseID   *string          `json:"warehouse_id" binding:"omitempty,uuid"`
	ZoneID        *string          `json:"zone_id"`
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	SKU           *string          `json:"sku" binding:"omitempty,min=1,max=64"`
	Category      *string          `json:"category" binding:"omitempty,min=1,max=80"`
	Description   *string          `json:"description" binding:"omitempty,max=2000"`
	UnitVolume    *decimal.Decimal `json:"unit_volume"`
	UnitWeight    *decimal.Decimal `json:"unit_weight"`
	TotalQuantity *int             `json:"total_quantity" binding:"omitempty,gte=0"`
	Condition     *string          `json:"condition" binding:"omitempty,oneof=GOOD DAMAGED IN_REPAIR"`
	IsActive      *bool            `json:"is_active"`
}

type ListRequest struct {
	pagination.Query
	CompanyID   string `form:"company_id" binding:"omitempty,uuid"`
	BrandID     string `form:"brand_id" binding:"omitempty,uuid"`
	WarehouseID string `form:"warehouse_id" binding:"omitempty,uuid"`
	Category    string `form:"category"`
	IsActive    *bool  `form:"is_active"`
}

type UploadImageRequest struct {
	FileName    string
	ContentType string
	Body        []byte
}

type CollectionService interface {
	Create(ctx context.Context, req CreateCollectionRequest) (*Collection, error)
	List(ctx context.Context, req ListCollectionRequest) ([]Collection, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Collection, error)
	Update(ctx context.Context, id string, req UpdateCollectionRequest) (*Collection, error)
	ReplaceItems(ctx context.Context, id string, items []CollectionItemInput) (*Collection, error)
	Delete(ctx context.Context, id string) error
	// Expand resolves active collections into asset quantities, summing
	// assets that appear in more than one collection.
	Expand(ctx context.Context, companyID string, ids []string) ([]StockLine, error)
}

type CollectionItemInput struct {
	AssetID  string `json:"asset_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gte=1"`
}

type CreateCollectionRequest struct {
	CompanyID   string                `json:"company_id" binding:"required,uuid"`
	Name        string                `json:"name" binding:"required,min=1,max=160"`
	Description string                `json:"description" binding:"omitempty,max=2000"`
	Items       []CollectionItemInput `json:"items" binding:"omitempty,dive"`
}

type UpdateCollectionRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=160"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

type ReplaceItemsRequest struct {
	Items []CollectionItemInput `json:"items" binding:"dive"`
}

type ListCollectionRequest struct {
	pagination.Query
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	IsActive  *bool  `form:"is_active"`
}

var (
	ErrInvalidPlatform       = errors.New("platform context is required")
	ErrInvalidID             = errors.New("invalid asset id")
	ErrInvalidName           = errors.New("asset name is required")
	ErrInvalidSKU            = errors.New("asset sku is required")
	ErrInvalidCategory       = errors.New("asset category is required")
	ErrInvalidVolume         = errors.New("unit volume must be greater than zero")
	ErrInvalidWeight         = errors.New("unit weight cannot be negative")
	ErrInvalidQuantity       = errors.New("quantity cannot be negative")
	ErrInvalidCondition      = errors.New("condition must be one of GOOD, DAMAGED, IN_REPAIR")
	ErrInvalidCompany        = errors.New("company not found")
	ErrInvalidBrand          = errors.New("brand not found for this company")
	ErrInvalidWarehouse      = errors.New("warehouse not found")
	ErrInvalidZone           = errors.New("zone not found in this warehouse")
	ErrNotFound              = errors.New("asset not found")
	ErrSKUExists             = errors.New("asset with this SKU already exists")
	ErrQuantityBelowReserved = errors.New("total quantity cannot be lower than the quantity currently reserved")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidImage          = errors.New("image must be a jpeg, png or webp file")
	ErrStorageDisabled       = errors.New("image uploads are not available")

	ErrInvalidCollectionID   = errors.New("invalid collection id")
	ErrInvalidCollectionName = errors.New("collection name is required")
	ErrCollectionNotFound    = errors.New("collection not found")
	ErrCollectionExists      = errors.New("collection with this name already exists")
	ErrInvalidItems          = errors.New("collection items must reference assets of the same company")
	ErrDuplicateItem         = errors.New("an asset can appear only once in a collection")
)
