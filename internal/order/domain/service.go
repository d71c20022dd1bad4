package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	List(ctx context.Context, req ListRequest) ([]Order, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Order, error)
	History(ctx context.Context, id string) ([]StatusHistory, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Order, error)

	AddItem(ctx context.Context, id string, req ItemInput) (*Order, error)
	// AdjustItem sets the quantity of one line. Zero removes the line.
	AdjustItem(ctx context.Context, id, itemID string, req AdjustItemRequest) (*Order, error)
	RemoveItem(ctx context.Context, id, itemID string) (*Order, error)

	Submit(ctx context.Context, id string) (*Order, error)
	OverridePricing(ctx context.Context, id string, req OverridePricingRequest) (*Order, error)
	Transition(ctx context.Context, id string, req TransitionRequest) (*Order, error)
}

type ItemInput struct {
	AssetID  string `json:"asset_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,gte=1"`
}

type CreateRequest struct {
	CompanyID     string      `json:"company_id" binding:"omitempty,uuid"`
	BrandID       string      `json:"brand_id" binding:"omitempty,uuid"`
	EventName     string      `json:"event_name" binding:"required,min=1,max=200"`
	EventStart    time.Time   `json:"event_start" binding:"required"`
	EventEnd      time.Time   `json:"event_end" binding:"required"`
	VenueName     string      `json:"venue_name" binding:"required,min=1,max=200"`
	VenueAddress  string      `json:"venue_address" binding:"omitempty,max=500"`
	CountryID     string      `json:"country_id" binding:"required,uuid"`
	CityID        string      `json:"city_id" binding:"required,uuid"`
	Notes         string      `json:"notes" binding:"omitempty,max=2000"`
	Items         []ItemInput `json:"items" binding:"omitempty,dive"`
	CollectionIDs []string    `json:"collection_ids" binding:"omitempty,dive,uuid"`
}

type UpdateRequest struct {
	BrandID      *string    `json:"brand_id"`
	EventName    *string    `json:"event_name" binding:"omitempty,min=1,max=200"`
	EventStart   *time.Time `json:"event_start"`
	EventEnd     *time.Time `json:"event_end"`
	VenueName    *string    `json:"venue_name" binding:"omitempty,min=1,max=200"`
	VenueAddress *string    `json:"venue_address" binding:"omitempty,max=500"`
	CountryID    *string    `json:"country_id" binding:"omitempty,uuid"`
	CityID       *string    `json:"city_id" binding:"omitempty,uuid"`
	Notes        *string    `json:"notes" binding:"omitempty,max=2000"`
}

type ListRequest struct {
	pagination.Query
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,order_status"`
}

type AdjustItemRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}

type OverridePricingRequest struct {
	BasePrice *decimal.Decimal `json:"base_price" binding:"required"`
	Note      string           `json:"note" binding:"omitempty,max=1000"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required,order_status"`
	Note   string `json:"note" binding:"omitempty,max=1000"`
}

var (
	ErrInvalidPlatform     = errors.New("platform context is required")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("you are not allowed to perform this action on the order")
	ErrInvalidID           = errors.New("invalid order id")
	ErrInvalidItemID       = errors.New("invalid order item id")
	ErrNotFound            = errors.New("order not found")
	ErrItemNotFound        = errors.New("order item not found")
	ErrItemExists          = errors.New("asset is already on this order")
	ErrInvalidCompany      = errors.New("company not found")
	ErrInvalidBrand        = errors.New("brand not found for this company")
	ErrInvalidEventName    = errors.New("event name is required")
	ErrInvalidVenue        = errors.New("venue name is required")
	ErrInvalidEventDates   = errors.New("event end must not be before event start")
	ErrInvalidAsset        = errors.New("asset not found or inactive for this company")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidStatus       = errors.New("unknown order status")
	ErrInvalidTransition   = errors.New("order cannot move to the requested status")
	ErrNotEditable         = errors.New("order can no longer be edited")
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrPriceRequired       = errors.New("order must have a final price before it can be quoted")
	ErrInvalidBasePrice    = errors.New("base price cannot be negative")
	ErrConcurrentUpdate    = errors.New("order status changed concurrently")
	ErrOrderNumberConflict = errors.New("order number already exists")
)
