package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusDraft         = "DRAFT"
	StatusSubmitted     = "SUBMITTED"
	StatusPricingReview = "PRICING_REVIEW"
	StatusQuoted        = "QUOTED"
	StatusConfirmed     = "CONFIRMED"
	StatusInPreparation = "IN_PREPARATION"
	StatusDispatched    = "DISPATCHED"
	StatusDelivered     = "DELIVERED"
	StatusReturned      = "RETURNED"
	StatusClosed        = "CLOSED"
	StatusDeclined      = "DECLINED"
	StatusCancelled     = "CANCELLED"
)

var transitions = map[string][]string{
	StatusDraft:         {StatusSubmitted, StatusCancelled},
	StatusSubmitted:     {StatusPricingReview, StatusCancelled},
	StatusPricingReview: {StatusQuoted, StatusCancelled},
	StatusQuoted:        {StatusConfirmed, StatusDeclined, StatusPricingReview},
	StatusConfirmed:     {StatusInPreparation, StatusCancelled},
	StatusInPreparation: {StatusDispatched},
	StatusDispatched:    {StatusDelivered},
	StatusDelivered:     {StatusReturned},
	StatusReturned:      {StatusClosed},
	StatusDeclined:      {StatusClosed},
}

// Statuses lists every order status in lifecycle order.
var Statuses = []string{
	StatusDraft,
	StatusSubmitted,
	StatusPricingReview,
	StatusQuoted,
	StatusConfirmed,
	StatusInPreparation,
	StatusDispatched,
	StatusDelivered,
	StatusReturned,
	StatusClosed,
	StatusDeclined,
	StatusCancelled,
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ItemsEditable reports whether items may still change in status.
func ItemsEditable(status string) bool {
	switch status {
	case StatusDraft, StatusSubmitted, StatusPricingReview:
		return true
	}
	return false
}

// ClientMayTransition limits what a client user can do to its own orders.
func ClientMayTransition(from, to string) bool {
	switch to {
	case StatusSubmitted, StatusConfirmed, StatusDeclined:
		return true
	case StatusCancelled:
		return from == StatusDraft || from == StatusSubmitted
	}
	return false
}

// Order is a client's rental request for an event. Pricing fields stay nil
// until a tier matches or staff set a price.
type Order struct {
	ID                uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID        uuid.UUID        `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:orders_platform_number_key"`
	CompanyID         uuid.UUID        `json:"company_id" gorm:"type:uuid;not null;index"`
	BrandID           *uuid.UUID       `json:"brand_id,omitempty" gorm:"type:uuid"`
	OrderNumber       string           `json:"order_number" gorm:"not null;uniqueIndex:orders_platform_number_key"`
	CreatedBy         uuid.UUID        `json:"created_by" gorm:"type:uuid;not null"`
	EventName         string           `json:"event_name" gorm:"not null"`
	EventStart        time.Time        `json:"event_start" gorm:"not null"`
	EventEnd          time.Time        `json:"event_end" gorm:"not null"`
	VenueName         string           `json:"venue_name" gorm:"not null"`
	VenueAddress      *string          `json:"venue_address,omitempty"`
	CountryID         uuid.UUID        `json:"country_id" gorm:"type:uuid;not null"`
	CityID            uuid.UUID        `json:"city_id" gorm:"type:uuid;not null"`
	Status            string           `json:"status" gorm:"not null;index"`
	TotalVolume       decimal.Decimal  `json:"total_volume" gorm:"type:numeric(14,3);not null"`
	PricingTierID     *uuid.UUID       `json:"pricing_tier_id,omitempty" gorm:"type:uuid"`
	BasePrice         *decimal.Decimal `json:"base_price,omitempty" gorm:"type:numeric(14,2)"`
	MarginPercent     *decimal.Decimal `json:"margin_percent,omitempty" gorm:"type:numeric(5,2)"`
	MarginAmount      *decimal.Decimal `json:"margin_amount,omitempty" gorm:"type:numeric(14,2)"`
	FinalPrice        *decimal.Decimal `json:"final_price,omitempty" gorm:"type:numeric(14,2)"`
	PricingOverridden bool             `json:"pricing_overridden" gorm:"not null"`
	Currency          string           `json:"currency" gorm:"not null"`
	PricingNote       *string          `json:"pricing_note,omitempty"`
	Notes             *string          `json:"notes,omitempty"`
	SubmittedAt       *time.Time       `json:"submitted_at,omitempty"`
	QuotedAt          *time.Time       `json:"quoted_at,omitempty"`
	ConfirmedAt       *time.Time       `json:"confirmed_at,omitempty"`
	ClosedAt          *time.Time       `json:"closed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Items             []OrderItem      `json:"items,omitempty" gorm:"-"`
}

func (Order) TableName() string { return "orders" }

// ClearPricing drops every computed price so the order reads as unpriced.
func (o *Order) ClearPricing() {
	o.PricingTierID = nil
	o.BasePrice = nil
	o.MarginPercent = nil
	o.MarginAmount = nil
	o.FinalPrice = nil
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID  uuid.UUID       `json:"platform_id" gorm:"type:uuid;not null"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:order_items_order_asset_key"`
	AssetID     uuid.UUID       `json:"asset_id" gorm:"type:uuid;not null;uniqueIndex:order_items_order_asset_key"`
	AssetName   string          `json:"asset_name" gorm:"not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitVolume  decimal.Decimal `json:"unit_volume" gorm:"type:numeric(12,3);not null"`
	TotalVolume decimal.Decimal `json:"total_volume" gorm:"type:numeric(14,3);not null"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (OrderItem) TableName() string { return "order_items" }

// StatusHistory is one entry of an order's timeline. FromStatus equals
// ToStatus for edits that do not move the order.
type StatusHistory struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID  `json:"platform_id" gorm:"type:uuid;not null"`
	OrderID    uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	FromStatus *string    `json:"from_status,omitempty"`
	ToStatus   string     `json:"to_status" gorm:"not null"`
	Note       *string    `json:"note,omitempty"`
	ChangedBy  *uuid.UUID `json:"changed_by,omitempty" gorm:"type:uuid"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (StatusHistory) TableName() string { return "order_status_history" }
