package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingTier prices a location and volume band at a flat base cost. The
// band is half-open: [VolumeMin, VolumeMax). A nil bound is unbounded.
type PricingTier struct {
	ID         uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID        `json:"platform_id" gorm:"type:uuid;not null;index:pricing_tiers_location_idx"`
	CountryID  uuid.UUID        `json:"country_id" gorm:"type:uuid;not null;index:pricing_tiers_location_idx"`
	CityID     uuid.UUID        `json:"city_id" gorm:"type:uuid;not null;index:pricing_tiers_location_idx"`
	VolumeMin  *decimal.Decimal `json:"volume_min" gorm:"type:numeric(12,3)"`
	VolumeMax  *decimal.Decimal `json:"volume_max" gorm:"type:numeric(12,3)"`
	BasePrice  decimal.Decimal  `json:"base_price" gorm:"type:numeric(14,2);not null"`
	Currency   string           `json:"currency" gorm:"not null"`
	IsActive   bool             `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `json:"-" gorm:"index"`
}

func (PricingTier) TableName() string { return "pricing_tiers" }

// Contains reports whether volume falls inside the tier band.
func (t PricingTier) Contains(volume decimal.Decimal) bool {
	if t.VolumeMin != nil && volume.LessThan(*t.VolumeMin) {
		return false
	}
	if t.VolumeMax != nil && !volume.LessThan(*t.VolumeMax) {
		return false
	}
	return true
}

// Overlaps reports whether [aMin, aMax) and [bMin, bMax) intersect, where a
// nil minimum is -Inf and a nil maximum is +Inf.
func Overlaps(aMin, aMax, bMin, bMax *decimal.Decimal) bool {
	return lowerBelowUpper(aMin, bMax) && lowerBelowUpper(bMin, aMax)
}

func lowerBelowUpper(lower, upper *decimal.Decimal) bool {
	if lower == nil || upper == nil {
		return true
	}
	return lower.LessThan(*upper)
}
