package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/order/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) UpdateGuarded(ctx context.Context, db *gorm.DB, order *domain.Order, expected string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("platform_id = ? AND id = ? AND status = ?", order.PlatformID, order.ID, expected).
		Updates(map[string]any{
			"brand_id":           order.BrandID,
			"event_name":         order.EventName,
			"event_start":        order.EventStart,
			"event_end":          order.EventEnd,
			"venue_name":         order.VenueName,
			"venue_address":      order.VenueAddress,
			"country_id":         order.CountryID,
			"city_id":            order.CityID,
			"status":             order.Status,
			"total_volume":       order.TotalVolume,
			"pricing_tier_id":    order.PricingTierID,
			"base_price":         order.BasePrice,
			"margin_percent":     order.MarginPercent,
			"margin_amount":      order.MarginAmount,
			"final_price":        order.FinalPrice,
			"pricing_overridden": order.PricingOverridden,
			"currency":           order.Currency,
			"pricing_note":       order.PricingNote,
			"notes":              order.Notes,
			"submitted_at":       order.SubmittedAt,
			"quoted_at":          order.QuotedAt,
			"confirmed_at":       order.ConfirmedAt,
			"closed_at":          order.ClosedAt,
			"updated_at":         order.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Order, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("platform_id = ?", platformID)
	if filter.CompanyID != nil {
		stmt = stmt.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("(LOWER(order_number) LIKE ? OR LOWER(event_name) LIKE ?)", query.Like(), query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Order
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.OrderItem) error {
	return db.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Where("order_id = ? AND id = ?", item.OrderID, item.ID).
		Updates(map[string]any{
			"quantity":     item.Quantity,
			"total_volume": item.TotalVolume,
			"updated_at":   item.UpdatedAt,
		}).Error
}

func (r *repo) DeleteItem(ctx context.Context, db *gorm.DB, orderID, itemID uuid.UUID) error {
	return db.WithContext(ctx).
		Where("order_id = ? AND id = ?", orderID, itemID).
		Delete(&domain.OrderItem{}).Error
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, orderID, itemID uuid.UUID) (*domain.OrderItem, error) {
	var item domain.OrderItem
	err := db.WithContext(ctx).
		Where("order_id = ? AND id = ?", orderID, itemID).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC, asset_name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertHistory(ctx context.Context, db *gorm.DB, entry *domain.StatusHistory) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]domain.StatusHistory, error) {
	var entries []domain.StatusHistory
	err := db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
