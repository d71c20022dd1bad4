package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListOrders(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.Filter) ([]domain.OrderRow, error) {
	var rows []domain.OrderRow
	err := scoped(db.WithContext(ctx).Table("orders o"), platformID, filter).
		Select("o.id, o.company_id, o.status, o.final_price, o.created_at").
		Order("o.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) TopCompanies(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.Filter, limit int) ([]domain.CompanyRevenue, error) {
	var rows []domain.CompanyRevenue
	err := scoped(db.WithContext(ctx).Table("orders o"), platformID, filter).
		Joins("JOIN companies c ON c.id = o.company_id").
		Where("o.status IN ?", domain.RevenueStatuses).
		Select("o.company_id AS company_id, c.name AS company_name, COUNT(*) AS order_count, COALESCE(SUM(o.final_price), 0) AS total_revenue").
		Group("o.company_id, c.name").
		Order("total_revenue DESC, company_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ExportRows(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.Filter) ([]domain.ExportRow, error) {
	var rows []domain.ExportRow
	err := scoped(db.WithContext(ctx).Table("orders o"), platformID, filter).
		Joins("JOIN companies c ON c.id = o.company_id").
		Select("o.order_number, c.name AS company_name, o.event_name, o.venue_name, o.status, o.event_start, o.event_end, o.total_volume, o.final_price, o.currency, o.created_at").
		Order("o.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func scoped(stmt *gorm.DB, platformID uuid.UUID, filter domain.Filter) *gorm.DB {
	stmt = stmt.Where("o.platform_id = ? AND o.created_at >= ? AND o.created_at <= ?", platformID, filter.From, filter.To)
	if filter.CompanyID != nil {
		stmt = stmt.Where("o.company_id = ?", *filter.CompanyID)
	}
	return stmt
}
