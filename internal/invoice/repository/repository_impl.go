package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/invoice/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Invoice, error) {
	return r.findOne(ctx, db, "platform_id = ? AND id = ?", platformID, id)
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, platformID, orderID uuid.UUID) (*domain.Invoice, error) {
	return r.findOne(ctx, db, "platform_id = ? AND order_id = ?", platformID, orderID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, where string, args ...any) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Where(where, args...).Take(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter domain.ListFilter, query pagination.Query) ([]domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("platform_id = ?", platformID)
	if filter.CompanyID != nil {
		stmt = stmt.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("LOWER(invoice_number) LIKE ?", query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Invoice
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, from ...string) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("platform_id = ? AND id = ? AND status IN ?", invoice.PlatformID, invoice.ID, from).
		Updates(map[string]any{
			"status":      invoice.Status,
			"paid_at":     invoice.PaidAt,
			"voided_at":   invoice.VoidedAt,
			"void_reason": invoice.VoidReason,
			"updated_at":  invoice.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) UpdateDocument(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID, key, url string) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("platform_id = ? AND id = ?", platformID, id).
		Updates(map[string]any{"pdf_key": key, "pdf_url": url}).Error
}

func (r *repo) ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Invoice, error) {
	var items []domain.Invoice
	err := db.WithContext(ctx).
		Where("status = ? AND due_at < ?", domain.StatusIssued, now).
		Order("due_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, platformID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Sequence{}).
		Where("platform_id = ?", platformID).
		Updates(map[string]any{
			"last_value": gorm.Expr("last_value + 1"),
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		seq := domain.Sequence{PlatformID: platformID, LastValue: 1, UpdatedAt: now}
		if err := db.WithContext(ctx).Create(&seq).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var seq domain.Sequence
	if err := db.WithContext(ctx).Where("platform_id = ?", platformID).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
