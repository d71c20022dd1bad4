package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Create(n).Error
}

func (r *repo) UpdateDelivery(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"status":     n.Status,
			"attempts":   n.Attempts,
			"last_error": n.LastError,
			"sent_at":    n.SentAt,
			"updated_at": n.UpdatedAt,
		}).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	err := db.WithContext(ctx).
		Where("platform_id = ? AND id = ?", platformID, id).
		Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repo) ListForUser(ctx context.Context, db *gorm.DB, platformID, userID uuid.UUID, unread *bool, query pagination.Query) ([]domain.Notification, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("platform_id = ? AND user_id = ? AND channel = ?", platformID, userID, domain.ChannelEmail)
	if unread != nil {
		if *unread {
			stmt = stmt.Where("read_at IS NULL")
		} else {
			stmt = stmt.Where("read_at IS NOT NULL")
		}
	}
	if query.SearchTerm != "" {
		stmt = stmt.Where("LOWER(subject) LIKE ?", query.Like())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Notification
	if err := query.Apply(stmt).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, platformID, userID, id uuid.UUID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("platform_id = ? AND user_id = ? AND id = ? AND read_at IS NULL", platformID, userID, id).
		Updates(map[string]any{"read_at": at, "updated_at": at})
	return res.RowsAffected, res.Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, platformID, userID uuid.UUID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("platform_id = ? AND user_id = ? AND read_at IS NULL", platformID, userID).
		Updates(map[string]any{"read_at": at, "updated_at": at})
	return res.RowsAffected, res.Error
}

func (r *repo) ListRetryable(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]domain.Notification, error) {
	var items []domain.Notification
	err := db.WithContext(ctx).
		Where("status = ? AND attempts < ?", domain.StatusFailed, maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
