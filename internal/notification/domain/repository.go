package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
	UpdateDelivery(ctx context.Context, db *gorm.DB, n *Notification) error
	FindByID(ctx context.Context, db *gorm.DB, platformID, id uuid.UUID) (*Notification, error)
	ListForUser(ctx context.Context, db *gorm.DB, platformID, userID uuid.UUID, unread *bool, query pagination.Query) ([]Notification, int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, platformID, userID, id uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, platformID, userID uuid.UUID, at time.Time) (int64, error)
	// ListRetryable returns FAILED rows below maxAttempts across all platforms,
	// oldest first.
	ListRetryable(ctx context.Context, db *gorm.DB, maxAttempts, limit int) ([]Notification, error)
}
