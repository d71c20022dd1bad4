package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	PlatformID uuid.UUID
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	StartAt    *time.Time
	EndAt      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, query pagination.Query) ([]AuditLog, int64, error)
}
