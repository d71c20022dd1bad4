package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type ListAuditLogRequest struct {
	pagination.Query
	Action     string     `form:"action"`
	TargetType string     `form:"target_type"`
	TargetID   string     `form:"target_id"`
	ActorType  string     `form:"actor_type"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02T15:04:05Z07:00"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02T15:04:05Z07:00"`
}

type Service interface {
	// AuditLog appends an entry. Actor, platform and client details default
	// to the request context when not given.
	AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) ([]AuditLog, pagination.Meta, error)
}

var (
	ErrInvalidPlatform  = errors.New("platform context is required")
	ErrInvalidTimeRange = errors.New("start_at must be before end_at")
	ErrInvalidAction    = errors.New("audit action is required")
)
