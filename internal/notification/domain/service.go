package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	// Notify persists and sends one notification per recipient and channel.
	// Delivery failures are recorded on the rows and never returned.
	Notify(ctx context.Context, event Event) error
	ListMine(ctx context.Context, req ListRequest) ([]Notification, pagination.Meta, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	MarkAllRead(ctx context.Context) (int64, error)
	RetryFailed(ctx context.Context, limit int) (int, error)
}

type ListRequest struct {
	pagination.Query
	Unread *bool `form:"unread"`
}

var (
	ErrInvalidPlatform = errors.New("platform context is required")
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidID       = errors.New("invalid notification id")
	ErrNotFound        = errors.New("notification not found")
	ErrUnknownType     = errors.New("unknown notification type")
)
