// Package authorization enforces role based access per platform with casbin.
// Subjects are "user:<uuid>"; each user is linked to its role
// inside the "platform:<uuid>" domain on first use.
package authorization

import (
	"context"
	"errors"
)

type Service interface {
	Authorize(ctx context.Context, actor string, platformID string, object string, action string) error
}

var (
	ErrInvalidActor    = errors.New("invalid authorization actor")
	ErrInvalidPlatform = errors.New("invalid authorization platform")
	ErrInvalidObject   = errors.New("invalid authorization object")
	ErrInvalidAction   = errors.New("invalid authorization action")
	ErrForbidden       = errors.New("forbidden")
)
