package platformctx

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleAdmin     = "ADMIN"
	RoleLogistics = "LOGISTICS"
	RoleClient    = "CLIENT"
)

type platformKey struct{}
type actorKey struct{}

// Actor is the authenticated user behind a request, decoded from the access token.
type Actor struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	CompanyID *uuid.UUID
}

func (a Actor) IsClient() bool {
	return a.Role == RoleClient
}

// IsStaff reports whether the actor operates the platform rather than a client company.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleLogistics
}

// WithPlatformID stores the resolved platform id in the context.
func WithPlatformID(ctx context.Context, platformID uuid.UUID) context.Context {
	return context.WithValue(ctx, platformKey{}, platformID)
}

// PlatformIDFromContext returns the platform id from context, if set.
func PlatformIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(platformKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// CompanyScope returns the company a client actor is restricted to. Staff
// actors and anonymous contexts are unrestricted.
func CompanyScope(ctx context.Context) (*uuid.UUID, bool) {
	actor, ok := ActorFromContext(ctx)
	if !ok || !actor.IsClient() {
		return nil, false
	}
	return actor.CompanyID, true
}
