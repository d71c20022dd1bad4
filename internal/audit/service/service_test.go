package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/audit/repository"
	obscontext "github.com/smallbiznis/eventory/internal/observability/context"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAuditLogResolvesContext(t *testing.T) {
	conn, err := db.NewTest(&auditdomain.AuditLog{})
	require.NoError(t, err)
	svc := NewService(Params{DB: conn, Log: zaptest.NewLogger(t), Repo: repository.Provide()})

	platformID := uuid.New()
	userID := uuid.New()
	ctx := platformctx.WithPlatformID(context.Background(), platformID)
	ctx = platformctx.WithActor(ctx, platformctx.Actor{UserID: userID, Role: platformctx.RoleAdmin})
	ctx = obscontext.WithClientInfo(ctx, obscontext.ClientInfo{IP: "10.0.0.1", UserAgent: "curl/8"})
	ctx = obscontext.WithRequestID(ctx, "req-1")

	target := "tier-1"
	require.NoError(t, svc.AuditLog(ctx, "", nil, "pricing_tier.create", "pricing_tier", &target, map[string]any{"base_price": "100.00"}))
	require.NoError(t, svc.AuditLog(ctx, "system", nil, "invoice.mark_overdue", "invoice", nil, nil))

	assert.ErrorIs(t, svc.AuditLog(ctx, "", nil, " ", "x", nil, nil), auditdomain.ErrInvalidAction)

	logs, meta, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "pricing_tier.create"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	require.Len(t, logs, 1)
	assert.Equal(t, "user", logs[0].ActorType)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, userID.String(), *logs[0].ActorID)
	require.NotNil(t, logs[0].IPAddress)
	assert.Equal(t, "10.0.0.1", *logs[0].IPAddress)
	assert.Equal(t, "req-1", logs[0].Metadata["request_id"])

	all, _, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Query: pagination.Query{Limit: 10}})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	other := platformctx.WithPlatformID(context.Background(), uuid.New())
	none, _, err := svc.List(other, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
