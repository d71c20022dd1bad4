package authorization

import (
	"context"
	"testing"

	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	auditrepo "github.com/smallbiznis/eventory/internal/audit/repository"
	auditservice "github.com/smallbiznis/eventory/internal/audit/service"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest(&auditdomain.AuditLog{})
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	svc := NewService(Params{
		DB:       conn,
		Log:      log,
		Enforcer: enforcer,
		AuditSvc: auditservice.NewService(auditservice.Params{DB: conn, Log: log, Repo: auditrepo.Provide()}),
	})
	return svc, conn
}

func actorContext(platformID uuid.UUID, role string) (context.Context, string) {
	actor := platformctx.Actor{UserID: uuid.New(), Role: role}
	ctx := platformctx.WithActor(platformctx.WithPlatformID(context.Background(), platformID), actor)
	return ctx, "user:" + actor.UserID.String()
}

func TestRolePermissions(t *testing.T) {
	svc, _ := newService(t)
	platformID := uuid.New()

	cases := []struct {
		role    string
		object  string
		action  string
		allowed bool
	}{
		{platformctx.RoleAdmin, ObjectPricingTier, ActionCreate, true},
		{platformctx.RoleAdmin, ObjectAuditLog, ActionView, true},
		{platformctx.RoleAdmin, ObjectInvoice, ActionInvoiceVoid, true},
		{platformctx.RoleLogistics, ObjectPricingTier, ActionView, true},
		{platformctx.RoleLogistics, ObjectPricingTier, ActionCreate, false},
		{platformctx.RoleLogistics, ObjectOrder, ActionOrderPrice, true},
		{platformctx.RoleLogistics, ObjectInvoice, ActionInvoiceVoid, false},
		{platformctx.RoleLogistics, ObjectAuditLog, ActionView, false},
		{platformctx.RoleClient, ObjectOrder, ActionCreate, true},
		{platformctx.RoleClient, ObjectOrder, ActionOrderTransition, true},
		{platformctx.RoleClient, ObjectOrder, ActionOrderPrice, false},
		{platformctx.RoleClient, ObjectAsset, ActionView, true},
		{platformctx.RoleClient, ObjectAsset, ActionCreate, false},
		{platformctx.RoleClient, ObjectUser, ActionView, false},
		{platformctx.RoleClient, ObjectAnalytics, ActionAnalyticsExport, false},
	}
	for _, tc := range cases {
		t.Run(tc.role+"/"+tc.object+"/"+tc.action, func(t *testing.T) {
			ctx, subject := actorContext(platformID, tc.role)
			err := svc.Authorize(ctx, subject, platformID.String(), tc.object, tc.action)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	svc, _ := newService(t)
	platformID := uuid.New()
	ctx, subject := actorContext(platformID, platformctx.RoleClient)

	err := svc.Authorize(ctx, subject, platformID.String(), ObjectPricingTier, ActionCreate)
	assert.ErrorIs(t, err, ErrForbidden)

	actor, _ := platformctx.ActorFromContext(ctx)
	actor.Role = platformctx.RoleAdmin
	promoted := platformctx.WithActor(ctx, actor)
	require.NoError(t, svc.Authorize(promoted, subject, platformID.String(), ObjectPricingTier, ActionCreate))

	// the old client link must not linger
	actor.Role = platformctx.RoleClient
	demoted := platformctx.WithActor(ctx, actor)
	err = svc.Authorize(demoted, subject, platformID.String(), ObjectPricingTier, ActionCreate)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRolesDoNotLeakAcrossPlatforms(t *testing.T) {
	svc, _ := newService(t)
	first, second := uuid.New(), uuid.New()
	ctx, subject := actorContext(first, platformctx.RoleAdmin)
	require.NoError(t, svc.Authorize(ctx, subject, first.String(), ObjectUser, ActionDelete))

	impl := svc.(*ServiceImpl)
	has, err := impl.enforcer.HasGroupingPolicy(subject, roleAdmin, "platform:"+second.String())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestAuthorizeValidation(t *testing.T) {
	svc, conn := newService(t)
	platformID := uuid.New()
	ctx, subject := actorContext(platformID, platformctx.RoleAdmin)

	assert.ErrorIs(t, svc.Authorize(ctx, "", platformID.String(), ObjectUser, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "api_key:1", platformID.String(), ObjectUser, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, subject, "org-1", ObjectUser, ActionView), ErrInvalidPlatform)
	assert.ErrorIs(t, svc.Authorize(ctx, subject, platformID.String(), "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, subject, platformID.String(), ObjectUser, " "), ErrInvalidAction)

	// subject must match the authenticated actor
	other := "user:" + uuid.NewString()
	assert.ErrorIs(t, svc.Authorize(ctx, other, platformID.String(), ObjectUser, ActionView), ErrForbidden)

	var denied int64
	require.NoError(t, conn.Model(&auditdomain.AuditLog{}).Where("action = ?", "authorization.denied").Count(&denied).Error)
	assert.EqualValues(t, 1, denied)
}

func TestPoliciesCoverEveryObjectForAdmin(t *testing.T) {
	seen := map[string]bool{}
	for _, policy := range Policies() {
		if policy[0] == roleAdmin && policy[2] == ActionView {
			seen[policy[1]] = true
		}
	}
	for _, object := range []string{
		ObjectPlatform, ObjectUser, ObjectCountry, ObjectCity, ObjectCompany,
		ObjectBrand, ObjectWarehouse, ObjectZone, ObjectPricingTier, ObjectAsset,
		ObjectCollection, ObjectOrder, ObjectInvoice, ObjectAnalytics, ObjectAuditLog,
	} {
		assert.True(t, seen[object], object)
	}
}
