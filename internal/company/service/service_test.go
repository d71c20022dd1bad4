package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	auditrepo "github.com/smallbiznis/eventory/internal/audit/repository"
	auditservice "github.com/smallbiznis/eventory/internal/audit/service"
	"github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/company/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, context.Context, *gorm.DB) {
	t.Helper()
	conn, err := db.NewTest(&domain.Company{}, &auditdomain.AuditLog{})
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	audit := auditservice.NewService(auditservice.Params{DB: conn, Log: log, Repo: auditrepo.Provide()})
	svc := New(Params{DB: conn, Log: log, Repo: repository.Provide(), AuditSvc: audit})
	return svc, platformctx.WithPlatformID(context.Background(), uuid.New()), conn
}

func TestCreateDerivesSlugAndAudits(t *testing.T) {
	svc, ctx, conn := setup(t)

	margin := decimal.NewFromInt(18)
	company, err := svc.Create(ctx, domain.CreateRequest{Name: "Red Bull Events", ContactEmail: "OPS@RedBull.com", MarginPercent: &margin})
	require.NoError(t, err)
	assert.Equal(t, "red-bull-events", company.Slug)
	require.NotNil(t, company.ContactEmail)
	assert.Equal(t, "ops@redbull.com", *company.ContactEmail)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Red Bull Events"})
	assert.ErrorIs(t, err, domain.ErrSlugExists)

	var count int64
	require.NoError(t, conn.Model(&auditdomain.AuditLog{}).Where("action = ?", "company.create").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMarginValidationAndClear(t *testing.T) {
	svc, ctx, _ := setup(t)

	bad := decimal.NewFromInt(120)
	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Too Much", MarginPercent: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidMargin)

	margin := decimal.NewFromInt(10)
	company, err := svc.Create(ctx, domain.CreateRequest{Name: "Acme", MarginPercent: &margin})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, company.ID.String(), domain.UpdateRequest{ClearMargin: true})
	require.NoError(t, err)
	assert.Nil(t, updated.MarginPercent)

	got, err := svc.Get(ctx, company.ID.String())
	require.NoError(t, err)
	assert.Nil(t, got.MarginPercent)
}

func TestClientSeesOnlyOwnCompany(t *testing.T) {
	svc, ctx, _ := setup(t)

	mine, err := svc.Create(ctx, domain.CreateRequest{Name: "Mine"})
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, domain.CreateRequest{Name: "Theirs"})
	require.NoError(t, err)

	clientCtx := platformctx.WithActor(ctx, platformctx.Actor{UserID: uuid.New(), Role: platformctx.RoleClient, CompanyID: &mine.ID})

	items, meta, err := svc.List(clientCtx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, mine.ID, items[0].ID)

	_, err = svc.Get(clientCtx, theirs.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeactivateAndDelete(t *testing.T) {
	svc, ctx, _ := setup(t)

	company, err := svc.Create(ctx, domain.CreateRequest{Name: "Gone Soon"})
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, company.ID.String())
	require.NoError(t, err)
	again, err := svc.Deactivate(ctx, company.ID.String())
	require.NoError(t, err)
	assert.False(t, again.IsActive)

	require.NoError(t, svc.Delete(ctx, company.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, company.ID.String()), domain.ErrNotFound)
}
