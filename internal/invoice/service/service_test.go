package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	auditrepo "github.com/smallbiznis/eventory/internal/audit/repository"
	auditservice "github.com/smallbiznis/eventory/internal/audit/service"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	companyrepo "github.com/smallbiznis/eventory/internal/company/repository"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/invoice/domain"
	"github.com/smallbiznis/eventory/internal/invoice/repository"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
	orderrepo "github.com/smallbiznis/eventory/internal/order/repository"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	platformrepo "github.com/smallbiznis/eventory/internal/platform/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/providers/pdf"
	"github.com/smallbiznis/eventory/internal/providers/storage"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type capturedNotifications struct {
	notificationdomain.Service
	mu     sync.Mutex
	events []notificationdomain.Event
}

func (c *capturedNotifications) Notify(ctx context.Context, event notificationdomain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

type fixture struct {
	t          *testing.T
	conn       *gorm.DB
	svc        *Service
	store      *storage.MemoryProvider
	notified   *capturedNotifications
	platformID uuid.UUID
	company    companydomain.Company
	other      companydomain.Company
	staff      context.Context
	client     context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.NewTest(
		&platformdomain.Platform{},
		&companydomain.Company{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&domain.Invoice{},
		&domain.Sequence{},
		&auditdomain.AuditLog{},
	)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	now := time.Now().UTC()

	f := &fixture{
		t:          t,
		conn:       conn,
		store:      storage.NewMemory("https://cdn.test"),
		notified:   &capturedNotifications{},
		platformID: uuid.New(),
	}
	require.NoError(t, conn.Create(&platformdomain.Platform{ID: f.platformID, Name: "Eventory", Slug: "eventory", Currency: "AED", IsActive: true, CreatedAt: now, UpdatedAt: now}).Error)

	email := "billing@acme.test"
	f.company = companydomain.Company{ID: uuid.New(), PlatformID: f.platformID, Name: "Acme", Slug: "acme", ContactEmail: &email, IsActive: true, CreatedAt: now, UpdatedAt: now}
	f.other = companydomain.Company{ID: uuid.New(), PlatformID: f.platformID, Name: "Globex", Slug: "globex", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&f.company).Error)
	require.NoError(t, conn.Create(&f.other).Error)

	f.svc = New(Params{
		DB:              conn,
		Log:             log,
		PricingCfg:      config.NewStaticPricingConfigHolder(config.DefaultPricingConfig()),
		Repo:            repository.Provide(),
		OrderRepo:       orderrepo.Provide(),
		CompanyRepo:     companyrepo.Provide(),
		PlatformRepo:    platformrepo.Provide(),
		PDF:             pdf.New(),
		Storage:         f.store,
		AuditSvc:        auditservice.NewService(auditservice.Params{DB: conn, Log: log, Repo: auditrepo.Provide()}),
		NotificationSvc: f.notified,
	}).(*Service)

	base := platformctx.WithPlatformID(context.Background(), f.platformID)
	f.staff = platformctx.WithActor(base, platformctx.Actor{UserID: uuid.New(), Role: platformctx.RoleAdmin})
	companyID := f.company.ID
	f.client = platformctx.WithActor(base, platformctx.Actor{UserID: uuid.New(), Role: platformctx.RoleClient, CompanyID: &companyID})
	return f
}

// insertOrder stores an order priced at base 1000 with a 20% margin.
func (f *fixture) insertOrder(companyID uuid.UUID, status string, priced bool) orderdomain.Order {
	f.t.Helper()
	now := time.Now().UTC()
	order := orderdomain.Order{
		ID:          uuid.New(),
		PlatformID:  f.platformID,
		CompanyID:   companyID,
		OrderNumber: "ORD-" + uuid.NewString()[:8],
		CreatedBy:   uuid.New(),
		EventName:   "Expo",
		EventStart:  now.AddDate(0, 0, 10),
		EventEnd:    now.AddDate(0, 0, 12),
		VenueName:   "World Trade Centre",
		CountryID:   uuid.New(),
		CityID:      uuid.New(),
		Status:      status,
		TotalVolume: decimal.RequireFromString("4"),
		Currency:    "AED",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if priced {
		base := decimal.NewFromInt(1000)
		margin := decimal.NewFromInt(20)
		amount := decimal.NewFromInt(200)
		final := decimal.NewFromInt(1200)
		order.BasePrice, order.MarginPercent, order.MarginAmount, order.FinalPrice = &base, &margin, &amount, &final
	}
	require.NoError(f.t, f.conn.Create(&order).Error)
	item := orderdomain.OrderItem{
		ID:          uuid.New(),
		PlatformID:  f.platformID,
		OrderID:     order.ID,
		AssetID:     uuid.New(),
		AssetName:   "Stage riser",
		Quantity:    4,
		UnitVolume:  decimal.NewFromInt(1),
		TotalVolume: decimal.NewFromInt(4),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(f.t, f.conn.Create(&item).Error)
	return order
}

func TestGenerateIssuesNumberedInvoice(t *testing.T) {
	f := setup(t)
	issuedAt := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return issuedAt }

	first, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "INV-202603-00001", first.InvoiceNumber)
	assert.Equal(t, domain.StatusIssued, first.Status)
	assert.True(t, first.Subtotal.Equal(decimal.NewFromInt(1200)))
	assert.True(t, first.TaxAmount.Equal(decimal.NewFromInt(60)))
	assert.True(t, first.Total.Equal(decimal.NewFromInt(1260)))
	assert.Equal(t, issuedAt.AddDate(0, 0, 30), first.DueAt)
	require.NotNil(t, first.PDFURL)
	assert.Contains(t, *first.PDFURL, "https://cdn.test/invoices/")

	second, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusDelivered, true).ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "INV-202603-00002", second.InvoiceNumber)

	require.Len(t, f.notified.events, 2)
	event := f.notified.events[0]
	assert.Equal(t, notificationdomain.TypeInvoiceIssued, event.Type)
	assert.Equal(t, "INV-202603-00001", event.Data["invoice_number"])
	assert.Equal(t, "1260.00", event.Data["total"])

	var audits int64
	require.NoError(t, f.conn.Model(&auditdomain.AuditLog{}).Where("action = ?", "invoice.issued").Count(&audits).Error)
	assert.EqualValues(t, 2, audits)
}

func TestGenerateRejections(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	_, err = f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	quoted := f.insertOrder(f.company.ID, orderdomain.StatusQuoted, true)
	_, err = f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: quoted.ID.String()})
	assert.ErrorIs(t, err, domain.ErrOrderNotInvoiceable)

	unpriced := f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, false)
	_, err = f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: unpriced.ID.String()})
	assert.ErrorIs(t, err, domain.ErrOrderNotPriced)

	order := f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true)
	_, err = f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: order.ID.String()})
	require.NoError(t, err)
	_, err = f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: order.ID.String()})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
}

func TestClientSeesOnlyOwnInvoices(t *testing.T) {
	f := setup(t)
	mine, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)
	theirs, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.other.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)

	items, meta, err := f.svc.List(f.client, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)
	assert.EqualValues(t, 1, meta.Total)

	items, _, err = f.svc.List(f.client, domain.ListRequest{CompanyID: f.other.ID.String()})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = f.svc.Get(f.client, theirs.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, _, err = f.svc.List(f.staff, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMarkPaidAndReceipt(t *testing.T) {
	f := setup(t)
	invoice, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)

	doc, err := f.svc.RenderPDF(f.client, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoice.InvoiceNumber+".pdf", doc.FileName)
	assert.True(t, bytes.HasPrefix(doc.Body, []byte("%PDF")))

	future := time.Now().Add(48 * time.Hour)
	_, err = f.svc.MarkPaid(f.staff, invoice.ID.String(), domain.MarkPaidRequest{PaidAt: &future})
	assert.ErrorIs(t, err, domain.ErrInvalidPaidAt)

	paid, err := f.svc.MarkPaid(f.staff, invoice.ID.String(), domain.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = f.svc.MarkPaid(f.staff, invoice.ID.String(), domain.MarkPaidRequest{})
	assert.ErrorIs(t, err, domain.ErrNotOpen)
	_, err = f.svc.Void(f.staff, invoice.ID.String(), domain.VoidRequest{Reason: "late"})
	assert.ErrorIs(t, err, domain.ErrNotOpen)

	receipt, err := f.svc.RenderPDF(f.staff, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "receipt-"+invoice.InvoiceNumber+".pdf", receipt.FileName)
	assert.True(t, bytes.HasPrefix(receipt.Body, []byte("%PDF")))
}

func TestVoid(t *testing.T) {
	f := setup(t)
	invoice, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)

	voided, err := f.svc.Void(f.staff, invoice.ID.String(), domain.VoidRequest{Reason: "  duplicate billing "})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoid, voided.Status)
	require.NotNil(t, voided.VoidReason)
	assert.Equal(t, "duplicate billing", *voided.VoidReason)

	stored, err := f.svc.Get(f.staff, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoid, stored.Status)
}

func TestMarkOverdue(t *testing.T) {
	f := setup(t)
	issuedAt := time.Now().UTC().AddDate(0, 0, -40)
	f.svc.now = func() time.Time { return issuedAt }
	late, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)
	paid, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().UTC() }
	fresh, err := f.svc.Generate(f.staff, domain.GenerateRequest{OrderID: f.insertOrder(f.company.ID, orderdomain.StatusConfirmed, true).ID.String()})
	require.NoError(t, err)
	paidAt := issuedAt.Add(time.Hour)
	_, err = f.svc.MarkPaid(f.staff, paid.ID.String(), domain.MarkPaidRequest{PaidAt: &paidAt})
	require.NoError(t, err)
	f.notified.events = nil

	changed, err := f.svc.MarkOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored, err := f.svc.Get(f.staff, late.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOverdue, stored.Status)
	stored, err = f.svc.Get(f.staff, fresh.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIssued, stored.Status)

	require.Len(t, f.notified.events, 1)
	assert.Equal(t, notificationdomain.TypeInvoiceOverdue, f.notified.events[0].Type)
	assert.True(t, f.notified.events[0].NotifyStaff)

	changed, err = f.svc.MarkOverdue(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, changed)

	// overdue invoices can still be settled
	_, err = f.svc.MarkPaid(f.staff, late.ID.String(), domain.MarkPaidRequest{})
	require.NoError(t, err)
}
