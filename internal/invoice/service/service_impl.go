package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/invoice/domain"
	"github.com/smallbiznis/eventory/internal/invoice/format"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/eventory/internal/order/domain"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/pricing"
	"github.com/smallbiznis/eventory/internal/providers/pdf"
	"github.com/smallbiznis/eventory/internal/providers/storage"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout   = "02 Jan 2006"
	overdueBatch = 200
)

var sortColumns = map[string]string{
	"invoice_number": "invoice_number",
	"issued_at":      "issued_at",
	"due_at":         "due_at",
	"total":          "total",
	"created_at":     "created_at",
}

// Statuses from which an order can be billed.
var invoiceable = map[string]bool{
	orderdomain.StatusConfirmed:     true,
	orderdomain.StatusInPreparation: true,
	orderdomain.StatusDispatched:    true,
	orderdomain.StatusDelivered:     true,
	orderdomain.StatusReturned:      true,
	orderdomain.StatusClosed:        true,
}

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	PricingCfg      *config.PricingConfigHolder
	Repo            domain.Repository
	OrderRepo       orderdomain.Repository
	CompanyRepo     companydomain.Repository
	PlatformRepo    platformdomain.Repository
	PDF             pdf.Provider
	Storage         storage.Provider
	AuditSvc        auditdomain.Service
	NotificationSvc notificationdomain.Service `optional:"true"`
	Metrics         *metrics.Metrics           `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	pricingCfg   *config.PricingConfigHolder
	repo         domain.Repository
	orderRepo    orderdomain.Repository
	companyRepo  companydomain.Repository
	platformRepo platformdomain.Repository
	pdf          pdf.Provider
	storage      storage.Provider
	auditSvc     auditdomain.Service
	notifier     notificationdomain.Service
	metrics      *metrics.Metrics
	now          func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		pricingCfg:   p.PricingCfg,
		repo:         p.Repo,
		orderRepo:    p.OrderRepo,
		companyRepo:  p.CompanyRepo,
		platformRepo: p.PlatformRepo,
		pdf:          p.PDF,
		storage:      p.Storage,
		auditSvc:     p.AuditSvc,
		notifier:     p.NotificationSvc,
		metrics:      p.Metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.Invoice, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	orderID, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		return nil, domain.ErrInvalidOrder
	}

	cfg := s.pricingCfg.Get()
	var (
		invoice *domain.Invoice
		order   *orderdomain.Order
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err = s.orderRepo.FindByID(ctx, tx, platformID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if !invoiceable[order.Status] {
			return domain.ErrOrderNotInvoiceable
		}
		if order.FinalPrice == nil {
			return domain.ErrOrderNotPriced
		}
		existing, err := s.repo.FindByOrderID(ctx, tx, platformID, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrAlreadyInvoiced
		}

		seq, err := s.repo.NextSequence(ctx, tx, platformID)
		if err != nil {
			return err
		}
		issuedAt := s.now()
		number, err := format.InvoiceNumber(cfg.InvoiceNumberFormat, issuedAt, seq)
		if err != nil {
			return err
		}

		subtotal := order.FinalPrice.Round(2)
		taxPercent := cfg.VAT()
		tax := pricing.Tax(subtotal, taxPercent)
		invoice = &domain.Invoice{
			ID:            uuid.New(),
			PlatformID:    platformID,
			CompanyID:     order.CompanyID,
			OrderID:       order.ID,
			InvoiceNumber: number,
			Status:        domain.StatusIssued,
			Subtotal:      subtotal,
			TaxPercent:    taxPercent,
			TaxAmount:     tax,
			Total:         subtotal.Add(tax),
			Currency:      order.Currency,
			IssuedAt:      issuedAt,
			DueAt:         issuedAt.AddDate(0, 0, cfg.InvoiceDueDays),
			CreatedAt:     issuedAt,
			UpdatedAt:     issuedAt,
		}
		return s.repo.Insert(ctx, tx, invoice)
	})
	if err != nil {
		return nil, db.TranslateUnique(err, map[string]error{
			"invoices_order_key":           domain.ErrAlreadyInvoiced,
			"invoices_platform_number_key": domain.ErrNumberConflict,
			"invoice_sequences_pkey":       domain.ErrNumberConflict,
		}, domain.ErrNumberConflict)
	}

	s.log.Info("invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("order_id", order.ID.String()),
	)
	s.storeDocument(ctx, invoice)
	s.metrics.RecordInvoiceIssued(ctx, platformID.String())
	s.audit(ctx, "invoice.issued", invoice, map[string]any{
		"order_number": order.OrderNumber,
		"total":        invoice.Total.StringFixed(2),
		"currency":     invoice.Currency,
	})
	s.notify(ctx, notificationdomain.TypeInvoiceIssued, invoice, order.OrderNumber)
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Invoice, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{}
	if status := strings.ToUpper(strings.TrimSpace(req.Status)); status != "" {
		if !domain.ValidStatus(status) {
			return nil, pagination.Meta{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if value := strings.TrimSpace(req.CompanyID); value != "" {
		companyID, err := uuid.Parse(value)
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidCompany
		}
		filter.CompanyID = &companyID
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		if scope == nil || (filter.CompanyID != nil && *filter.CompanyID != *scope) {
			return []domain.Invoice{}, pagination.Meta{Page: 1, Limit: pagination.DefaultLimit}, nil
		}
		filter.CompanyID = scope
	}

	query := req.Query.Normalize(sortColumns, "issued_at")
	items, total, err := s.repo.List(ctx, s.db, platformID, filter, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	invoice, err := s.repo.FindByID(ctx, s.db, platformID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped && (scope == nil || *scope != invoice.CompanyID) {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) (*domain.Document, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status == domain.StatusPaid {
		doc, err := s.document(ctx, invoice)
		if err != nil {
			return nil, err
		}
		body, err := s.pdf.RenderReceipt(ctx, doc)
		if err != nil {
			return nil, err
		}
		return &domain.Document{
			FileName:    fmt.Sprintf("receipt-%s.pdf", invoice.InvoiceNumber),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	}

	fileName := fmt.Sprintf("%s.pdf", invoice.InvoiceNumber)
	if invoice.PDFKey != nil && s.storage != nil && s.storage.Enabled() {
		body, err := s.storage.Get(ctx, *invoice.PDFKey)
		if err == nil {
			return &domain.Document{FileName: fileName, ContentType: "application/pdf", Body: body}, nil
		}
		s.log.Warn("stored invoice pdf unavailable, rendering again",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
	body, err := s.render(ctx, invoice)
	if err != nil {
		return nil, err
	}
	return &domain.Document{FileName: fileName, ContentType: "application/pdf", Body: body}, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string, req domain.MarkPaidRequest) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Open(invoice.Status) {
		return nil, domain.ErrNotOpen
	}
	now := s.now()
	paidAt := now
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
		if paidAt.Before(invoice.IssuedAt.Truncate(24*time.Hour)) || paidAt.After(now) {
			return nil, domain.ErrInvalidPaidAt
		}
	}

	previous := invoice.Status
	invoice.Status = domain.StatusPaid
	invoice.PaidAt = &paidAt
	invoice.UpdatedAt = now
	updated, err := s.repo.UpdateStatus(ctx, s.db, invoice, domain.StatusIssued, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrNotOpen
	}

	s.audit(ctx, "invoice.paid", invoice, map[string]any{
		"previous_status": previous,
		"paid_at":         paidAt.Format(time.RFC3339),
	})
	return invoice, nil
}

func (s *Service) Void(ctx context.Context, id string, req domain.VoidRequest) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.Open(invoice.Status) {
		return nil, domain.ErrNotOpen
	}

	now := s.now()
	previous := invoice.Status
	invoice.Status = domain.StatusVoid
	invoice.VoidedAt = &now
	invoice.VoidReason = optional(req.Reason)
	invoice.UpdatedAt = now
	updated, err := s.repo.UpdateStatus(ctx, s.db, invoice, domain.StatusIssued, domain.StatusOverdue)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrNotOpen
	}

	metadata := map[string]any{"previous_status": previous}
	if invoice.VoidReason != nil {
		metadata["reason"] = *invoice.VoidReason
	}
	s.audit(ctx, "invoice.voided", invoice, metadata)
	return invoice, nil
}

func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDue(ctx, s.db, now.UTC(), overdueBatch)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range due {
		invoice := due[i]
		invoice.Status = domain.StatusOverdue
		invoice.UpdatedAt = s.now()
		updated, err := s.repo.UpdateStatus(ctx, s.db, &invoice, domain.StatusIssued)
		if err != nil {
			return changed, err
		}
		if !updated {
			continue
		}
		changed++

		scoped := platformctx.WithPlatformID(ctx, invoice.PlatformID)
		s.audit(scoped, "invoice.overdue", &invoice, map[string]any{
			"due_at": invoice.DueAt.Format(time.RFC3339),
		})
		s.notify(scoped, notificationdomain.TypeInvoiceOverdue, &invoice, "")
	}
	if changed > 0 {
		s.log.Info("invoices marked overdue", zap.Int("count", changed))
	}
	return changed, nil
}

// storeDocument renders the issued invoice and uploads it. Failures leave
// the invoice without a stored copy; RenderPDF renders on demand instead.
func (s *Service) storeDocument(ctx context.Context, invoice *domain.Invoice) {
	if s.storage == nil || !s.storage.Enabled() {
		return
	}
	body, err := s.render(ctx, invoice)
	if err != nil {
		s.log.Warn("failed to render invoice pdf", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return
	}
	key := storage.NewKey("invoices", invoice.PlatformID.String(), "pdf")
	object, err := s.storage.Put(ctx, key, "application/pdf", body)
	if err != nil {
		s.log.Warn("failed to upload invoice pdf", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return
	}
	if err := s.repo.UpdateDocument(ctx, s.db, invoice.PlatformID, invoice.ID, object.Key, object.URL); err != nil {
		s.log.Warn("failed to record invoice pdf", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return
	}
	invoice.PDFKey = &object.Key
	invoice.PDFURL = &object.URL
}

func (s *Service) render(ctx context.Context, invoice *domain.Invoice) ([]byte, error) {
	doc, err := s.document(ctx, invoice)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderInvoice(ctx, doc)
}

func (s *Service) document(ctx context.Context, invoice *domain.Invoice) (pdf.InvoiceDocument, error) {
	order, err := s.orderRepo.FindByID(ctx, s.db, invoice.PlatformID, invoice.OrderID)
	if err != nil {
		return pdf.InvoiceDocument{}, err
	}
	if order == nil {
		return pdf.InvoiceDocument{}, domain.ErrOrderNotFound
	}
	items, err := s.orderRepo.ListItems(ctx, s.db, order.ID)
	if err != nil {
		return pdf.InvoiceDocument{}, err
	}
	company, err := s.companyRepo.FindByID(ctx, s.db, invoice.PlatformID, invoice.CompanyID)
	if err != nil {
		return pdf.InvoiceDocument{}, err
	}
	platform, err := s.platformRepo.FindByID(ctx, s.db, invoice.PlatformID)
	if err != nil {
		return pdf.InvoiceDocument{}, err
	}

	doc := pdf.InvoiceDocument{
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.IssuedAt.Format(dateLayout),
		DueDate:       invoice.DueAt.Format(dateLayout),
		OrderNumber:   order.OrderNumber,
		EventName:     order.EventName,
		EventDates:    fmt.Sprintf("%s - %s", order.EventStart.Format(dateLayout), order.EventEnd.Format(dateLayout)),
		Venue:         order.VenueName,
		Currency:      invoice.Currency,
		Subtotal:      invoice.Subtotal.StringFixed(2),
		TaxLabel:      fmt.Sprintf("VAT (%s%%)", invoice.TaxPercent.String()),
		TaxAmount:     invoice.TaxAmount.StringFixed(2),
		Total:         invoice.Total.StringFixed(2),
	}
	if order.BasePrice != nil && order.MarginAmount != nil && order.MarginPercent != nil {
		doc.Subtotal = order.BasePrice.StringFixed(2)
		doc.MarginLabel = fmt.Sprintf("Service margin (%s%%)", order.MarginPercent.String())
		doc.Margin = order.MarginAmount.StringFixed(2)
	}
	if invoice.PaidAt != nil {
		doc.PaidDate = invoice.PaidAt.Format(dateLayout)
	}
	if platform != nil {
		doc.PlatformName = platform.Name
	}
	if company != nil {
		doc.BillToName = company.Name
		if company.ContactEmail != nil {
			doc.BillToEmail = *company.ContactEmail
		}
	}
	for _, item := range items {
		doc.Lines = append(doc.Lines, pdf.InvoiceLine{
			Description: item.AssetName,
			Qty:         item.Quantity,
			Volume:      item.TotalVolume.StringFixed(3),
		})
	}
	return doc, nil
}

func (s *Service) notify(ctx context.Context, kind string, invoice *domain.Invoice, orderNumber string) {
	if s.notifier == nil {
		return
	}
	if orderNumber == "" {
		if order, err := s.orderRepo.FindByID(ctx, s.db, invoice.PlatformID, invoice.OrderID); err == nil && order != nil {
			orderNumber = order.OrderNumber
		}
	}
	companyID := invoice.CompanyID
	err := s.notifier.Notify(ctx, notificationdomain.Event{
		Type:          kind,
		CompanyID:     &companyID,
		NotifyCompany: true,
		NotifyStaff:   kind == notificationdomain.TypeInvoiceOverdue,
		Data: map[string]any{
			"invoice_number": invoice.InvoiceNumber,
			"order_number":   orderNumber,
			"currency":       invoice.Currency,
			"total":          invoice.Total.StringFixed(2),
			"due_date":       invoice.DueAt.Format(dateLayout),
		},
	})
	if err != nil {
		s.log.Warn("failed to send invoice notification",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("type", kind),
			zap.Error(err),
		)
	}
}

func (s *Service) audit(ctx context.Context, action string, invoice *domain.Invoice, extra map[string]any) {
	if s.auditSvc == nil || invoice == nil {
		return
	}
	metadata := map[string]any{
		"invoice_number": invoice.InvoiceNumber,
		"order_id":       invoice.OrderID.String(),
		"company_id":     invoice.CompanyID.String(),
	}
	for key, value := range extra {
		metadata[key] = value
	}
	targetID := invoice.ID.String()
	if err := s.auditSvc.AuditLog(ctx, "", nil, action, "invoice", &targetID, metadata); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("failed to write invoice audit log", zap.String("action", action), zap.Error(err))
	}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}
