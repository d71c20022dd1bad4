package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/eventory/pkg/db/pagination"
)

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*Invoice, error)
	List(ctx context.Context, req ListRequest) ([]Invoice, pagination.Meta, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	// RenderPDF returns the invoice document, or the receipt once paid.
	RenderPDF(ctx context.Context, id string) (*Document, error)
	MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (*Invoice, error)
	Void(ctx context.Context, id string, req VoidRequest) (*Invoice, error)
	// MarkOverdue flips every issued invoice past its due date across all
	// platforms and returns how many changed.
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

type GenerateRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

type ListRequest struct {
	pagination.Query
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=ISSUED PAID OVERDUE VOID"`
}

type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

type VoidRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

type Document struct {
	FileName    string
	ContentType string
	Body        []byte
}

var (
	ErrInvalidPlatform     = errors.New("platform context is required")
	ErrInvalidID           = errors.New("invalid invoice id")
	ErrInvalidOrder        = errors.New("invalid order id")
	ErrInvalidCompany      = errors.New("invalid company id")
	ErrInvalidStatus       = errors.New("unknown invoice status")
	ErrNotFound            = errors.New("invoice not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotInvoiceable = errors.New("order must be confirmed before it can be invoiced")
	ErrOrderNotPriced      = errors.New("order has no final price")
	ErrAlreadyInvoiced     = errors.New("order already has an invoice")
	ErrNumberConflict      = errors.New("invoice number already exists, retry")
	ErrNotOpen             = errors.New("invoice is not awaiting payment")
	ErrInvalidPaidAt       = errors.New("paid date cannot be before the issue date or in the future")
)
