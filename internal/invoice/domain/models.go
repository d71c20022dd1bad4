// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusIssued  = "ISSUED"
	StatusPaid    = "PAID"
	StatusOverdue = "OVERDUE"
	StatusVoid    = "VOID"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusIssued, StatusPaid, StatusOverdue, StatusVoid:
		return true
	}
	return false
}

// Open reports whether the invoice still awaits payment.
func Open(status string) bool {
	return status == StatusIssued || status == StatusOverdue
}

// Invoice bills one confirmed order. Amounts are frozen at issue time.
type Invoice struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID    uuid.UUID       `json:"platform_id" gorm:"type:uuid;not null;uniqueIndex:invoices_platform_number_key"`
	CompanyID     uuid.UUID       `json:"company_id" gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:invoices_order_key"`
	InvoiceNumber string          `json:"invoice_number" gorm:"not null;uniqueIndex:invoices_platform_number_key"`
	Status        string          `json:"status" gorm:"not null;index"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2);not null"`
	TaxPercent    decimal.Decimal `json:"tax_percent" gorm:"type:numeric(5,2);not null"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:numeric(14,2);not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null"`
	Currency      string          `json:"currency" gorm:"not null"`
	IssuedAt      time.Time       `json:"issued_at" gorm:"not null"`
	DueAt         time.Time       `json:"due_at" gorm:"not null;index"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`
	VoidReason    *string         `json:"void_reason,omitempty"`
	PDFKey        *string         `json:"pdf_key,omitempty" gorm:"column:pdf_key"`
	PDFURL        *string         `json:"pdf_url,omitempty" gorm:"column:pdf_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Sequence holds the last issued invoice sequence of a platform.
type Sequence struct {
	PlatformID uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastValue  int64     `gorm:"not null"`
	UpdatedAt  time.Time
}

func (Sequence) TableName() string { return "invoice_sequences" }
