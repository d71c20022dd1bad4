package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ChannelEmail = "EMAIL"
	ChannelSlack = "SLACK"
)

const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

const (
	TypePasswordReset      = "PASSWORD_RESET"
	TypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	TypeInvoiceIssued      = "INVOICE_ISSUED"
	TypeInvoiceOverdue     = "INVOICE_OVERDUE"
)

// MaxAttempts bounds delivery tries, the first send included.
const MaxAttempts = 3

type Notification struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	PlatformID uuid.UUID         `json:"platform_id" gorm:"type:uuid;not null;index:notifications_platform_user_idx"`
	UserID     *uuid.UUID        `json:"user_id,omitempty" gorm:"type:uuid;index:notifications_platform_user_idx"`
	CompanyID  *uuid.UUID        `json:"company_id,omitempty" gorm:"type:uuid"`
	Channel    string            `json:"channel" gorm:"not null"`
	Type       string            `json:"type" gorm:"not null"`
	Recipient  string            `json:"recipient" gorm:"not null"`
	Subject    string            `json:"subject" gorm:"not null"`
	Body       string            `json:"body" gorm:"not null"`
	Payload    datatypes.JSONMap `json:"payload,omitempty"`
	Status     string            `json:"status" gorm:"not null;index"`
	Attempts   int               `json:"attempts" gorm:"not null;default:0"`
	LastError  *string           `json:"last_error,omitempty"`
	SentAt     *time.Time        `json:"sent_at,omitempty"`
	ReadAt     *time.Time        `json:"read_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Notification) TableName() string { return "notifications" }

// Recipient is an explicit delivery target. Email is required; UserID links
// the row to an in-app inbox.
type Recipient struct {
	UserID *uuid.UUID
	Email  string
}

// Event describes something worth telling people about. Recipients, when
// set, replace audience resolution.
type Event struct {
	Type          string
	CompanyID     *uuid.UUID
	Recipients    []Recipient
	NotifyCompany bool
	NotifyStaff   bool
	Data          map[string]any
}
