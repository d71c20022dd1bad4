package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RevenueStatuses are the order states that count towards revenue.
var RevenueStatuses = []string{
	"CONFIRMED",
	"IN_PREPARATION",
	"DISPATCHED",
	"DELIVERED",
	"RETURNED",
	"CLOSED",
}

type Filter struct {
	From      time.Time
	To        time.Time
	CompanyID *uuid.UUID
}

type OrderRow struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	Status     string
	FinalPrice *decimal.Decimal
	CreatedAt  time.Time
}

type ExportRow struct {
	OrderNumber string
	CompanyName string
	EventName   string
	VenueName   string
	Status      string
	EventStart  time.Time
	EventEnd    time.Time
	TotalVolume decimal.Decimal
	FinalPrice  *decimal.Decimal
	Currency    string
	CreatedAt   time.Time
}

type Repository interface {
	ListOrders(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter Filter) ([]OrderRow, error)
	TopCompanies(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter Filter, limit int) ([]CompanyRevenue, error)
	ExportRows(ctx context.Context, db *gorm.DB, platformID uuid.UUID, filter Filter) ([]ExportRow, error)
}
