package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GroupBy string

const (
	GroupByMonth   GroupBy = "month"
	GroupByQuarter GroupBy = "quarter"
	GroupByYear    GroupBy = "year"
)

type Service interface {
	Summary(ctx context.Context, req RangeRequest) (*Summary, error)
	TimeSeries(ctx context.Context, req TimeSeriesRequest) (*TimeSeries, error)
	TopCompanies(ctx context.Context, req TopCompaniesRequest) ([]CompanyRevenue, error)
	// ExportOrders returns an XLSX workbook with one row per order in range.
	ExportOrders(ctx context.Context, req RangeRequest) (*Export, error)
}

// RangeRequest bounds are calendar dates; both ends are inclusive.
type RangeRequest struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
}

type TimeSeriesRequest struct {
	RangeRequest
	GroupBy string `form:"group_by" binding:"omitempty,oneof=month quarter year"`
}

type TopCompaniesRequest struct {
	From  string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To    string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type Summary struct {
	From              time.Time        `json:"from"`
	To                time.Time        `json:"to"`
	TotalOrders       int64            `json:"total_orders"`
	RevenueOrders     int64            `json:"revenue_orders"`
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
	ByStatus          map[string]int64 `json:"by_status"`
}

type Period struct {
	Period       string          `json:"period"`
	PeriodStart  time.Time       `json:"periodStart"`
	PeriodEnd    time.Time       `json:"periodEnd"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	OrderCount   int64           `json:"orderCount"`
}

type TimeSeries struct {
	GroupBy      GroupBy         `json:"groupBy"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Periods      []Period        `json:"periods"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	OrderCount   int64           `json:"orderCount"`
}

type CompanyRevenue struct {
	CompanyID    uuid.UUID       `json:"company_id"`
	CompanyName  string          `json:"company_name"`
	OrderCount   int64           `json:"order_count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type Export struct {
	FileName    string
	ContentType string
	Body        []byte
}

var (
	ErrInvalidPlatform = errors.New("platform context is required")
	ErrInvalidRange    = errors.New("from must not be after to")
	ErrInvalidDate     = errors.New("dates must use YYYY-MM-DD")
	ErrInvalidGroupBy  = errors.New("group_by must be month, quarter or year")
	ErrInvalidCompany  = errors.New("invalid company id")
)
