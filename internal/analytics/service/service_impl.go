package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/internal/analytics/domain"
	"github.com/smallbiznis/eventory/internal/clock"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout      = "2006-01-02"
	defaultTopLimit = 10
	exportSheet     = "Orders"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var revenueStatus = func() map[string]bool {
	out := make(map[string]bool, len(domain.RevenueStatuses))
	for _, status := range domain.RevenueStatuses {
		out[status] = true
	}
	return out
}()

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Summary(ctx context.Context, req domain.RangeRequest) (*domain.Summary, error) {
	platformID, filter, err := s.resolve(ctx, req.From, req.To, req.CompanyID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListOrders(ctx, s.db, platformID, filter)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		From:              filter.From,
		To:                filter.To,
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ByStatus:          map[string]int64{},
	}
	for _, row := range rows {
		summary.TotalOrders++
		summary.ByStatus[row.Status]++
		if revenue, ok := revenueOf(row); ok {
			summary.RevenueOrders++
			summary.TotalRevenue = summary.TotalRevenue.Add(revenue)
		}
	}
	if summary.RevenueOrders > 0 {
		summary.AverageOrderValue = summary.TotalRevenue.
			Div(decimal.NewFromInt(summary.RevenueOrders)).
			Round(2)
	}
	return summary, nil
}

func (s *Service) TimeSeries(ctx context.Context, req domain.TimeSeriesRequest) (*domain.TimeSeries, error) {
	groupBy := domain.GroupBy(strings.ToLower(strings.TrimSpace(req.GroupBy)))
	if groupBy == "" {
		groupBy = domain.GroupByMonth
	}
	switch groupBy {
	case domain.GroupByMonth, domain.GroupByQuarter, domain.GroupByYear:
	default:
		return nil, domain.ErrInvalidGroupBy
	}

	platformID, filter, err := s.resolve(ctx, req.From, req.To, req.CompanyID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListOrders(ctx, s.db, platformID, filter)
	if err != nil {
		return nil, err
	}

	periods := Buckets(filter.From, filter.To, groupBy)
	index := make(map[time.Time]int, len(periods))
	for i, period := range periods {
		index[period.PeriodStart] = i
	}

	series := &domain.TimeSeries{
		GroupBy:      groupBy,
		From:         filter.From,
		To:           filter.To,
		Periods:      periods,
		TotalRevenue: decimal.Zero,
	}
	for _, row := range rows {
		revenue, ok := revenueOf(row)
		if !ok {
			continue
		}
		i, found := index[periodStart(row.CreatedAt, groupBy)]
		if !found {
			continue
		}
		series.Periods[i].OrderCount++
		series.Periods[i].TotalRevenue = series.Periods[i].TotalRevenue.Add(revenue)
		series.OrderCount++
		series.TotalRevenue = series.TotalRevenue.Add(revenue)
	}
	return series, nil
}

func (s *Service) TopCompanies(ctx context.Context, req domain.TopCompaniesRequest) ([]domain.CompanyRevenue, error) {
	platformID, filter, err := s.resolve(ctx, req.From, req.To, "")
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}
	items, err := s.repo.TopCompanies(ctx, s.db, platformID, filter, limit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].TotalRevenue = items[i].TotalRevenue.Round(2)
	}
	return items, nil
}

func (s *Service) ExportOrders(ctx context.Context, req domain.RangeRequest) (*domain.Export, error) {
	platformID, filter, err := s.resolve(ctx, req.From, req.To, req.CompanyID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ExportRows(ctx, s.db, platformID, filter)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer func() {
		if err := book.Close(); err != nil {
			s.log.Warn("failed to close workbook", zap.Error(err))
		}
	}()
	if err := book.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := []any{"Order number", "Company", "Event", "Venue", "Status", "Event start", "Event end", "Volume (m3)", "Final price", "Currency", "Created at"}
	if err := book.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := book.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		var price any
		if row.FinalPrice != nil {
			price = row.FinalPrice.Round(2).InexactFloat64()
		}
		values := []any{
			row.OrderNumber,
			row.CompanyName,
			row.EventName,
			row.VenueName,
			row.Status,
			row.EventStart.UTC().Format(dateLayout),
			row.EventEnd.UTC().Format(dateLayout),
			row.TotalVolume.Round(3).InexactFloat64(),
			price,
			row.Currency,
			row.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := book.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	s.log.Info("orders exported",
		zap.String("platform_id", platformID.String()),
		zap.Int("rows", len(rows)),
	)
	return &domain.Export{
		FileName:    fmt.Sprintf("orders-%s-%s.xlsx", filter.From.Format("20060102"), filter.To.Format("20060102")),
		ContentType: xlsxContentType,
		Body:        buf.Bytes(),
	}, nil
}

// resolve turns the request range into UTC bounds. Without dates the range
// covers the current month and the eleven before it.
func (s *Service) resolve(ctx context.Context, from, to, companyID string) (uuid.UUID, domain.Filter, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return uuid.Nil, domain.Filter{}, domain.ErrInvalidPlatform
	}

	today := truncateToDay(s.clock.Now().UTC())
	end := today
	if value := strings.TrimSpace(to); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			return uuid.Nil, domain.Filter{}, domain.ErrInvalidDate
		}
		end = parsed
	}
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	if value := strings.TrimSpace(from); value != "" {
		parsed, err := time.Parse(dateLayout, value)
		if err != nil {
			return uuid.Nil, domain.Filter{}, domain.ErrInvalidDate
		}
		start = parsed
	}
	if start.After(end) {
		return uuid.Nil, domain.Filter{}, domain.ErrInvalidRange
	}

	filter := domain.Filter{From: start, To: end.AddDate(0, 0, 1).Add(-time.Nanosecond)}
	if value := strings.TrimSpace(companyID); value != "" {
		id, err := uuid.Parse(value)
		if err != nil {
			return uuid.Nil, domain.Filter{}, domain.ErrInvalidCompany
		}
		filter.CompanyID = &id
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		pinned := uuid.Nil
		if scope != nil && (filter.CompanyID == nil || *filter.CompanyID == *scope) {
			pinned = *scope
		}
		filter.CompanyID = &pinned
	}
	return platformID, filter, nil
}

func revenueOf(row domain.OrderRow) (decimal.Decimal, bool) {
	if !revenueStatus[row.Status] || row.FinalPrice == nil {
		return decimal.Zero, false
	}
	return *row.FinalPrice, true
}

// Buckets lists every period touching [from, to]. Each PeriodEnd is the
// last instant of its unit, so consecutive periods leave no gap.
func Buckets(from, to time.Time, groupBy domain.GroupBy) []domain.Period {
	var periods []domain.Period
	for cursor := periodStart(from, groupBy); !cursor.After(to); cursor = nextPeriod(cursor, groupBy) {
		next := nextPeriod(cursor, groupBy)
		periods = append(periods, domain.Period{
			Period:       periodLabel(cursor, groupBy),
			PeriodStart:  cursor,
			PeriodEnd:    next.Add(-time.Nanosecond),
			TotalRevenue: decimal.Zero,
		})
	}
	return periods
}

func periodStart(value time.Time, groupBy domain.GroupBy) time.Time {
	value = value.UTC()
	switch groupBy {
	case domain.GroupByYear:
		return time.Date(value.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case domain.GroupByQuarter:
		month := time.Month((int(value.Month())-1)/3*3 + 1)
		return time.Date(value.Year(), month, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func nextPeriod(start time.Time, groupBy domain.GroupBy) time.Time {
	switch groupBy {
	case domain.GroupByYear:
		return start.AddDate(1, 0, 0)
	case domain.GroupByQuarter:
		return start.AddDate(0, 3, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func periodLabel(start time.Time, groupBy domain.GroupBy) string {
	switch groupBy {
	case domain.GroupByYear:
		return fmt.Sprintf("%d", start.Year())
	case domain.GroupByQuarter:
		return fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1)
	default:
		return start.Format("2006-01")
	}
}

func truncateToDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
