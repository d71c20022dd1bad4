package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	assetdomain "github.com/smallbiznis/eventory/internal/asset/domain"
	branddomain "github.com/smallbiznis/eventory/internal/brand/domain"
	citydomain "github.com/smallbiznis/eventory/internal/city/domain"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/config"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/internal/observability/metrics"
	"github.com/smallbiznis/eventory/internal/order/domain"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/pricing"
	pricingtierdomain "github.com/smallbiznis/eventory/internal/pricingtier/domain"
	pricingtierservice "github.com/smallbiznis/eventory/internal/pricingtier/service"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const noTierNote = "no pricing tier matches this location and volume; pricing needs manual review"

var sortColumns = map[string]string{
	"order_number": "order_number",
	"event_name":   "event_name",
	"event_start":  "event_start",
	"status":       "status",
	"created_at":   "created_at",
}

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	PricingCfg      *config.PricingConfigHolder
	Node            *snowflake.Node
	Repo            domain.Repository
	AssetRepo       assetdomain.Repository
	AssetSvc        assetdomain.Service
	CollectionSvc   assetdomain.CollectionService
	CompanyRepo     companydomain.Repository
	BrandRepo       branddomain.Repository
	PlatformRepo    platformdomain.Repository
	CitySvc         citydomain.Service
	TierRepo        pricingtierdomain.Repository
	NotificationSvc notificationdomain.Service `optional:"true"`
	Metrics         *metrics.Metrics           `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	pricingCfg    *config.PricingConfigHolder
	node          *snowflake.Node
	repo          domain.Repository
	assetRepo     assetdomain.Repository
	assetSvc      assetdomain.Service
	collectionSvc assetdomain.CollectionService
	companyRepo   companydomain.Repository
	brandRepo     branddomain.Repository
	platformRepo  platformdomain.Repository
	citySvc       citydomain.Service
	tierRepo      pricingtierdomain.Repository
	notifier      notificationdomain.Service
	metrics       *metrics.Metrics
	now           func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("order.service"),
		pricingCfg:    p.PricingCfg,
		node:          p.Node,
		repo:          p.Repo,
		assetRepo:     p.AssetRepo,
		assetSvc:      p.AssetSvc,
		collectionSvc: p.CollectionSvc,
		companyRepo:   p.CompanyRepo,
		brandRepo:     p.BrandRepo,
		platformRepo:  p.PlatformRepo,
		citySvc:       p.CitySvc,
		tierRepo:      p.TierRepo,
		notifier:      p.NotificationSvc,
		metrics:       p.Metrics,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Order, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	companyID, err := s.resolveCompany(ctx, platformID, actor, req.CompanyID)
	if err != nil {
		return nil, err
	}
	brandID, err := s.optionalBrand(ctx, platformID, companyID, req.BrandID)
	if err != nil {
		return nil, err
	}

	eventName := strings.TrimSpace(req.EventName)
	if eventName == "" {
		return nil, domain.ErrInvalidEventName
	}
	venue := strings.TrimSpace(req.VenueName)
	if venue == "" {
		return nil, domain.ErrInvalidVenue
	}
	if req.EventEnd.Before(req.EventStart) {
		return nil, domain.ErrInvalidEventDates
	}
	countryID, cityID, err := s.resolveLocation(ctx, req.CountryID, req.CityID)
	if err != nil {
		return nil, err
	}

	lines := make([]assetdomain.StockLine, 0, len(req.Items))
	for _, input := range req.Items {
		assetID, err := uuid.Parse(strings.TrimSpace(input.AssetID))
		if err != nil {
			return nil, domain.ErrInvalidAsset
		}
		if input.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		lines = append(lines, assetdomain.StockLine{AssetID: assetID, Quantity: input.Quantity})
	}
	if len(req.CollectionIDs) > 0 {
		expanded, err := s.collectionSvc.Expand(ctx, companyID.String(), req.CollectionIDs)
		if err != nil {
			return nil, err
		}
		lines = append(lines, expanded...)
	}

	now := s.now()
	order := &domain.Order{
		ID:           uuid.New(),
		PlatformID:   platformID,
		CompanyID:    companyID,
		BrandID:      brandID,
		OrderNumber:  "ORD-" + s.node.Generate().String(),
		CreatedBy:    actor.UserID,
		EventName:    eventName,
		EventStart:   req.EventStart.UTC(),
		EventEnd:     req.EventEnd.UTC(),
		VenueName:    venue,
		VenueAddress: optional(req.VenueAddress),
		CountryID:    countryID,
		CityID:       cityID,
		Status:       domain.StatusDraft,
		Currency:     s.currency(ctx, platformID),
		Notes:        optional(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	items, err := s.buildItems(ctx, s.db, order, lines, now)
	if err != nil {
		return nil, err
	}
	order.TotalVolume = totalVolume(items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		return s.writeHistory(ctx, tx, order, nil, "order created", actor)
	})
	if err != nil {
		return nil, db.TranslateUnique(err, map[string]error{
			"orders_platform_number_key": domain.ErrOrderNumberConflict,
		}, domain.ErrOrderNumberConflict)
	}

	order.Items = items
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(items)),
	)
	return order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Order, pagination.Meta, error) {
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
			return []domain.Order{}, pagination.Meta{Page: 1, Limit: pagination.DefaultLimit}, nil
		}
		filter.CompanyID = scope
	}

	query := req.Query.Normalize(sortColumns, "created_at")
	items, total, err := s.repo.List(ctx, s.db, platformID, filter, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *Service) History(ctx context.Context, id string) ([]domain.StatusHistory, error) {
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, s.db, order.ID)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Order, error) {
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusDraft {
		return nil, domain.ErrNotEditable
	}

	if req.BrandID != nil {
		brandID, err := s.optionalBrand(ctx, order.PlatformID, order.CompanyID, *req.BrandID)
		if err != nil {
			return nil, err
		}
		order.BrandID = brandID
	}
	if req.EventName != nil {
		name := strings.TrimSpace(*req.EventName)
		if name == "" {
			return nil, domain.ErrInvalidEventName
		}
		order.EventName = name
	}
	if req.VenueName != nil {
		venue := strings.TrimSpace(*req.VenueName)
		if venue == "" {
			return nil, domain.ErrInvalidVenue
		}
		order.VenueName = venue
	}
	if req.VenueAddress != nil {
		order.VenueAddress = optional(*req.VenueAddress)
	}
	if req.Notes != nil {
		order.Notes = optional(*req.Notes)
	}
	if req.EventStart != nil {
		order.EventStart = req.EventStart.UTC()
	}
	if req.EventEnd != nil {
		order.EventEnd = req.EventEnd.UTC()
	}
	if order.EventEnd.Before(order.EventStart) {
		return nil, domain.ErrInvalidEventDates
	}
	if req.CountryID != nil || req.CityID != nil {
		countryValue, cityValue := order.CountryID.String(), order.CityID.String()
		if req.CountryID != nil {
			countryValue = *req.CountryID
		}
		if req.CityID != nil {
			cityValue = *req.CityID
		}
		countryID, cityID, err := s.resolveLocation(ctx, countryValue, cityValue)
		if err != nil {
			return nil, err
		}
		order.CountryID, order.CityID = countryID, cityID
	}
	order.UpdatedAt = s.now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.save(ctx, tx, order, order.Status, "order details updated", actor)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) AddItem(ctx context.Context, id string, req domain.ItemInput) (*domain.Order, error) {
	assetID, err := uuid.Parse(strings.TrimSpace(req.AssetID))
	if err != nil {
		return nil, domain.ErrInvalidAsset
	}
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.mutateItems(ctx, id, func(tx *gorm.DB, order *domain.Order, items []domain.OrderItem) (string, error) {
		for _, item := range items {
			if item.AssetID == assetID {
				return "", domain.ErrItemExists
			}
		}
		built, err := s.buildItems(ctx, tx, order, []assetdomain.StockLine{{AssetID: assetID, Quantity: req.Quantity}}, s.now())
		if err != nil {
			return "", err
		}
		if err := s.repo.InsertItems(ctx, tx, built); err != nil {
			return "", db.TranslateUnique(err, map[string]error{
				"order_items_order_asset_key": domain.ErrItemExists,
			}, domain.ErrItemExists)
		}
		return fmt.Sprintf("item added: %s x%d", built[0].AssetName, built[0].Quantity), nil
	})
}

func (s *Service) AdjustItem(ctx context.Context, id, itemID string, req domain.AdjustItemRequest) (*domain.Order, error) {
	lineID, err := parseItemID(itemID)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.mutateItems(ctx, id, func(tx *gorm.DB, order *domain.Order, _ []domain.OrderItem) (string, error) {
		item, err := s.repo.FindItem(ctx, tx, order.ID, lineID)
		if err != nil {
			return "", err
		}
		if item == nil {
			return "", domain.ErrItemNotFound
		}
		if req.Quantity == 0 {
			if err := s.repo.DeleteItem(ctx, tx, order.ID, item.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("item removed: %s", item.AssetName), nil
		}
		previous := item.Quantity
		item.Quantity = req.Quantity
		item.TotalVolume = item.UnitVolume.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(3)
		item.UpdatedAt = s.now()
		if err := s.repo.UpdateItem(ctx, tx, item); err != nil {
			return "", err
		}
		return fmt.Sprintf("item adjusted: %s %d -> %d", item.AssetName, previous, item.Quantity), nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, id, itemID string) (*domain.Order, error) {
	return s.AdjustItem(ctx, id, itemID, domain.AdjustItemRequest{Quantity: 0})
}

func (s *Service) Submit(ctx context.Context, id string) (*domain.Order, error) {
	return s.Transition(ctx, id, domain.TransitionRequest{Status: domain.StatusSubmitted})
}

func (s *Service) OverridePricing(ctx context.Context, id string, req domain.OverridePricingRequest) (*domain.Order, error) {
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if req.BasePrice == nil || req.BasePrice.IsNegative() {
		return nil, domain.ErrInvalidBasePrice
	}
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusSubmitted && order.Status != domain.StatusPricingReview {
		return nil, domain.ErrNotEditable
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		margin, err := s.resolveMargin(ctx, tx, order)
		if err != nil {
			return err
		}
		quote, err := pricing.Calculate(*req.BasePrice, margin)
		if err != nil {
			return domain.ErrInvalidBasePrice
		}
		applyQuote(order, quote)
		order.PricingOverridden = true
		order.PricingNote = optional(req.Note)
		order.UpdatedAt = s.now()

		note := fmt.Sprintf("pricing overridden: base %s", quote.BasePrice.StringFixed(2))
		if order.PricingNote != nil {
			note += ": " + *order.PricingNote
		}
		return s.save(ctx, tx, order, order.Status, note, actor)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Transition(ctx context.Context, id string, req domain.TransitionRequest) (*domain.Order, error) {
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	to := strings.ToUpper(strings.TrimSpace(req.Status))
	if !domain.ValidStatus(to) {
		return nil, domain.ErrInvalidStatus
	}
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !domain.CanTransition(from, to) {
		return nil, domain.ErrInvalidTransition
	}
	if actor.IsClient() && !domain.ClientMayTransition(from, to) {
		return nil, domain.ErrForbidden
	}

	var items []domain.OrderItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		items, err = s.repo.ListItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		now := s.now()

		switch to {
		case domain.StatusSubmitted:
			if len(items) == 0 {
				return domain.ErrEmptyOrder
			}
			order.TotalVolume = totalVolume(items)
			if err := s.reprice(ctx, tx, order); err != nil {
				return err
			}
			order.SubmittedAt = &now
		case domain.StatusQuoted:
			if order.FinalPrice == nil {
				return domain.ErrPriceRequired
			}
			order.QuotedAt = &now
		case domain.StatusConfirmed:
			if err := s.assetSvc.Reserve(ctx, tx, stockLines(items)); err != nil {
				return err
			}
			order.ConfirmedAt = &now
		case domain.StatusCancelled:
			if from == domain.StatusConfirmed {
				if err := s.assetSvc.Release(ctx, tx, stockLines(items)); err != nil {
					return err
				}
			}
			order.ClosedAt = &now
		case domain.StatusReturned:
			if err := s.assetSvc.Release(ctx, tx, stockLines(items)); err != nil {
				return err
			}
		case domain.StatusClosed:
			order.ClosedAt = &now
		}

		order.Status = to
		order.UpdatedAt = now
		return s.save(ctx, tx, order, from, strings.TrimSpace(req.Note), actor)
	})
	if err != nil {
		return nil, err
	}
	order.Items = items

	s.log.Info("order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", from),
		zap.String("to", to),
		zap.String("actor_id", actor.UserID.String()),
	)
	s.metrics.RecordOrderTransition(ctx, order.PlatformID.String(), from, to)
	s.notifyTransition(ctx, order, from, strings.TrimSpace(req.Note))
	return order, nil
}

// mutateItems runs one item change, recomputes volume and pricing, writes
// the order and a history row, all in a single transaction.
func (s *Service) mutateItems(ctx context.Context, id string, fn func(tx *gorm.DB, order *domain.Order, items []domain.OrderItem) (string, error)) (*domain.Order, error) {
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	order, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !domain.ItemsEditable(order.Status) {
		return nil, domain.ErrNotEditable
	}

	var items []domain.OrderItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.ListItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		note, err := fn(tx, order, current)
		if err != nil {
			return err
		}
		items, err = s.repo.ListItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 && order.Status != domain.StatusDraft {
			return domain.ErrEmptyOrder
		}

		order.TotalVolume = totalVolume(items)
		if order.Status != domain.StatusDraft {
			if err := s.reprice(ctx, tx, order); err != nil {
				return err
			}
		}
		order.UpdatedAt = s.now()
		return s.save(ctx, tx, order, order.Status, note, actor)
	})
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// reprice matches the order volume against the active tiers of its city.
// Any manual override is discarded.
func (s *Service) reprice(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	order.PricingOverridden = false
	tier, err := pricingtierservice.FindMatch(ctx, tx, s.tierRepo, order.PlatformID, order.CountryID, order.CityID, order.TotalVolume)
	if errors.Is(err, pricingtierdomain.ErrNoMatchingTier) {
		order.ClearPricing()
		note := noTierNote
		order.PricingNote = &note
		return nil
	}
	if err != nil {
		return err
	}
	margin, err := s.resolveMargin(ctx, tx, order)
	if err != nil {
		return err
	}
	quote, err := pricing.Calculate(tier.BasePrice, margin)
	if err != nil {
		return err
	}
	applyQuote(order, quote)
	order.PricingTierID = &tier.ID
	order.PricingNote = nil
	if tier.Currency != "" {
		order.Currency = tier.Currency
	}
	return nil
}

func (s *Service) resolveMargin(ctx context.Context, tx *gorm.DB, order *domain.Order) (decimal.Decimal, error) {
	var companyMargin, platformMargin *decimal.Decimal
	company, err := s.companyRepo.FindByID(ctx, tx, order.PlatformID, order.CompanyID)
	if err != nil {
		return decimal.Zero, err
	}
	if company != nil {
		companyMargin = company.MarginPercent
	}
	platform, err := s.platformRepo.FindByID(ctx, tx, order.PlatformID)
	if err != nil {
		return decimal.Zero, err
	}
	if platform != nil {
		platformMargin = platform.DefaultMarginPercent
	}
	return pricing.ResolveMargin(companyMargin, platformMargin, s.pricingCfg.Get().DefaultMargin()), nil
}

// save performs the guarded order write followed by its history row.
func (s *Service) save(ctx context.Context, tx *gorm.DB, order *domain.Order, expected, note string, actor platformctx.Actor) error {
	updated, err := s.repo.UpdateGuarded(ctx, tx, order, expected)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrConcurrentUpdate
	}
	return s.writeHistory(ctx, tx, order, &expected, note, actor)
}

func (s *Service) writeHistory(ctx context.Context, tx *gorm.DB, order *domain.Order, from *string, note string, actor platformctx.Actor) error {
	entry := &domain.StatusHistory{
		ID:         uuid.New(),
		PlatformID: order.PlatformID,
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   order.Status,
		Note:       optional(note),
		CreatedAt:  s.now(),
	}
	if actor.UserID != uuid.Nil {
		changedBy := actor.UserID
		entry.ChangedBy = &changedBy
	}
	return s.repo.InsertHistory(ctx, tx, entry)
}

func (s *Service) notifyTransition(ctx context.Context, order *domain.Order, from, note string) {
	if s.notifier == nil {
		return
	}
	data := map[string]any{
		"order_number": order.OrderNumber,
		"event_name":   order.EventName,
		"from_status":  from,
		"to_status":    order.Status,
		"currency":     order.Currency,
	}
	if note != "" {
		data["note"] = note
	}
	if order.FinalPrice != nil {
		data["final_price"] = order.FinalPrice.StringFixed(2)
	}
	companyID := order.CompanyID
	err := s.notifier.Notify(ctx, notificationdomain.Event{
		Type:          notificationdomain.TypeOrderStatusChanged,
		CompanyID:     &companyID,
		NotifyCompany: true,
		NotifyStaff:   true,
		Data:          data,
	})
	if err != nil {
		s.log.Warn("failed to notify order status change",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) load(ctx context.Context, conn *gorm.DB, id string) (*domain.Order, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindByID(ctx, conn, platformID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped && (scope == nil || *scope != order.CompanyID) {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// buildItems snapshots asset name and unit volume onto new order lines.
// Duplicate assets are summed into one line.
func (s *Service) buildItems(ctx context.Context, conn *gorm.DB, order *domain.Order, lines []assetdomain.StockLine, now time.Time) ([]domain.OrderItem, error) {
	if len(lines) == 0 {
		return []domain.OrderItem{}, nil
	}
	quantities := make(map[uuid.UUID]int, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, seen := quantities[line.AssetID]; !seen {
			ids = append(ids, line.AssetID)
		}
		quantities[line.AssetID] += line.Quantity
	}

	assets, err := s.assetRepo.FindByIDs(ctx, conn, order.PlatformID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]assetdomain.Asset, len(assets))
	for _, asset := range assets {
		if asset.CompanyID != order.CompanyID || !asset.IsActive {
			return nil, domain.ErrInvalidAsset
		}
		byID[asset.ID] = asset
	}

	items := make([]domain.OrderItem, 0, len(ids))
	for _, id := range ids {
		asset, ok := byID[id]
		if !ok {
			return nil, domain.ErrInvalidAsset
		}
		qty := quantities[id]
		items = append(items, domain.OrderItem{
			ID:          uuid.New(),
			PlatformID:  order.PlatformID,
			OrderID:     order.ID,
			AssetID:     asset.ID,
			AssetName:   asset.Name,
			Quantity:    qty,
			UnitVolume:  asset.UnitVolume,
			TotalVolume: asset.UnitVolume.Mul(decimal.NewFromInt(int64(qty))).Round(3),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return items, nil
}

// resolveCompany pins client users to their own company. Staff must name one.
func (s *Service) resolveCompany(ctx context.Context, platformID uuid.UUID, actor platformctx.Actor, value string) (uuid.UUID, error) {
	var companyID uuid.UUID
	if actor.IsClient() {
		if actor.CompanyID == nil {
			return uuid.Nil, domain.ErrInvalidCompany
		}
		companyID = *actor.CompanyID
	} else {
		parsed, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return uuid.Nil, domain.ErrInvalidCompany
		}
		companyID = parsed
	}
	company, err := s.companyRepo.FindByID(ctx, s.db, platformID, companyID)
	if err != nil {
		return uuid.Nil, err
	}
	if company == nil || !company.IsActive {
		return uuid.Nil, domain.ErrInvalidCompany
	}
	return companyID, nil
}

func (s *Service) optionalBrand(ctx context.Context, platformID, companyID uuid.UUID, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	brandID, err := uuid.Parse(value)
	if err != nil {
		return nil, domain.ErrInvalidBrand
	}
	brand, err := s.brandRepo.FindByID(ctx, s.db, platformID, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil || brand.CompanyID != companyID {
		return nil, domain.ErrInvalidBrand
	}
	return &brandID, nil
}

func (s *Service) resolveLocation(ctx context.Context, countryValue, cityValue string) (uuid.UUID, uuid.UUID, error) {
	countryID, err := uuid.Parse(strings.TrimSpace(countryValue))
	if err != nil {
		return uuid.Nil, uuid.Nil, citydomain.ErrInvalidCountry
	}
	cityID, err := uuid.Parse(strings.TrimSpace(cityValue))
	if err != nil {
		return uuid.Nil, uuid.Nil, citydomain.ErrInvalidID
	}
	if err := s.citySvc.BelongsTo(ctx, cityID.String(), countryID.String()); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return countryID, cityID, nil
}

func (s *Service) currency(ctx context.Context, platformID uuid.UUID) string {
	platform, err := s.platformRepo.FindByID(ctx, s.db, platformID)
	if err == nil && platform != nil && platform.Currency != "" {
		return platform.Currency
	}
	return s.pricingCfg.Get().Currency
}

func applyQuote(order *domain.Order, quote pricing.Quote) {
	base, pct, margin, final := quote.BasePrice, quote.MarginPercent, quote.MarginAmount, quote.FinalPrice
	order.BasePrice = &base
	order.MarginPercent = &pct
	order.MarginAmount = &margin
	order.FinalPrice = &final
}

func totalVolume(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalVolume)
	}
	return total.Round(3)
}

func stockLines(items []domain.OrderItem) []assetdomain.StockLine {
	lines := make([]assetdomain.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, assetdomain.StockLine{AssetID: item.AssetID, Quantity: item.Quantity})
	}
	return lines
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

func parseItemID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidItemID
	}
	return id, nil
}
