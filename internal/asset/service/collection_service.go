package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/asset/domain"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var collectionSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type CollectionParams struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Repo        domain.CollectionRepository
	AssetRepo   domain.Repository
	CompanyRepo companydomain.Repository
}

type CollectionService struct {
	db          *gorm.DB
	log         *zap.Logger
	repo        domain.CollectionRepository
	assetRepo   domain.Repository
	companyRepo companydomain.Repository
}

func NewCollectionService(p CollectionParams) domain.CollectionService {
	return &CollectionService{
		db:          p.DB,
		log:         p.Log.Named("collection.service"),
		repo:        p.Repo,
		assetRepo:   p.AssetRepo,
		companyRepo: p.CompanyRepo,
	}
}

func (s *CollectionService) Create(ctx context.Context, req domain.CreateCollectionRequest) (*domain.Collection, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidCollectionName
	}
	companyID, err := uuid.Parse(strings.TrimSpace(req.CompanyID))
	if err != nil {
		return nil, domain.ErrInvalidCompany
	}
	company, err := s.companyRepo.FindByID(ctx, s.db, platformID, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrInvalidCompany
	}

	now := time.Now().UTC()
	collection := &domain.Collection{
		ID:          uuid.New(),
		PlatformID:  platformID,
		CompanyID:   companyID,
		Name:        name,
		Description: optional(req.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, collection); err != nil {
			return err
		}
		items, err := s.buildItems(ctx, tx, collection, req.Items)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceItems(ctx, tx, collection.ID, items); err != nil {
			return err
		}
		collection.Items = items
		return nil
	})
	if err != nil {
		return nil, translateCollectionUnique(err)
	}
	return collection, nil
}

func (s *CollectionService) List(ctx context.Context, req domain.ListCollectionRequest) ([]domain.Collection, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.CollectionListFilter{IsActive: req.IsActive}
	var err error
	if filter.CompanyID, err = parseFilter(req.CompanyID, domain.ErrInvalidCompany); err != nil {
		return nil, pagination.Meta{}, err
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		if scope == nil || (filter.CompanyID != nil && *filter.CompanyID != *scope) {
			return []domain.Collection{}, pagination.Meta{Page: 1, Limit: pagination.DefaultLimit}, nil
		}
		filter.CompanyID = scope
	}

	query := req.Query.Normalize(collectionSortColumns, "name")
	if req.Query.SortOrder == "" {
		query.SortOrder = "asc"
	}
	items, total, err := s.repo.List(ctx, s.db, platformID, filter, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *CollectionService) Get(ctx context.Context, id string) (*domain.Collection, error) {
	collection, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) Update(ctx context.Context, id string, req domain.UpdateCollectionRequest) (*domain.Collection, error) {
	collection, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidCollectionName
		}
		collection.Name = name
	}
	if req.Description != nil {
		collection.Description = optional(*req.Description)
	}
	if req.IsActive != nil {
		collection.IsActive = *req.IsActive
	}
	collection.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, collection); err != nil {
		return nil, translateCollectionUnique(err)
	}
	if err := s.loadItems(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) ReplaceItems(ctx context.Context, id string, inputs []domain.CollectionItemInput) (*domain.Collection, error) {
	collection, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.buildItems(ctx, tx, collection, inputs)
		if err != nil {
			return err
		}
		if err := s.repo.ReplaceItems(ctx, tx, collection.ID, items); err != nil {
			return err
		}
		collection.UpdatedAt = time.Now().UTC()
		return s.repo.Update(ctx, tx, collection)
	})
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *CollectionService) Delete(ctx context.Context, id string) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	collectionID, err := parseCollectionID(id)
	if err != nil {
		return err
	}
	affected, err := s.repo.SoftDelete(ctx, s.db, platformID, collectionID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}

func (s *CollectionService) Expand(ctx context.Context, companyID string, ids []string) ([]domain.StockLine, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	if len(ids) == 0 {
		return nil, nil
	}
	owner, err := uuid.Parse(strings.TrimSpace(companyID))
	if err != nil {
		return nil, domain.ErrInvalidCompany
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	collectionIDs := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := parseCollectionID(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		collectionIDs = append(collectionIDs, id)
	}

	collections, err := s.repo.FindByIDs(ctx, s.db, platformID, collectionIDs)
	if err != nil {
		return nil, err
	}
	if len(collections) != len(collectionIDs) {
		return nil, domain.ErrCollectionNotFound
	}
	for _, collection := range collections {
		if collection.CompanyID != owner || !collection.IsActive {
			return nil, domain.ErrCollectionNotFound
		}
	}

	items, err := s.repo.ListItems(ctx, s.db, collectionIDs)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.StockLine{AssetID: item.AssetID, Quantity: item.Quantity})
	}
	return mergeLines(lines), nil
}

func (s *CollectionService) find(ctx context.Context, id string) (*domain.Collection, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	collectionID, err := parseCollectionID(id)
	if err != nil {
		return nil, err
	}
	collection, err := s.repo.FindByID(ctx, s.db, platformID, collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrCollectionNotFound
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped && (scope == nil || *scope != collection.CompanyID) {
		return nil, domain.ErrCollectionNotFound
	}
	return collection, nil
}

// buildItems validates inputs against the collection's company. Every asset
// must exist and belong to that company.
func (s *CollectionService) buildItems(ctx context.Context, tx *gorm.DB, collection *domain.Collection, inputs []domain.CollectionItemInput) ([]domain.CollectionItem, error) {
	if len(inputs) == 0 {
		return []domain.CollectionItem{}, nil
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	quantities := make(map[uuid.UUID]int, len(inputs))
	for _, input := range inputs {
		assetID, err := uuid.Parse(strings.TrimSpace(input.AssetID))
		if err != nil {
			return nil, domain.ErrInvalidItems
		}
		if input.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
		if _, dup := quantities[assetID]; dup {
			return nil, domain.ErrDuplicateItem
		}
		quantities[assetID] = input.Quantity
		ids = append(ids, assetID)
	}

	assets, err := s.assetRepo.FindByIDs(ctx, tx, collection.PlatformID, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(assets))
	for _, asset := range assets {
		if asset.CompanyID != collection.CompanyID {
			return nil, domain.ErrInvalidItems
		}
		names[asset.ID] = asset.Name
	}
	if len(names) != len(ids) {
		return nil, domain.ErrInvalidItems
	}

	items := make([]domain.CollectionItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.CollectionItem{
			CollectionID: collection.ID,
			AssetID:      id,
			PlatformID:   collection.PlatformID,
			Quantity:     quantities[id],
			AssetName:    names[id],
		})
	}
	return items, nil
}

func (s *CollectionService) loadItems(ctx context.Context, collection *domain.Collection) error {
	items, err := s.repo.ListItems(ctx, s.db, []uuid.UUID{collection.ID})
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.AssetID)
	}
	assets, err := s.assetRepo.FindByIDs(ctx, s.db, collection.PlatformID, ids)
	if err != nil {
		return err
	}
	names := make(map[uuid.UUID]string, len(assets))
	for _, asset := range assets {
		names[asset.ID] = asset.Name
	}
	for i := range items {
		items[i].AssetName = names[items[i].AssetID]
	}
	collection.Items = items
	return nil
}

func parseCollectionID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidCollectionID
	}
	return id, nil
}

func translateCollectionUnique(err error) error {
	return db.TranslateUnique(err, map[string]error{
		"collections_platform_company_name_key": domain.ErrCollectionExists,
	}, domain.ErrCollectionExists)
}
