package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/eventory/internal/cache"
	"github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	resolveTTL      = time.Minute
	redisResolveTTL = 5 * time.Minute
	redisKeyPrefix  = "platform:resolve:"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  domain.Repository
	Redis *redis.Client `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	redis *redis.Client
	local cache.Cache[string, domain.Platform]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("platform.service"),
		repo:  p.Repo,
		redis: p.Redis,
		local: cache.NewTTLCache[string, domain.Platform](),
	}
}

func (s *Service) Resolve(ctx context.Context, key string) (*domain.Platform, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, domain.ErrInvalidPlatform
	}

	if cached, ok := s.local.Get(key); ok {
		return &cached, nil
	}
	if cached := s.fromRedis(ctx, key); cached != nil {
		s.local.Set(key, *cached, resolveTTL)
		return cached, nil
	}

	platform, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if platform == nil || !platform.IsActive {
		return nil, domain.ErrNotFound
	}

	s.local.Set(key, *platform, resolveTTL)
	s.toRedis(ctx, key, platform)
	return platform, nil
}

func (s *Service) lookup(ctx context.Context, key string) (*domain.Platform, error) {
	if id, err := uuid.Parse(key); err == nil {
		return s.repo.FindByID(ctx, s.db, id)
	}
	platform, err := s.repo.FindBySlug(ctx, s.db, key)
	if err != nil || platform != nil {
		return platform, err
	}
	return s.repo.FindByDomain(ctx, s.db, key)
}

func (s *Service) fromRedis(ctx context.Context, key string) *domain.Platform {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("platform cache read failed", zap.Error(err))
		}
		return nil
	}
	var platform domain.Platform
	if err := json.Unmarshal(raw, &platform); err != nil {
		return nil
	}
	return &platform
}

func (s *Service) toRedis(ctx context.Context, key string, platform *domain.Platform) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(platform)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, redisKeyPrefix+key, raw, redisResolveTTL).Err(); err != nil {
		s.log.Warn("platform cache write failed", zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, platform *domain.Platform) {
	keys := []string{platform.ID.String(), platform.Slug}
	if platform.Domain != nil {
		keys = append(keys, strings.ToLower(*platform.Domain))
	}
	for _, key := range keys {
		s.local.Delete(key)
		if s.redis != nil {
			_ = s.redis.Del(ctx, redisKeyPrefix+key).Err()
		}
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Platform, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	platformSlug := slug.Make(strings.TrimSpace(req.Slug))
	if platformSlug == "" {
		platformSlug = slug.Make(name)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "AED"
	}
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}
	if err := validateMargin(req.DefaultMarginPercent); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	platform := &domain.Platform{
		ID:                   uuid.New(),
		Name:                 name,
		Slug:                 platformSlug,
		Domain:               normalizeDomain(req.Domain),
		Currency:             currency,
		DefaultMarginPercent: req.DefaultMarginPercent,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Insert(ctx, s.db, platform); err != nil {
		return nil, translateUnique(err)
	}
	s.log.Info("platform created", zap.String("platform_id", platform.ID.String()), zap.String("slug", platform.Slug))
	return platform, nil
}

func (s *Service) Get(ctx context.Context) (*domain.Platform, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	platform, err := s.repo.FindByID(ctx, s.db, platformID)
	if err != nil {
		return nil, err
	}
	if platform == nil {
		return nil, domain.ErrNotFound
	}
	return platform, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Platform, error) {
	platform, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	previous := *platform

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		platform.Name = name
	}
	if req.Domain != nil {
		platform.Domain = normalizeDomain(*req.Domain)
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return nil, domain.ErrInvalidCurrency
		}
		platform.Currency = currency
	}
	if req.DefaultMarginPercent != nil {
		if err := validateMargin(req.DefaultMarginPercent); err != nil {
			return nil, err
		}
		platform.DefaultMarginPercent = req.DefaultMarginPercent
	}
	platform.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, platform); err != nil {
		return nil, translateUnique(err)
	}
	s.invalidate(ctx, &previous)
	return platform, nil
}

func validateMargin(value *decimal.Decimal) error {
	if value == nil {
		return nil
	}
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidMargin
	}
	return nil
}

func normalizeDomain(value string) *string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil
	}
	return &value
}

func translateUnique(err error) error {
	return db.TranslateUnique(err, map[string]error{
		"platforms_slug_key":   domain.ErrSlugExists,
		"platforms_domain_key": domain.ErrDomainExists,
	}, domain.ErrSlugExists)
}
