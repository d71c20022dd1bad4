package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/eventory/internal/config"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrAdminPasswordRequired = errors.New("SEED_ADMIN_PASSWORD is required to create the first admin")

var Module = fx.Module("seed",
	fx.Provide(New),
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	PlatformRepo platformdomain.Repository
	PlatformSvc  platformdomain.Service
	UserRepo     userdomain.Repository
	UserSvc      userdomain.Service
}

type Seeder struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.SeedConfig
	platformRepo platformdomain.Repository
	platformSvc  platformdomain.Service
	userRepo     userdomain.Repository
	userSvc      userdomain.Service
}

// Result reports what Run found or created.
type Result struct {
	Platform        *platformdomain.Platform
	Admin           *userdomain.User
	PlatformCreated bool
	AdminCreated    bool
}

func New(p Params) *Seeder {
	return &Seeder{
		db:           p.DB,
		log:          p.Log.Named("seed"),
		cfg:          p.Cfg.Seed,
		platformRepo: p.PlatformRepo,
		platformSvc:  p.PlatformSvc,
		userRepo:     p.UserRepo,
		userSvc:      p.UserSvc,
	}
}

// Run ensures the default platform and its first admin exist. It is safe to
// call repeatedly.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	platform, err := s.platformRepo.FindBySlug(ctx, s.db, s.cfg.PlatformSlug)
	if err != nil {
		return nil, err
	}
	if platform == nil {
		platform, err = s.platformSvc.Create(ctx, platformdomain.CreateRequest{
			Name: s.cfg.PlatformName,
			Slug: s.cfg.PlatformSlug,
		})
		if err != nil {
			return nil, fmt.Errorf("create platform: %w", err)
		}
		result.PlatformCreated = true
		s.log.Info("platform created", zap.String("platform_id", platform.ID.String()), zap.String("slug", platform.Slug))
	}
	result.Platform = platform

	ctx = platformctx.WithPlatformID(ctx, platform.ID)
	email := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))
	admin, err := s.userRepo.FindByEmail(ctx, s.db, platform.ID, email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		if s.cfg.AdminPassword == "" {
			return nil, ErrAdminPasswordRequired
		}
		admin, err = s.userSvc.Create(ctx, userdomain.CreateRequest{
			Name:     s.cfg.AdminName,
			Email:    email,
			Password: s.cfg.AdminPassword,
			Role:     userdomain.RoleAdmin,
		})
		if err != nil {
			return nil, fmt.Errorf("create admin: %w", err)
		}
		result.AdminCreated = true
		s.log.Info("admin created", zap.String("platform_id", platform.ID.String()), zap.String("email", admin.Email))
	}
	result.Admin = admin
	return result, nil
}
