package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/auth/password"
	companydomain "github.com/smallbiznis/eventory/internal/company/domain"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/user/domain"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"name":          "name",
	"email":         "email",
	"role":          "role",
	"created_at":    "created_at",
	"last_login_at": "last_login_at",
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	Repo        domain.Repository
	CompanyRepo companydomain.Repository
	AuditSvc    auditdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	saltRounds  int
	repo        domain.Repository
	companyRepo companydomain.Repository
	auditSvc    auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("user.service"),
		saltRounds:  p.Cfg.Auth.SaltRounds,
		repo:        p.Repo,
		companyRepo: p.CompanyRepo,
		auditSvc:    p.AuditSvc,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.User, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	companyID, err := s.resolveCompany(ctx, platformID, role, req.CompanyID)
	if err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password, s.saltRounds)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		PlatformID:   platformID,
		CompanyID:    companyID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		return nil, translateUnique(err)
	}

	s.audit(ctx, "user.create", user, map[string]any{"email": email, "role": role})
	return user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.User, pagination.Meta, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, pagination.Meta{}, domain.ErrInvalidPlatform
	}

	filter := domain.ListFilter{
		Role:     strings.ToUpper(strings.TrimSpace(req.Role)),
		IsActive: req.IsActive,
	}
	if req.CompanyID != "" {
		companyID, err := uuid.Parse(strings.TrimSpace(req.CompanyID))
		if err != nil {
			return nil, pagination.Meta{}, domain.ErrInvalidCompany
		}
		filter.CompanyID = &companyID
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		if scope == nil {
			return []domain.User{}, req.Query.Normalize(sortColumns, "name").Meta(0), nil
		}
		filter.CompanyID = scope
	}

	query := req.Query.Normalize(sortColumns, "name")
	if req.Query.SortOrder == "" {
		query.SortOrder = "asc"
	}
	items, total, err := s.repo.List(ctx, s.db, platformID, filter, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, s.db, platformID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	if scope, scoped := platformctx.CompanyScope(ctx); scoped {
		if scope == nil || user.CompanyID == nil || *scope != *user.CompanyID {
			return nil, domain.ErrNotFound
		}
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	wasAdmin := user.Role == domain.RoleAdmin && user.IsActive

	changes := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		user.Name = name
		changes["name"] = name
	}
	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		if !domain.ValidRole(role) {
			return nil, domain.ErrInvalidRole
		}
		user.Role = role
		changes["role"] = role
	}
	if req.CompanyID != nil {
		value := strings.TrimSpace(*req.CompanyID)
		if value == "" {
			user.CompanyID = nil
		} else {
			companyID, err := s.requireCompany(ctx, user.PlatformID, value)
			if err != nil {
				return nil, err
			}
			user.CompanyID = &companyID
		}
		changes["company_id"] = value
	}
	if req.IsActive != nil {
		if !*req.IsActive {
			if err := s.ensureNotSelf(ctx, user); err != nil {
				return nil, err
			}
		}
		user.IsActive = *req.IsActive
		changes["is_active"] = *req.IsActive
	}

	if user.Role == domain.RoleClient && user.CompanyID == nil {
		return nil, domain.ErrCompanyRequired
	}
	if user.Role != domain.RoleClient {
		user.CompanyID = nil
	}
	if wasAdmin && (user.Role != domain.RoleAdmin || !user.IsActive) {
		if err := s.ensureAnotherAdmin(ctx, user.PlatformID); err != nil {
			return nil, err
		}
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return nil, translateUnique(err)
	}

	s.audit(ctx, "user.update", user, changes)
	return user, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return user, nil
	}
	if err := s.ensureNotSelf(ctx, user); err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, user.PlatformID); err != nil {
			return nil, err
		}
	}

	user.IsActive = false
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return nil, err
	}
	s.audit(ctx, "user.deactivate", user, nil)
	return user, nil
}

func (s *Service) resolveCompany(ctx context.Context, platformID uuid.UUID, role, value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if role != domain.RoleClient {
		return nil, nil
	}
	if value == "" {
		return nil, domain.ErrCompanyRequired
	}
	companyID, err := s.requireCompany(ctx, platformID, value)
	if err != nil {
		return nil, err
	}
	return &companyID, nil
}

func (s *Service) requireCompany(ctx context.Context, platformID uuid.UUID, value string) (uuid.UUID, error) {
	companyID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidCompany
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

func (s *Service) ensureNotSelf(ctx context.Context, user *domain.User) error {
	if actor, ok := platformctx.ActorFromContext(ctx); ok && actor.UserID == user.ID {
		return domain.ErrSelfDeactivation
	}
	return nil
}

func (s *Service) ensureAnotherAdmin(ctx context.Context, platformID uuid.UUID) error {
	admins, err := s.repo.CountAdmins(ctx, s.db, platformID)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

func (s *Service) audit(ctx context.Context, action string, user *domain.User, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := user.ID.String()
	if err := s.auditSvc.AuditLog(ctx, "", nil, action, "user", &targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func normalizeEmail(value string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(value))
	if email == "" {
		return "", domain.ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

func translateUnique(err error) error {
	return db.TranslateUnique(err, map[string]error{
		"users_platform_email_key": domain.ErrEmailExists,
	}, domain.ErrEmailExists)
}
