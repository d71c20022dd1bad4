package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	"github.com/smallbiznis/eventory/internal/auth/domain"
	"github.com/smallbiznis/eventory/internal/auth/password"
	"github.com/smallbiznis/eventory/internal/auth/token"
	"github.com/smallbiznis/eventory/internal/config"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	obscontext "github.com/smallbiznis/eventory/internal/observability/context"
	"github.com/smallbiznis/eventory/internal/observability/metrics"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/ratelimit"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Cfg             config.Config
	Repo            domain.Repository
	UserRepo        userdomain.Repository
	Issuer          *token.Issuer
	Limiter         *ratelimit.LoginLimiter    `optional:"true"`
	NotificationSvc notificationdomain.Service `optional:"true"`
	AuditSvc        auditdomain.Service
	Metrics         *metrics.Metrics `optional:"true"`
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	cfg             config.AuthConfig
	appURL          string
	repo            domain.Repository
	userRepo        userdomain.Repository
	issuer          *token.Issuer
	limiter         *ratelimit.LoginLimiter
	notificationSvc notificationdomain.Service
	auditSvc        auditdomain.Service
	metrics         *metrics.Metrics
	now             func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("auth.service"),
		cfg:             p.Cfg.Auth,
		appURL:          p.Cfg.PublicAppURL,
		repo:            p.Repo,
		userRepo:        p.UserRepo,
		issuer:          p.Issuer,
		limiter:         p.Limiter,
		notificationSvc: p.NotificationSvc,
		auditSvc:        p.AuditSvc,
		metrics:         p.Metrics,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	client := obscontext.ClientInfoFromContext(ctx)

	if allowed, retryAfter := s.limiter.Allow(ctx, platformID.String(), client.IP); !allowed {
		s.log.Warn("login rate limited",
			zap.String("platform_id", platformID.String()),
			zap.String("ip", client.IP),
			zap.Duration("retry_after", retryAfter),
		)
		s.recordLogin(ctx, platformID, "rate_limited")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.userRepo.FindByEmail(ctx, s.db, platformID, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordLogin(ctx, platformID, "not_found")
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive {
		s.recordLogin(ctx, platformID, "inactive")
		return nil, domain.ErrInactiveUser
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		s.recordLogin(ctx, platformID, "invalid_password")
		s.audit(ctx, user.ID, "auth.login_failed", nil)
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, s.db, platformID, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	pair, err := s.issuer.Issue(subjectOf(user))
	if err != nil {
		return nil, err
	}

	s.recordLogin(ctx, platformID, "success")
	s.audit(ctx, user.ID, "auth.login", nil)
	return &domain.LoginResult{Pair: pair, User: user}, nil
}

func (s *Service) Refresh(ctx context.Context, req domain.RefreshRequest) (*token.Pair, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	claims, err := s.issuer.ParseRefresh(strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	subject, err := claims.Identity()
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	if subject.PlatformID != platformID {
		return nil, domain.ErrPlatformMismatch
	}

	user, err := s.userRepo.FindByID(ctx, s.db, platformID, subject.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidRefreshToken
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	pair, err := s.issuer.Issue(subjectOf(user))
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Authenticate verifies an access token and reloads its user so that
// deactivation and role changes apply before the token expires.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*token.Subject, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}
	claims, err := s.issuer.ParseAccess(strings.TrimSpace(rawToken))
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	subject, err := claims.Identity()
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	if subject.PlatformID != platformID {
		return nil, domain.ErrPlatformMismatch
	}

	// role, company and active flag come from the row, not the token
	user, err := s.userRepo.FindByID(ctx, s.db, platformID, subject.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	current := subjectOf(user)
	return &current, nil
}

func (s *Service) Me(ctx context.Context) (*userdomain.User, error) {
	platformID, actor, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, s.db, platformID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	user, err := s.Me(ctx)
	if err != nil {
		return err
	}
	if !password.Verify(req.CurrentPassword, user.PasswordHash) {
		return domain.ErrWrongPassword
	}
	if req.CurrentPassword == req.NewPassword {
		return domain.ErrSamePassword
	}
	hash, err := password.Hash(req.NewPassword, s.cfg.SaltRounds)
	if err != nil {
		return err
	}

	now := s.now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdatePassword(ctx, tx, user.PlatformID, user.ID, hash, now); err != nil {
			return err
		}
		return s.repo.InvalidateResetTokens(ctx, tx, user.PlatformID, user.ID, now)
	})
	if err != nil {
		return err
	}
	s.audit(ctx, user.ID, "auth.password_change", nil)
	return nil
}

// ForgotPassword issues a reset token when the email belongs to an active
// user. Unknown emails succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	user, err := s.userRepo.FindByEmail(ctx, s.db, platformID, req.Email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}
	now := s.now()
	ttl := s.cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	record := &domain.PasswordResetToken{
		ID:         uuid.New(),
		PlatformID: platformID,
		UserID:     user.ID,
		TokenHash:  hashToken(raw),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := s.repo.InsertResetToken(ctx, s.db, record); err != nil {
		return err
	}

	if s.notificationSvc != nil {
		userID := user.ID
		event := notificationdomain.Event{
			Type:       notificationdomain.TypePasswordReset,
			Recipients: []notificationdomain.Recipient{{UserID: &userID, Email: user.Email}},
			Data: map[string]any{
				"name":       user.Name,
				"email":      user.Email,
				"reset_url":  fmt.Sprintf("%s/reset-password?token=%s", s.appURL, url.QueryEscape(raw)),
				"expires_in": humanDuration(ttl),
			},
		}
		if err := s.notificationSvc.Notify(ctx, event); err != nil {
			s.log.Warn("password reset notification failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	s.audit(ctx, user.ID, "auth.password_reset_requested", map[string]any{
		"reset_token": raw,
	})
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	record, err := s.repo.FindResetToken(ctx, s.db, platformID, hashToken(strings.TrimSpace(req.Token)))
	if err != nil {
		return err
	}
	now := s.now()
	if record == nil || record.UsedAt != nil || !record.ExpiresAt.After(now) {
		return domain.ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByID(ctx, s.db, platformID, record.UserID)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return domain.ErrInvalidResetToken
	}
	hash, err := password.Hash(req.NewPassword, s.cfg.SaltRounds)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		claimed, err := s.repo.ConsumeResetToken(ctx, tx, record.ID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrInvalidResetToken
		}
		if err := s.userRepo.UpdatePassword(ctx, tx, platformID, user.ID, hash, now); err != nil {
			return err
		}
		return s.repo.InvalidateResetTokens(ctx, tx, platformID, user.ID, now)
	})
	if err != nil {
		return err
	}
	s.audit(ctx, user.ID, "auth.password_reset", nil)
	return nil
}

func (s *Service) caller(ctx context.Context) (uuid.UUID, platformctx.Actor, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return uuid.Nil, platformctx.Actor{}, domain.ErrInvalidPlatform
	}
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok || actor.UserID == uuid.Nil {
		return uuid.Nil, platformctx.Actor{}, domain.ErrUnauthenticated
	}
	return platformID, actor, nil
}

func (s *Service) recordLogin(ctx context.Context, platformID uuid.UUID, outcome string) {
	s.metrics.RecordLoginAttempt(ctx, platformID.String(), outcome)
}

func (s *Service) audit(ctx context.Context, userID uuid.UUID, action string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	actorID := userID.String()
	targetID := actorID
	if err := s.auditSvc.AuditLog(ctx, "user", &actorID, action, "user", &targetID, metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

func subjectOf(user *userdomain.User) token.Subject {
	return token.Subject{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		CompanyID:  user.CompanyID,
		PlatformID: user.PlatformID,
	}
}

func newResetToken() (string, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
