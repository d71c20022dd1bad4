package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	auditdomain "github.com/smallbiznis/eventory/internal/audit/domain"
	auditrepo "github.com/smallbiznis/eventory/internal/audit/repository"
	auditservice "github.com/smallbiznis/eventory/internal/audit/service"
	"github.com/smallbiznis/eventory/internal/auth/domain"
	"github.com/smallbiznis/eventory/internal/auth/password"
	"github.com/smallbiznis/eventory/internal/auth/repository"
	"github.com/smallbiznis/eventory/internal/auth/token"
	"github.com/smallbiznis/eventory/internal/config"
	notificationdomain "github.com/smallbiznis/eventory/internal/notification/domain"
	obscontext "github.com/smallbiznis/eventory/internal/observability/context"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/ratelimit"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	userrepo "github.com/smallbiznis/eventory/internal/user/repository"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type capturedNotifications struct {
	notificationdomain.Service
	events []notificationdomain.Event
}

func (c *capturedNotifications) Notify(ctx context.Context, event notificationdomain.Event) error {
	c.events = append(c.events, event)
	return nil
}

type fixture struct {
	svc    domain.Service
	conn   *gorm.DB
	ctx    context.Context
	notes  *capturedNotifications
	active userdomain.User
}

func testConfig() config.Config {
	return config.Config{
		AppName:      "eventory",
		PublicAppURL: "https://app.eventory.test",
		Auth: config.AuthConfig{
			AccessSecret:     "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: time.Hour,
			SaltRounds:       bcrypt.MinCost,
			LoginRateLimit:   3,
			LoginRateWindow:  time.Minute,
			ResetTokenTTL:    30 * time.Minute,
		},
	}
}

func setup(t *testing.T, limiter *ratelimit.LoginLimiter) fixture {
	t.Helper()
	conn, err := db.NewTest(&userdomain.User{}, &domain.PasswordResetToken{}, &auditdomain.AuditLog{})
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	cfg := testConfig()

	platformID := uuid.New()
	hash, err := password.Hash("correct-password", bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	users := []userdomain.User{
		{ID: uuid.New(), PlatformID: platformID, Name: "Active", Email: "active@example.com", PasswordHash: hash, Role: userdomain.RoleLogistics, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), PlatformID: platformID, Name: "Inactive", Email: "inactive@example.com", PasswordHash: hash, Role: userdomain.RoleLogistics, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, conn.Create(&users).Error)
	require.NoError(t, conn.Model(&userdomain.User{}).Where("id = ?", users[1].ID).Update("is_active", false).Error)

	notes := &capturedNotifications{}
	svc := New(Params{
		DB:              conn,
		Log:             log,
		Cfg:             cfg,
		Repo:            repository.Provide(),
		UserRepo:        userrepo.Provide(),
		Issuer:          token.NewIssuer(cfg),
		Limiter:         limiter,
		NotificationSvc: notes,
		AuditSvc:        auditservice.NewService(auditservice.Params{DB: conn, Log: log, Repo: auditrepo.Provide()}),
	})

	ctx := platformctx.WithPlatformID(context.Background(), platformID)
	ctx = obscontext.WithClientInfo(ctx, obscontext.ClientInfo{IP: "10.0.0.1", UserAgent: "test"})
	return fixture{svc: svc, conn: conn, ctx: ctx, notes: notes, active: users[0]}
}

func TestLogin(t *testing.T) {
	f := setup(t, nil)

	res, err := f.svc.Login(f.ctx, domain.LoginRequest{Email: "ACTIVE@example.com", Password: "correct-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.User.LastLoginAt)

	var stored userdomain.User
	require.NoError(t, f.conn.Take(&stored, "id = ?", f.active.ID).Error)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = f.svc.Login(f.ctx, domain.LoginRequest{Email: "inactive@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)

	_, err = f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(f.ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	otherPlatform := platformctx.WithPlatformID(context.Background(), uuid.New())
	_, err = f.svc.Login(otherPlatform, domain.LoginRequest{Email: "active@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLoginRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := ratelimit.NewLoginLimiter(testConfig(), client, zaptest.NewLogger(t))
	f := setup(t, limiter)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "wrong-password"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err := f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestRefreshAndAuthenticate(t *testing.T) {
	f := setup(t, nil)
	res, err := f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "correct-password"})
	require.NoError(t, err)

	subject, err := f.svc.Authenticate(f.ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.active.ID, subject.UserID)

	_, err = f.svc.Authenticate(platformctx.WithPlatformID(context.Background(), uuid.New()), res.AccessToken)
	assert.ErrorIs(t, err, domain.ErrPlatformMismatch)

	_, err = f.svc.Authenticate(f.ctx, res.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	pair, err := f.svc.Refresh(f.ctx, domain.RefreshRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = f.svc.Refresh(f.ctx, domain.RefreshRequest{RefreshToken: res.AccessToken})
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	require.NoError(t, f.conn.Model(&userdomain.User{}).Where("id = ?", f.active.ID).Update("is_active", false).Error)
	_, err = f.svc.Refresh(f.ctx, domain.RefreshRequest{RefreshToken: res.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
}

func TestAuthenticateReloadsUser(t *testing.T) {
	f := setup(t, nil)
	res, err := f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "correct-password"})
	require.NoError(t, err)

	require.NoError(t, f.conn.Model(&userdomain.User{}).Where("id = ?", f.active.ID).Update("role", userdomain.RoleAdmin).Error)
	subject, err := f.svc.Authenticate(f.ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userdomain.RoleAdmin, subject.Role)

	require.NoError(t, f.conn.Model(&userdomain.User{}).Where("id = ?", f.active.ID).Update("is_active", false).Error)
	_, err = f.svc.Authenticate(f.ctx, res.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInactiveUser)

	require.NoError(t, f.conn.Where("id = ?", f.active.ID).Delete(&userdomain.User{}).Error)
	_, err = f.svc.Authenticate(f.ctx, res.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestChangePassword(t *testing.T) {
	f := setup(t, nil)
	ctx := platformctx.WithActor(f.ctx, platformctx.Actor{UserID: f.active.ID, Role: userdomain.RoleLogistics})

	err := f.svc.ChangePassword(ctx, domain.ChangePasswordRequest{CurrentPassword: "nope-nope", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, domain.ErrWrongPassword)

	err = f.svc.ChangePassword(ctx, domain.ChangePasswordRequest{CurrentPassword: "correct-password", NewPassword: "correct-password"})
	assert.ErrorIs(t, err, domain.ErrSamePassword)

	require.NoError(t, f.svc.ChangePassword(ctx, domain.ChangePasswordRequest{CurrentPassword: "correct-password", NewPassword: "brand-new-pass"}))

	_, err = f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "brand-new-pass"})
	assert.NoError(t, err)

	_, err = f.svc.Me(f.ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.svc.ForgotPassword(f.ctx, domain.ForgotPasswordRequest{Email: "unknown@example.com"}))
	require.NoError(t, f.svc.ForgotPassword(f.ctx, domain.ForgotPasswordRequest{Email: "inactive@example.com"}))
	assert.Empty(t, f.notes.events)

	require.NoError(t, f.svc.ForgotPassword(f.ctx, domain.ForgotPasswordRequest{Email: "active@example.com"}))
	require.Len(t, f.notes.events, 1)
	event := f.notes.events[0]
	assert.Equal(t, notificationdomain.TypePasswordReset, event.Type)
	assert.Equal(t, "30 minutes", event.Data["expires_in"])

	link, err := url.Parse(event.Data["reset_url"].(string))
	require.NoError(t, err)
	raw := link.Query().Get("token")
	require.NotEmpty(t, raw)

	var stored domain.PasswordResetToken
	require.NoError(t, f.conn.Take(&stored).Error)
	assert.NotEqual(t, raw, stored.TokenHash)

	var audit auditdomain.AuditLog
	require.NoError(t, f.conn.Where("action = ?", "auth.password_reset_requested").Take(&audit).Error)
	assert.NotContains(t, audit.Metadata["reset_token"], raw)

	err = f.svc.ResetPassword(f.ctx, domain.ResetPasswordRequest{Token: "not-a-token", NewPassword: "another-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)

	require.NoError(t, f.svc.ResetPassword(f.ctx, domain.ResetPasswordRequest{Token: raw, NewPassword: "another-pass"}))
	err = f.svc.ResetPassword(f.ctx, domain.ResetPasswordRequest{Token: raw, NewPassword: "yet-another-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)

	_, err = f.svc.Login(f.ctx, domain.LoginRequest{Email: "active@example.com", Password: "another-pass"})
	assert.NoError(t, err)
}

func TestExpiredResetToken(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.svc.ForgotPassword(f.ctx, domain.ForgotPasswordRequest{Email: "active@example.com"}))
	link, err := url.Parse(f.notes.events[0].Data["reset_url"].(string))
	require.NoError(t, err)

	f.svc.(*Service).now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	err = f.svc.ResetPassword(f.ctx, domain.ResetPasswordRequest{Token: link.Query().Get("token"), NewPassword: "another-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}
