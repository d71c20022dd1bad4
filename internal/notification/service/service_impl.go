package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/internal/notification/templates"
	"github.com/smallbiznis/eventory/internal/observability/metrics"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/providers/email"
	"github.com/smallbiznis/eventory/internal/providers/slack"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	"github.com/smallbiznis/eventory/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sendTimeout = 15 * time.Second

var sortColumns = map[string]string{
	"created_at": "created_at",
	"read_at":    "read_at",
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	UserRepo     userdomain.Repository
	PlatformRepo platformdomain.Repository
	Email        email.Provider
	Slack        slack.Provider
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	userRepo     userdomain.Repository
	platformRepo platformdomain.Repository
	email        email.Provider
	slack        slack.Provider
	metrics      *metrics.Metrics
	now          func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("notification.service"),
		repo:         p.Repo,
		userRepo:     p.UserRepo,
		platformRepo: p.PlatformRepo,
		email:        p.Email,
		slack:        p.Slack,
		metrics:      p.Metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Notify(ctx context.Context, event domain.Event) error {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidPlatform
	}
	if !templates.Known(event.Type) {
		return domain.ErrUnknownType
	}

	data := make(map[string]any, len(event.Data)+1)
	for k, v := range event.Data {
		data[k] = v
	}
	if _, set := data["platform_name"]; !set {
		if platform, err := s.platformRepo.FindByID(ctx, s.db, platformID); err == nil && platform != nil {
			data["platform_name"] = platform.Name
		}
	}

	rendered, err := templates.Render(event.Type, data)
	if err != nil {
		return err
	}
	recipients, err := s.recipients(ctx, platformID, event)
	if err != nil {
		return err
	}

	for _, rcpt := range recipients {
		n := s.newRow(platformID, event, domain.ChannelEmail, rcpt.Email, rendered.Subject, rendered.HTML, data)
		n.UserID = rcpt.UserID
		if err := s.repo.Insert(ctx, s.db, n); err != nil {
			return err
		}
		s.deliver(ctx, n)
	}

	if event.NotifyStaff && s.slack != nil && s.slack.Enabled() {
		n := s.newRow(platformID, event, domain.ChannelSlack, "webhook", rendered.Subject, rendered.Text, data)
		if err := s.repo.Insert(ctx, s.db, n); err != nil {
			return err
		}
		s.deliver(ctx, n)
	}
	return nil
}

func (s *Service) ListMine(ctx context.Context, req domain.ListRequest) ([]domain.Notification, pagination.Meta, error) {
	platformID, userID, err := s.caller(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	query := req.Query.Normalize(sortColumns, "created_at")
	items, total, err := s.repo.ListForUser(ctx, s.db, platformID, userID, req.Unread, query)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, query.Meta(total), nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	platformID, userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	notificationID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	n, err := s.repo.FindByID(ctx, s.db, platformID, notificationID)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID == nil || *n.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if n.ReadAt != nil {
		return n, nil
	}

	now := s.now()
	if _, err := s.repo.MarkRead(ctx, s.db, platformID, userID, notificationID, now); err != nil {
		return nil, err
	}
	n.ReadAt = &now
	n.UpdatedAt = now
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	platformID, userID, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, s.db, platformID, userID, s.now())
}

// RetryFailed resends FAILED rows that still have attempts left and returns
// how many went out.
func (s *Service) RetryFailed(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	items, err := s.repo.ListRetryable(ctx, s.db, domain.MaxAttempts, limit)
	if err != nil {
		return 0, err
	}
	sent := 0
	for i := range items {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if s.deliver(ctx, &items[i]) {
			sent++
		}
	}
	return sent, nil
}

func (s *Service) recipients(ctx context.Context, platformID uuid.UUID, event domain.Event) ([]domain.Recipient, error) {
	if len(event.Recipients) > 0 {
		return dedupe(event.Recipients), nil
	}

	var out []domain.Recipient
	if event.NotifyCompany && event.CompanyID != nil {
		users, err := s.userRepo.ListActiveByRoles(ctx, s.db, platformID, event.CompanyID, userdomain.RoleClient)
		if err != nil {
			return nil, err
		}
		out = append(out, toRecipients(users)...)
	}
	if event.NotifyStaff {
		users, err := s.userRepo.ListActiveByRoles(ctx, s.db, platformID, nil, userdomain.RoleAdmin, userdomain.RoleLogistics)
		if err != nil {
			return nil, err
		}
		out = append(out, toRecipients(users)...)
	}
	return dedupe(out), nil
}

// deliver sends n on its channel and records the outcome. It reports whether
// the send succeeded.
func (s *Service) deliver(ctx context.Context, n *domain.Notification) bool {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	var err error
	switch n.Channel {
	case domain.ChannelSlack:
		err = s.slack.PostMessage(sendCtx, n.Body)
	default:
		err = s.email.Send(sendCtx, []string{n.Recipient}, n.Subject, n.Body)
	}

	now := s.now()
	n.Attempts++
	n.UpdatedAt = now
	if err != nil {
		msg := err.Error()
		n.Status = domain.StatusFailed
		n.LastError = &msg
		s.log.Warn("notification delivery failed",
			zap.String("notification_id", n.ID.String()),
			zap.String("channel", n.Channel),
			zap.Int("attempts", n.Attempts),
			zap.Error(err),
		)
	} else {
		n.Status = domain.StatusSent
		n.LastError = nil
		n.SentAt = &now
	}
	if uerr := s.repo.UpdateDelivery(ctx, s.db, n); uerr != nil {
		s.log.Error("failed to record notification delivery", zap.String("notification_id", n.ID.String()), zap.Error(uerr))
	}
	s.metrics.RecordNotification(ctx, n.Channel, n.Status)
	return err == nil
}

func (s *Service) newRow(platformID uuid.UUID, event domain.Event, channel, recipient, subject, body string, data map[string]any) *domain.Notification {
	now := s.now()
	return &domain.Notification{
		ID:         uuid.New(),
		PlatformID: platformID,
		CompanyID:  event.CompanyID,
		Channel:    channel,
		Type:       event.Type,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		Payload:    data,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *Service) caller(ctx context.Context) (uuid.UUID, uuid.UUID, error) {
	platformID, ok := platformctx.PlatformIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, domain.ErrInvalidPlatform
	}
	actor, ok := platformctx.ActorFromContext(ctx)
	if !ok || actor.UserID == uuid.Nil {
		return uuid.Nil, uuid.Nil, domain.ErrUnauthenticated
	}
	return platformID, actor.UserID, nil
}

func toRecipients(users []userdomain.User) []domain.Recipient {
	out := make([]domain.Recipient, 0, len(users))
	for i := range users {
		id := users[i].ID
		out = append(out, domain.Recipient{UserID: &id, Email: users[i].Email})
	}
	return out
}

func dedupe(in []domain.Recipient) []domain.Recipient {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Recipient, 0, len(in))
	for _, r := range in {
		addr := strings.ToLower(strings.TrimSpace(r.Email))
		if addr == "" {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		r.Email = addr
		out = append(out, r)
	}
	return out
}
