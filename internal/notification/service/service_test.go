package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/smallbiznis/eventory/internal/notification/domain"
	"github.com/smallbiznis/eventory/internal/notification/repository"
	platformdomain "github.com/smallbiznis/eventory/internal/platform/domain"
	platformrepo "github.com/smallbiznis/eventory/internal/platform/repository"
	"github.com/smallbiznis/eventory/internal/platformctx"
	"github.com/smallbiznis/eventory/internal/providers/email/mocks"
	"github.com/smallbiznis/eventory/internal/providers/slack"
	userdomain "github.com/smallbiznis/eventory/internal/user/domain"
	userrepo "github.com/smallbiznis/eventory/internal/user/repository"
	"github.com/smallbiznis/eventory/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeSlack struct {
	messages []string
}

func (f *fakeSlack) Enabled() bool { return true }

func (f *fakeSlack) PostMessage(ctx context.Context, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

type fixture struct {
	svc       domain.Service
	conn      *gorm.DB
	ctx       context.Context
	mail      *mocks.MockProvider
	slack     *fakeSlack
	companyID uuid.UUID
	client    userdomain.User
}

func setup(t *testing.T, slackProvider slack.Provider) fixture {
	t.Helper()
	conn, err := db.NewTest(&platformdomain.Platform{}, &userdomain.User{}, &domain.Notification{})
	require.NoError(t, err)

	now := time.Now().UTC()
	platform := platformdomain.Platform{ID: uuid.New(), Name: "Eventory Gulf", Slug: "gulf", Currency: "AED", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, conn.Create(&platform).Error)

	companyID := uuid.New()
	users := []userdomain.User{
		{ID: uuid.New(), PlatformID: platform.ID, CompanyID: &companyID, Name: "Client", Email: "client@acme.test", PasswordHash: "x", Role: userdomain.RoleClient, IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), PlatformID: platform.ID, Name: "Ops", Email: "ops@eventory.test", PasswordHash: "x", Role: userdomain.RoleLogistics, IsActive: true, CreatedAt: now.Add(time.Second), UpdatedAt: now},
		{ID: uuid.New(), PlatformID: platform.ID, Name: "Gone", Email: "gone@eventory.test", PasswordHash: "x", Role: userdomain.RoleAdmin, IsActive: false, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, conn.Create(&users).Error)

	ctrl := gomock.NewController(t)
	mail := mocks.NewMockProvider(ctrl)
	fs, _ := slackProvider.(*fakeSlack)

	svc := New(Params{
		DB:           conn,
		Log:          zaptest.NewLogger(t),
		Repo:         repository.Provide(),
		UserRepo:     userrepo.Provide(),
		PlatformRepo: platformrepo.Provide(),
		Email:        mail,
		Slack:        slackProvider,
	})
	return fixture{
		svc:       svc,
		conn:      conn,
		ctx:       platformctx.WithPlatformID(context.Background(), platform.ID),
		mail:      mail,
		slack:     fs,
		companyID: companyID,
		client:    users[0],
	}
}

func orderEvent(companyID uuid.UUID) domain.Event {
	return domain.Event{
		Type:          domain.TypeOrderStatusChanged,
		CompanyID:     &companyID,
		NotifyCompany: true,
		NotifyStaff:   true,
		Data: map[string]any{
			"order_number": "ORD-1",
			"event_name":   "Expo",
			"from_status":  "SUBMITTED",
			"to_status":    "PRICING_REVIEW",
		},
	}
}

func TestNotifyFansOutToCompanyAndStaff(t *testing.T) {
	f := setup(t, &fakeSlack{})

	f.mail.EXPECT().Send(gomock.Any(), []string{"client@acme.test"}, "Order ORD-1 is now PRICING_REVIEW", gomock.Any()).Return(nil)
	f.mail.EXPECT().Send(gomock.Any(), []string{"ops@eventory.test"}, gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.svc.Notify(f.ctx, orderEvent(f.companyID)))

	var rows []domain.Notification
	require.NoError(t, f.conn.Order("channel ASC, recipient ASC").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ChannelEmail, rows[0].Channel)
	assert.Equal(t, domain.StatusSent, rows[0].Status)
	assert.Equal(t, 1, rows[0].Attempts)
	assert.Contains(t, rows[0].Body, "Eventory Gulf")
	assert.Equal(t, domain.ChannelSlack, rows[2].Channel)
	assert.Equal(t, []string{"Order ORD-1 (Expo) SUBMITTED -> PRICING_REVIEW"}, f.slack.messages)
}

func TestSendFailureIsRecordedAndRetried(t *testing.T) {
	f := setup(t, &slack.NoOpProvider{})
	event := domain.Event{
		Type:       domain.TypePasswordReset,
		Recipients: []domain.Recipient{{UserID: &f.client.ID, Email: "Client@Acme.test"}},
		Data:       map[string]any{"name": "Client", "reset_url": "http://app/reset?token=x", "expires_in": "30 minutes"},
	}

	f.mail.EXPECT().Send(gomock.Any(), []string{"client@acme.test"}, "Reset your password", gomock.Any()).Return(errors.New("smtp down"))
	require.NoError(t, f.svc.Notify(f.ctx, event))

	var row domain.Notification
	require.NoError(t, f.conn.Take(&row).Error)
	assert.Equal(t, domain.StatusFailed, row.Status)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "smtp down", *row.LastError)

	f.mail.EXPECT().Send(gomock.Any(), []string{"client@acme.test"}, gomock.Any(), gomock.Any()).Return(errors.New("still down"))
	sent, err := f.svc.RetryFailed(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	f.mail.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	sent, err = f.svc.RetryFailed(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.NoError(t, f.conn.Take(&row).Error)
	assert.Equal(t, domain.StatusSent, row.Status)
	assert.Equal(t, 3, row.Attempts)

	sent, err = f.svc.RetryFailed(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	f := setup(t, &slack.NoOpProvider{})
	event := domain.Event{
		Type:       domain.TypePasswordReset,
		Recipients: []domain.Recipient{{Email: "someone@acme.test"}},
		Data:       map[string]any{"name": "x"},
	}
	f.mail.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("down")).Times(domain.MaxAttempts)

	require.NoError(t, f.svc.Notify(f.ctx, event))
	for i := 0; i < domain.MaxAttempts+1; i++ {
		_, err := f.svc.RetryFailed(context.Background(), 10)
		require.NoError(t, err)
	}
}

func TestInboxReadState(t *testing.T) {
	f := setup(t, &slack.NoOpProvider{})
	f.mail.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	require.NoError(t, f.svc.Notify(f.ctx, orderEvent(f.companyID)))
	require.NoError(t, f.svc.Notify(f.ctx, orderEvent(f.companyID)))

	clientCtx := platformctx.WithActor(f.ctx, platformctx.Actor{UserID: f.client.ID, Role: userdomain.RoleClient, CompanyID: &f.companyID})
	unread := true
	items, meta, err := f.svc.ListMine(clientCtx, domain.ListRequest{Unread: &unread})
	require.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)

	read, err := f.svc.MarkRead(clientCtx, items[0].ID.String())
	require.NoError(t, err)
	assert.NotNil(t, read.ReadAt)

	other := platformctx.WithActor(f.ctx, platformctx.Actor{UserID: uuid.New(), Role: userdomain.RoleLogistics})
	_, err = f.svc.MarkRead(other, items[1].ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := f.svc.MarkAllRead(clientCtx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, meta, err = f.svc.ListMine(clientCtx, domain.ListRequest{Unread: &unread})
	require.NoError(t, err)
	assert.Equal(t, int64(0), meta.Total)

	_, _, err = f.svc.ListMine(f.ctx, domain.ListRequest{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestNotifyRejectsUnknownType(t *testing.T) {
	f := setup(t, &slack.NoOpProvider{})
	assert.ErrorIs(t, f.svc.Notify(f.ctx, domain.Event{Type: "SOMETHING"}), domain.ErrUnknownType)
}
