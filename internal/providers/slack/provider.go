package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/smallbiznis/eventory/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.slack",
	fx.Provide(NewFromConfig),
)

type Provider interface {
	Enabled() bool
	PostMessage(ctx context.Context, text string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Enabled() bool { return false }

func (p *NoOpProvider) PostMessage(ctx context.Context, text string) error {
	return nil
}

// WebhookProvider posts to a Slack incoming webhook.
type WebhookProvider struct {
	client     *resty.Client
	webhookURL string
	log        *zap.Logger
}

type webhookPayload struct {
	Text string `json:"text"`
}

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.Slack.WebhookURL == "" {
		return &NoOpProvider{}
	}
	return NewWebhook(cfg.Slack.WebhookURL, log)
}

func NewWebhook(webhookURL string, log *zap.Logger) *WebhookProvider {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &WebhookProvider{
		client:     client,
		webhookURL: webhookURL,
		log:        log.Named("providers.slack"),
	}
}

func (p *WebhookProvider) Enabled() bool { return true }

func (p *WebhookProvider) PostMessage(ctx context.Context, text string) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Text: text}).
		Post(p.webhookURL)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	if resp.IsError() {
		p.log.Warn("slack webhook rejected message",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return fmt.Errorf("slack: webhook returned %d", resp.StatusCode())
	}
	return nil
}
