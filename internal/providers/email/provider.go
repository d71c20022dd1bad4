package email

import "context"

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// NoOpProvider drops every message. It backs the email channel when SMTP is
// not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
