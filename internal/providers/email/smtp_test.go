package email

import (
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/eventory/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildMessageHeaders(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msg := string(buildMessage("ops@eventory.local", []string{"a@example.com", "b@example.com"}, "Order ORD-1 confirmed", "<p>hi</p>", at))

	assert.True(t, strings.HasPrefix(msg, "From: ops@eventory.local\r\n"))
	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: Order ORD-1 confirmed\r\n")
	assert.Contains(t, msg, "Date: Sun, 01 Mar 2026 09:00:00 +0000\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestNewFromConfigFallsBackToNoOp(t *testing.T) {
	provider := NewFromConfig(configWithoutSMTP())
	_, ok := provider.(*NoOpProvider)
	assert.True(t, ok)
}

func configWithoutSMTP() config.Config {
	return config.Config{}
}
