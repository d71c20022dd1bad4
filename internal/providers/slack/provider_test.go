package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/eventory/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostMessage(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	provider := NewWebhook(srv.URL, zap.NewNop())
	require.NoError(t, provider.PostMessage(context.Background(), "Order ORD-42 confirmed"))
	assert.Equal(t, "Order ORD-42 confirmed", got.Text)
}

func TestPostMessageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer srv.Close()

	provider := NewWebhook(srv.URL, zap.NewNop())
	assert.Error(t, provider.PostMessage(context.Background(), "hello"))
}

func TestNewFromConfig(t *testing.T) {
	assert.False(t, NewFromConfig(config.Config{}, zap.NewNop()).Enabled())
	assert.True(t, NewFromConfig(config.Config{Slack: config.SlackConfig{WebhookURL: "http://hooks.local/x"}}, zap.NewNop()).Enabled())
}
