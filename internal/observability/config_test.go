package observability

import (
	"testing"

	"github.com/smallbiznis/eventory/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{Environment: "development"})

	assert.Equal(t, "eventory", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.False(t, cfg.OtelEnabled, "no endpoint means no exporter")
	assert.True(t, cfg.Debug())
}

func TestLoadConfigProduction(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:      "eventory-api",
		AppVersion:   "1.4.0",
		Environment:  "production",
		OTLPEndpoint: "collector:4317",
		Telemetry: config.TelemetryConfig{
			LogLevel:      "warn",
			OtelEnabled:   true,
			OtelProtocol:  "http",
			SamplingRatio: 0.25,
		},
	})

	assert.Equal(t, "eventory-api", cfg.ServiceName)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 0.25, cfg.OtelSamplingRatio)
	assert.False(t, cfg.Debug())

	assert.True(t, Config{LogLevel: "DEBUG", Environment: "production"}.Debug())
}
