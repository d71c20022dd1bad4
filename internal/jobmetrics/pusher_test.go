package jobmetrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/eventory/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/protoadapt"
)

func TestRemoteWritePusherSendsCountersAndGauges(t *testing.T) {
	registry := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "job_runs_total"}, []string{"job"})
	lag := prometheus.NewGauge(prometheus.GaugeOpts{Name: "job_lag_seconds"})
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "job_duration_seconds"})
	registry.MustRegister(runs, lag, hist)
	runs.WithLabelValues("invoices.mark_overdue").Add(2)
	lag.Set(1.5)
	hist.Observe(0.2)

	var received prompb.WriteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "snappy", r.Header.Get("Content-Encoding"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		raw, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, proto.Unmarshal(raw, protoadapt.MessageV2Of(&received)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pusher := NewRemoteWritePusher(srv.URL, "secret")
	require.NoError(t, pusher.Push(context.Background(), registry))

	names := map[string]float64{}
	for _, ts := range received.Timeseries {
		for _, label := range ts.Labels {
			if label.Name == "__name__" {
				names[label.Value] = ts.Samples[0].Value
			}
		}
	}
	assert.Equal(t, 2.0, names["job_runs_total"])
	assert.Equal(t, 1.5, names["job_lag_seconds"])
	_, hasHistogram := names["job_duration_seconds"]
	assert.False(t, hasHistogram)
}

func TestRemoteWritePusherReportsNon2xx(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "x_total"})
	registry.MustRegister(c)
	c.Inc()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), registry)
	assert.Error(t, err)
}

func TestNewPusherFromConfig(t *testing.T) {
	log := zaptest.NewLogger(t)

	assert.Nil(t, NewPusher(config.Config{}, log))

	cfg := config.Config{AppName: "eventory", JobMetrics: config.JobMetricsConfig{Enabled: true, Exporter: "prometheus_pushgateway", Endpoint: "http://pushgateway:9091"}}
	_, ok := NewPusher(cfg, log).(*PushgatewayPusher)
	assert.True(t, ok)

	cfg.JobMetrics.Exporter = "prometheus_remote_write"
	_, ok = NewPusher(cfg, log).(*RemoteWritePusher)
	assert.True(t, ok)

	cfg.JobMetrics.Exporter = "statsd"
	assert.Nil(t, NewPusher(cfg, log))
}
