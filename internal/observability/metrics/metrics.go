package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	orderTransitions  metric.Int64Counter
	invoicesIssued    metric.Int64Counter
	loginAttempts     metric.Int64Counter
	notificationsSent metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "eventory"
	}
	meter := provider.Meter(name)

	orderTransitions, err := meter.Int64Counter("eventory_order_transitions_total")
	if err != nil {
		return nil, err
	}
	invoicesIssued, err := meter.Int64Counter("eventory_invoices_issued_total")
	if err != nil {
		return nil, err
	}
	loginAttempts, err := meter.Int64Counter("eventory_login_attempts_total")
	if err != nil {
		return nil, err
	}
	notificationsSent, err := meter.Int64Counter("eventory_notifications_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		orderTransitions:  orderTransitions,
		invoicesIssued:    invoicesIssued,
		loginAttempts:     loginAttempts,
		notificationsSent: notificationsSent,
	}, nil
}

// RecordOrderTransition counts order status changes.
func (m *Metrics) RecordOrderTransition(ctx context.Context, platformID, from, to string) {
	if m == nil || m.orderTransitions == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("platform_id", strings.TrimSpace(platformID)),
		attribute.String("from_status", from),
		attribute.String("to_status", to),
	)
	m.orderTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordInvoiceIssued(ctx context.Context, platformID string) {
	if m == nil || m.invoicesIssued == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("platform_id", strings.TrimSpace(platformID)))
	m.invoicesIssued.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLoginAttempt counts logins by outcome (success, not_found, inactive,
// invalid_password, rate_limited).
func (m *Metrics) RecordLoginAttempt(ctx context.Context, platformID, outcome string) {
	if m == nil || m.loginAttempts == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("platform_id", strings.TrimSpace(platformID)),
		attribute.String("outcome", outcome),
	)
	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordNotification(ctx context.Context, channel, status string) {
	if m == nil || m.notificationsSent == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	)
	m.notificationsSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"platform_id": {},
	"from_status": {},
	"to_status":   {},
	"outcome":     {},
	"channel":     {},
	"status":      {},
	"status_code": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
