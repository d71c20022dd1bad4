package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("platform_id", "123"),
		attribute.String("user_email", "a@b.c"),
		attribute.String("to_status", "QUOTED"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "platform_id" && attrs[1].Key != "platform_id" {
		t.Fatalf("expected platform_id to be retained")
	}
	if attrs[0].Key != "to_status" && attrs[1].Key != "to_status" {
		t.Fatalf("expected to_status to be retained")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordOrderTransition(context.Background(), "p", "DRAFT", "SUBMITTED")
	m.RecordInvoiceIssued(context.Background(), "p")
	m.RecordLoginAttempt(context.Background(), "p", "success")
	m.RecordNotification(context.Background(), "EMAIL", "SENT")
}
