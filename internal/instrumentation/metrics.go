package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrVerdict   = "verdict"
	attrGroup     = "group"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Scheduler metrics
	digestRunsTotal   metric.Int64Counter
	digestRunDuration metric.Float64Histogram

	// Pipeline metrics
	messagesClassifiedTotal metric.Int64Counter
	digestsSentTotal        metric.Int64Counter
	summarizerRequestsTotal metric.Int64Counter

	// Gmail API metrics
	gmailAPIOperationsTotal metric.Int64Counter

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.digestRunsTotal, err = meter.Int64Counter(
		"digest_runs_total",
		metric.WithDescription("Total number of group digest runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest_runs_total counter: %w", err)
	}

	m.digestRunDuration, err = meter.Float64Histogram(
		"digest_run_duration_seconds",
		metric.WithDescription("Group digest run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest_run_duration_seconds histogram: %w", err)
	}

	m.messagesClassifiedTotal, err = meter.Int64Counter(
		"messages_classified_total",
		metric.WithDescription("Total number of retrieved messages by classification verdict"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_classified_total counter: %w", err)
	}

	m.digestsSentTotal, err = meter.Int64Counter(
		"digests_sent_total",
		metric.WithDescription("Total number of digest emails dispatched"),
		metric.WithUnit("{digest}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digests_sent_total counter: %w", err)
	}

	m.summarizerRequestsTotal, err = meter.Int64Counter(
		"summarizer_requests_total",
		metric.WithDescription("Total number of summarization requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer_requests_total counter: %w", err)
	}

	m.gmailAPIOperationsTotal, err = meter.Int64Counter(
		"gmail_api_operations_total",
		metric.WithDescription("Total number of Gmail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operations_total counter: %w", err)
	}

	return m, nil
}

// RecordDigestRun records a group digest run with status and duration.
// Status should be one of: "success", "error", "skipped". The group title
// is only included as a label when detailedLabels is enabled.
func (m *Metrics) RecordDigestRun(ctx context.Context, status, group string, duration time.Duration) {
	if m.digestRunsTotal == nil || m.digestRunDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && group != "" {
		attrs = append(attrs, attribute.String(attrGroup, group))
	}

	m.digestRunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.digestRunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordClassification records a classified message with its verdict.
// Verdict should be one of: "retained", "discarded".
func (m *Metrics) RecordClassification(ctx context.Context, verdict string) {
	if m.messagesClassifiedTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrVerdict, verdict),
	}

	m.messagesClassifiedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDigestSent records a dispatched digest email.
func (m *Metrics) RecordDigestSent(ctx context.Context) {
	if m.digestsSentTotal == nil {
		return // Instrumentation not initialized
	}

	m.digestsSentTotal.Add(ctx, 1)
}

// RecordSummarizerRequest records a summarization request with result.
// Status should be one of: "success", "error".
func (m *Metrics) RecordSummarizerRequest(ctx context.Context, status string) {
	if m.summarizerRequestsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.summarizerRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordGmailOperation records a Gmail API operation with operation type and status.
//
// Parameters:
//   - operation: Operation type (search, fetch, send)
//   - status: Result status ("success" or "error")
func (m *Metrics) RecordGmailOperation(ctx context.Context, operation, status string) {
	if m.gmailAPIOperationsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.gmailAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
