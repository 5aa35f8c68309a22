// Package instrumentation provides OpenTelemetry metrics for the autobrief
// digest pipeline.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Scheduler Metrics:
//   - digest_runs_total: Counter of group digest runs by status
//   - digest_run_duration_seconds: Histogram of group digest run durations
//
// Pipeline Metrics:
//   - messages_classified_total: Counter of retrieved messages by verdict
//   - digests_sent_total: Counter of digest emails dispatched
//   - summarizer_requests_total: Counter of summarization requests by status
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API operations by operation and status
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: false)
//   - METRICS_EXPORTER: Metrics exporter type (stdout, none, default: stdout)
//   - OTEL_SERVICE_NAME: Service name (default: autobrief)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "autobrief",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordDigestRun(ctx, "success", "", time.Since(start))
package instrumentation
