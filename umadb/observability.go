package umadb

import (
	"context"
	"time"
)

// Logger interface for RPC logging, operational messages, warnings, and
// error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting client performance and
// operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// SpanContext represents an active tracing span that can be finished and
// updated with attributes.
type SpanContext interface {
	SetStatus(status string)
	AddAttribute(key, value string)
}

// TracingCollector interface for collecting distributed tracing information
// from client operations. This interface follows the same dependency-free
// pattern as MetricsCollector, allowing users to integrate with any tracing
// backend (OpenTelemetry, Jaeger, Zipkin, etc.) by implementing this interface.
type TracingCollector interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext)
	FinishSpan(spanCtx SpanContext, status string, attrs map[string]string)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. This interface follows the same dependency-free pattern as
// MetricsCollector and TracingCollector, allowing users to integrate with any
// logging backend that supports context-based correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

const (
	metricReadDuration   = "umadb_client_read_duration"
	metricHeadDuration   = "umadb_client_head_duration"
	metricAppendDuration = "umadb_client_append_duration"
	metricErrorsTotal    = "umadb_client_errors_total"

	spanNameRead   = "umadb.client.read"
	spanNameHead   = "umadb.client.head"
	spanNameAppend = "umadb.client.append"

	spanStatusOK    = "ok"
	spanStatusError = "error"

	labelOperation = "operation"
	labelErrorKind = "error_kind"

	operationRead   = "read"
	operationHead   = "head"
	operationAppend = "append"
)

// logError logs via the contextual logger when available, falling back to the
// plain logger; both are optional.
func (c *Client) logError(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}

func (c *Client) logInfo(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) logDebug(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) recordDuration(metric string, operation string, duration time.Duration) {
	if c.metricsCollector != nil {
		c.metricsCollector.RecordDuration(metric, duration, map[string]string{labelOperation: operation})
	}
}

func (c *Client) countError(operation string, errorKind string) {
	if c.metricsCollector != nil {
		c.metricsCollector.IncrementCounter(metricErrorsTotal, map[string]string{
			labelOperation: operation,
			labelErrorKind: errorKind,
		})
	}
}

func (c *Client) startSpan(ctx context.Context, name string, operation string) (context.Context, SpanContext) {
	if c.tracingCollector == nil {
		return ctx, nil
	}

	return c.tracingCollector.StartSpan(ctx, name, map[string]string{labelOperation: operation})
}

func (c *Client) finishSpan(span SpanContext, opErr error) {
	if c.tracingCollector == nil || span == nil {
		return
	}

	if opErr != nil {
		c.tracingCollector.FinishSpan(span, spanStatusError, map[string]string{logAttrError: opErr.Error()})
		return
	}

	c.tracingCollector.FinishSpan(span, spanStatusOK, nil)
}
