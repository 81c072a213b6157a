package umadb

import (
	"errors"

	"github.com/umadb-io/umadb-client-go/dcb"
)

// Option defines a functional option for configuring the Client.
type Option func(*Client) error

// WithCACertificate sets the path of a CA certificate file the client trusts
// for TLS. The file is read once during Connect; an unreadable file fails
// Connect with dcb.ErrIOFailure.
func WithCACertificate(path string) Option {
	return func(c *Client) error {
		if path == "" {
			return errors.Join(dcb.ErrInvalidInput, errors.New("empty ca certificate path supplied"))
		}

		c.caPath = path

		return nil
	}
}

// WithBatchSize sets how many events the client requests from the store per
// read round trip. Defaults to DefaultBatchSize.
func WithBatchSize(size uint32) Option {
	return func(c *Client) error {
		if size == 0 {
			return errors.Join(dcb.ErrInvalidInput, dcb.ErrZeroBatchSize)
		}

		c.batchSize = size

		return nil
	}
}

// WithLogger sets the logger for the Client.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: per-RPC timing (development use)
// Info level: event counts, durations, integrity conflicts (production-safe)
// Warn level: non-critical issues
// Error level: failures that abort an operation.
func WithLogger(logger Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Client.
// The contextual logger will receive log messages with context information
// including automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Client.
// The metrics collector will receive operation durations, event counts, and
// error counters.
func WithMetrics(collector MetricsCollector) Option {
	return func(c *Client) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Client.
// The tracing collector will receive span creation for read/head/append
// operations, context propagation, and error tracking.
func WithTracing(collector TracingCollector) Option {
	return func(c *Client) error {
		c.tracingCollector = collector
		return nil
	}
}
