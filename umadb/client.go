package umadb

import (
	"context"
	"crypto/tls"
	"errors"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/umadb-io/umadb-client-go/dcb"
	"github.com/umadb-io/umadb-client-go/umadb/internal/wire"
)

// DefaultBatchSize is the number of events the client requests from the
// store per read round trip unless WithBatchSize is given.
const DefaultBatchSize uint32 = 256

const (
	schemeTLS       = "https://"
	schemePlaintext = "http://"

	logMsgHeadCompleted     = "head completed"
	logMsgHeadFailed        = "head request failed"
	logMsgEventsAppended    = "events appended"
	logMsgAppendFailed      = "append request failed"
	logMsgIntegrityConflict = "append rejected by condition"
	logMsgReadStreamOpened  = "read stream opened"
	logMsgReadStreamFailed  = "read stream failed"
	logMsgReadCompleted     = "read completed"
	logAttrError            = "error"
	logAttrPosition         = "position"
	logAttrHead             = "head"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrBackwards        = "backwards"
	logAttrSubscribe        = "subscribe"
)

// Client talks to a remote UmaDB event store over a single gRPC connection.
//
// A Client is safe for concurrent use; each logical operation is one RPC on
// the shared connection. Relative ordering of concurrent appends is decided
// by the store, not the client.
type Client struct {
	conn             *grpc.ClientConn
	ownsConn         bool
	batchSize        uint32
	caPath           string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// Connect creates a Client for the store at the given url with optional
// configuration, e.g.:
//
//	client, err := umadb.Connect("https://store.example.com:50051",
//		umadb.WithCACertificate("/etc/umadb/ca.pem"),
//		umadb.WithBatchSize(500))
//
// The url may carry an http:// or https:// scheme; https, or a configured CA
// certificate, enables TLS. Connecting is lazy: the connection is established
// on the first operation.
func Connect(url string, options ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.Join(dcb.ErrInvalidInput, dcb.ErrEmptyURL)
	}

	c := &Client{batchSize: DefaultBatchSize}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	target, useTLS, parseErr := parseStoreURL(url)
	if parseErr != nil {
		return nil, parseErr
	}

	transportCredentials, credsErr := c.transportCredentials(useTLS)
	if credsErr != nil {
		return nil, credsErr
	}

	conn, dialErr := grpc.NewClient(target, grpc.WithTransportCredentials(transportCredentials))
	if dialErr != nil {
		return nil, errors.Join(dcb.ErrTransportFailed, dialErr)
	}

	c.conn = conn
	c.ownsConn = true

	return c, nil
}

// NewClientFromConn creates a Client on top of an existing gRPC connection
// with optional configuration. The caller keeps ownership of the connection;
// Close will not close it.
func NewClientFromConn(conn *grpc.ClientConn, options ...Option) (*Client, error) {
	if conn == nil {
		return nil, errors.Join(dcb.ErrInvalidInput, errors.New("nil grpc connection supplied"))
	}

	c := &Client{conn: conn, batchSize: DefaultBatchSize}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Close releases the underlying connection if the Client owns it.
// Active read sequences are aborted.
func (c *Client) Close() error {
	if !c.ownsConn {
		return nil
	}

	if closeErr := c.conn.Close(); closeErr != nil {
		return errors.Join(dcb.ErrTransportFailed, closeErr)
	}

	return nil
}

// Head returns the position of the most recent durable event. For an empty
// store ok is false and the position is meaningless. No side effects.
func (c *Client) Head(ctx context.Context) (position uint64, ok bool, err error) {
	ctx, span := c.startSpan(ctx, spanNameHead, operationHead)

	var response wire.HeadResponse

	start := time.Now()
	invokeErr := c.conn.Invoke(ctx, wire.MethodHead, &wire.HeadRequest{}, &response, grpc.CallContentSubtype(wire.CodecName))
	duration := time.Since(start)

	c.recordDuration(metricHeadDuration, operationHead, duration)

	if invokeErr != nil {
		translatedErr := translateRPCError(invokeErr)
		c.countError(operationHead, errorKind(translatedErr))
		c.logError(ctx, logMsgHeadFailed, logAttrError, translatedErr.Error())
		c.finishSpan(span, translatedErr)

		return 0, false, translatedErr
	}

	c.finishSpan(span, nil)

	if response.Head == nil {
		c.logDebug(ctx, logMsgHeadCompleted, logAttrDurationMS, durationToMilliseconds(duration))
		return 0, false, nil
	}

	c.logDebug(ctx, logMsgHeadCompleted, logAttrHead, *response.Head, logAttrDurationMS, durationToMilliseconds(duration))

	return *response.Head, true, nil
}

// Append atomically appends the batch of events, optionally guarded by an
// AppendCondition, and returns the new head position.
//
// The whole batch shares one outcome: either all events are durably appended
// contiguously, or none are. A violated condition surfaces as
// dcb.ErrIntegrityConflict and nothing is written; the right reaction is to
// re-read and redo the business decision, not to retry the same append.
// An empty batch is rejected before any network call.
func (c *Client) Append(ctx context.Context, events dcb.Events, condition *dcb.AppendCondition) (uint64, error) {
	if len(events) == 0 {
		return 0, errors.Join(dcb.ErrInvalidInput, dcb.ErrEmptyEventBatch)
	}

	ctx, span := c.startSpan(ctx, spanNameAppend, operationAppend)

	request := wire.AppendRequest{
		Events:    wire.EventsFromDomain(events),
		Condition: wire.ConditionFromDomain(condition),
	}

	var response wire.AppendResponse

	start := time.Now()
	invokeErr := c.conn.Invoke(ctx, wire.MethodAppend, &request, &response, grpc.CallContentSubtype(wire.CodecName))
	duration := time.Since(start)

	c.recordDuration(metricAppendDuration, operationAppend, duration)

	if invokeErr != nil {
		translatedErr := translateRPCError(invokeErr)
		c.countError(operationAppend, errorKind(translatedErr))

		if errors.Is(translatedErr, dcb.ErrIntegrityConflict) {
			c.logInfo(ctx, logMsgIntegrityConflict, logAttrEventCount, len(events))
		} else {
			c.logError(ctx, logMsgAppendFailed, logAttrError, translatedErr.Error(), logAttrEventCount, len(events))
		}

		c.finishSpan(span, translatedErr)

		return 0, translatedErr
	}

	c.finishSpan(span, nil)
	c.logInfo(ctx, logMsgEventsAppended,
		logAttrEventCount, len(events),
		logAttrPosition, response.Position,
		logAttrDurationMS, durationToMilliseconds(duration))

	return response.Position, nil
}

func (c *Client) transportCredentials(useTLS bool) (credentials.TransportCredentials, error) {
	if c.caPath != "" {
		tlsCredentials, credsErr := credentials.NewClientTLSFromFile(c.caPath, "")
		if credsErr != nil {
			return nil, errors.Join(dcb.ErrIOFailure, credsErr)
		}

		return tlsCredentials, nil
	}

	if useTLS {
		return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
	}

	return insecure.NewCredentials(), nil
}

// parseStoreURL splits the scheme off the url and decides whether TLS is
// required. A bare host:port is accepted and treated as plaintext.
func parseStoreURL(url string) (target string, useTLS bool, err error) {
	switch {
	case strings.HasPrefix(url, schemeTLS):
		target = strings.TrimPrefix(url, schemeTLS)
		useTLS = true
	case strings.HasPrefix(url, schemePlaintext):
		target = strings.TrimPrefix(url, schemePlaintext)
	default:
		target = url
	}

	if target == "" {
		return "", false, errors.Join(dcb.ErrInvalidInput, dcb.ErrEmptyURL)
	}

	return target, useTLS, nil
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
