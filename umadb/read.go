package umadb

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"time"

	"google.golang.org/grpc"

	"github.com/umadb-io/umadb-client-go/dcb"
	"github.com/umadb-io/umadb-client-go/umadb/internal/wire"
)

// ReadOption defines a per-read option for Client.Read.
type ReadOption func(*readSettings)

type readSettings struct {
	start     *uint64
	backwards bool
	limit     *uint32
	subscribe bool
}

// WithStart sets the position the read starts at: the first event yielded is
// at or above it (forward) or at or below it (backwards). Position 0 is a
// legal start, distinct from absent.
func WithStart(position uint64) ReadOption {
	return func(s *readSettings) {
		s.start = &position
	}
}

// Backwards reads in strictly decreasing position order. A backwards read is
// a bounded historical scan and cannot be combined with Subscribe.
func Backwards() ReadOption {
	return func(s *readSettings) {
		s.backwards = true
	}
}

// WithLimit caps the number of events the sequence yields, in subscribe mode
// too. A limit of 0 yields no events.
func WithLimit(limit uint32) ReadOption {
	return func(s *readSettings) {
		s.limit = &limit
	}
}

// Subscribe turns the read into a live tail: after all currently-durable
// matching events the sequence blocks in Next instead of terminating, and
// resumes as new matching events are appended. It ends when the limit is
// reached, the sequence is closed, or the context is cancelled.
func Subscribe() ReadOption {
	return func(s *readSettings) {
		s.subscribe = true
	}
}

// Read starts reading matching events from the store and returns a lazily
// produced Sequence over them. A nil query matches every event.
//
// Events arrive in batches of the configured batch size; the next batch is
// only requested once the current one is consumed, so at most one batch is
// in flight per sequence. Combining Subscribe with Backwards is rejected
// with a validation error.
//
// The returned Sequence must be closed; cancelling ctx also releases it.
func (c *Client) Read(ctx context.Context, query *dcb.Query, options ...ReadOption) (*Sequence, error) {
	settings := readSettings{}
	for _, option := range options {
		option(&settings)
	}

	if settings.subscribe && settings.backwards {
		return nil, errors.Join(dcb.ErrInvalidInput, dcb.ErrSubscribeBackwards)
	}

	request := wire.ReadRequest{
		Start:     settings.start,
		Backwards: settings.backwards,
		Limit:     settings.limit,
		Subscribe: settings.subscribe,
		BatchSize: c.batchSize,
	}

	if query != nil {
		wireQuery := wire.QueryFromDomain(*query)
		request.Query = &wireQuery
	}

	ctx, span := c.startSpan(ctx, spanNameRead, operationRead)

	streamCtx, cancel := context.WithCancel(ctx)

	stream, streamErr := c.conn.NewStream(streamCtx, &wire.ReadStreamDesc, wire.MethodRead, grpc.CallContentSubtype(wire.CodecName))
	if streamErr != nil {
		cancel()
		return nil, c.abortRead(ctx, span, streamErr)
	}

	if sendErr := stream.SendMsg(&request); sendErr != nil {
		cancel()
		return nil, c.abortRead(ctx, span, sendErr)
	}

	if closeErr := stream.CloseSend(); closeErr != nil {
		cancel()
		return nil, c.abortRead(ctx, span, closeErr)
	}

	c.logDebug(ctx, logMsgReadStreamOpened, logAttrBackwards, settings.backwards, logAttrSubscribe, settings.subscribe)

	// own copy of the limit, a ReadOption value may be reused across reads
	var remaining *uint32
	if settings.limit != nil {
		limit := *settings.limit
		remaining = &limit
	}

	return &Sequence{
		client:    c,
		span:      span,
		stream:    stream,
		cancel:    cancel,
		remaining: remaining,
		started:   time.Now(),
	}, nil
}

func (c *Client) abortRead(ctx context.Context, span SpanContext, rpcErr error) error {
	translatedErr := translateRPCError(rpcErr)
	c.countError(operationRead, errorKind(translatedErr))
	c.logError(ctx, logMsgReadStreamFailed, logAttrError, translatedErr.Error())
	c.finishSpan(span, translatedErr)

	return translatedErr
}

// Sequence is a lazy pull iterator over the SequencedEvents of one read.
//
// Typical use:
//
//	sequence, err := client.Read(ctx, &query)
//	if err != nil {
//		// handle error
//	}
//	defer sequence.Close()
//
//	for sequence.Next() {
//		event := sequence.Current()
//		// ...
//	}
//	if err := sequence.Err(); err != nil {
//		// handle error
//	}
//
// Iteration belongs to one goroutine, but Close may be called from another
// to unblock a Next waiting in subscribe mode. After a failure the sequence
// is not resumable: events already yielded remain valid, the failure is
// surfaced once through Err, and Next keeps returning false.
type Sequence struct {
	client    *Client
	stream    grpc.ClientStream
	cancel    context.CancelFunc
	span      SpanContext
	started   time.Time
	batch     []wire.SequencedEvent
	batchIdx  int
	current   dcb.SequencedEvent
	remaining *uint32

	mu      sync.Mutex
	yielded uint64
	err     error
	done    bool
}

// Next advances to the next event, fetching the next batch from the store
// when the current one is consumed. In subscribe mode it blocks until a new
// matching event is appended, the limit is reached, or the sequence is
// closed. It returns false when the sequence is exhausted or failed.
func (s *Sequence) Next() bool {
	if s.isDone() {
		return false
	}

	if s.remaining != nil && *s.remaining == 0 {
		s.terminate(nil)
		return false
	}

	for s.batchIdx >= len(s.batch) {
		var response wire.ReadResponse

		recvErr := s.stream.RecvMsg(&response)
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				s.terminate(nil)
			} else {
				s.terminate(translateRPCError(recvErr))
			}

			return false
		}

		s.batch = response.Events
		s.batchIdx = 0
	}

	event, convErr := s.batch[s.batchIdx].ToDomain()
	if convErr != nil {
		s.terminate(convErr)
		return false
	}

	s.batchIdx++
	s.current = event

	s.mu.Lock()
	s.yielded++
	s.mu.Unlock()

	if s.remaining != nil {
		*s.remaining--
	}

	return true
}

// Current returns the event Next advanced to. Only valid after Next
// returned true.
func (s *Sequence) Current() dcb.SequencedEvent {
	return s.current
}

// Err returns the failure that aborted the sequence, if any. Events yielded
// before the failure remain valid.
func (s *Sequence) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *Sequence) isDone() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Close releases the sequence and its server stream. It unblocks a Next
// call waiting in subscribe mode. Close is idempotent and never interferes
// with an error already surfaced by Err.
func (s *Sequence) Close() error {
	s.terminate(nil)
	return nil
}

// All consumes the rest of the sequence into a slice and closes it.
// Not meant for subscribe reads without a limit, which never exhaust.
func (s *Sequence) All() (dcb.SequencedEvents, error) {
	defer s.terminate(nil)

	events := make(dcb.SequencedEvents, 0)
	for s.Next() {
		events = append(events, s.Current())
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Events adapts the sequence for range-over-func iteration. A failure is
// yielded once as the final pair; breaking out closes the sequence.
func (s *Sequence) Events() iter.Seq2[dcb.SequencedEvent, error] {
	return func(yield func(dcb.SequencedEvent, error) bool) {
		defer s.terminate(nil)

		for s.Next() {
			if !yield(s.current, nil) {
				return
			}
		}

		if err := s.Err(); err != nil {
			yield(dcb.SequencedEvent{}, err)
		}
	}
}

// terminate ends iteration exactly once, cancelling the stream and flushing
// observability for the whole read.
func (s *Sequence) terminate(seqErr error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}

	s.done = true
	s.err = seqErr
	yielded := s.yielded
	s.mu.Unlock()

	s.cancel()

	if s.client == nil {
		return
	}

	s.client.recordDuration(metricReadDuration, operationRead, time.Since(s.started))

	if seqErr != nil {
		s.client.countError(operationRead, errorKind(seqErr))
		s.client.logError(context.Background(), logMsgReadStreamFailed, logAttrError, seqErr.Error())
	} else {
		s.client.logDebug(context.Background(), logMsgReadCompleted, logAttrEventCount, yielded)
	}

	s.client.finishSpan(s.span, seqErr)
}
