package wire

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"

	"github.com/umadb-io/umadb-client-go/dcb"
)

// ServiceName is the full gRPC service name of the event store.
const ServiceName = "umadb.v1.EventStore"

// Full method strings for the three RPCs.
const (
	MethodHead   = "/" + ServiceName + "/Head"
	MethodAppend = "/" + ServiceName + "/Append"
	MethodRead   = "/" + ServiceName + "/Read"
)

// ReadStreamDesc describes the server-streaming Read RPC for client-side
// stream creation.
var ReadStreamDesc = grpc.StreamDesc{
	StreamName:    "Read",
	ServerStreams: true,
}

var errMissingEventType = errors.New("event envelope lacks an event type")

/***** Messages *****/

type Event struct {
	Type string   `json:"type"`
	Data []byte   `json:"data,omitempty"`
	Tags []string `json:"tags,omitempty"`
	UUID string   `json:"uuid,omitempty"`
}

type SequencedEvent struct {
	Position uint64 `json:"position"`
	Event    Event  `json:"event"`
}

type QueryItem struct {
	Types []string `json:"types,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type Query struct {
	Items []QueryItem `json:"items,omitempty"`
}

type AppendCondition struct {
	FailIfEventsMatch Query   `json:"fail_if_events_match"`
	After             *uint64 `json:"after,omitempty"`
}

type HeadRequest struct{}

type HeadResponse struct {
	Head *uint64 `json:"head,omitempty"`
}

type AppendRequest struct {
	Events    []Event          `json:"events"`
	Condition *AppendCondition `json:"condition,omitempty"`
}

type AppendResponse struct {
	Position uint64 `json:"position"`
}

type ReadRequest struct {
	Query     *Query  `json:"query,omitempty"`
	Start     *uint64 `json:"start,omitempty"`
	Backwards bool    `json:"backwards,omitempty"`
	Limit     *uint32 `json:"limit,omitempty"`
	Subscribe bool    `json:"subscribe,omitempty"`
	BatchSize uint32  `json:"batch_size,omitempty"`
}

type ReadResponse struct {
	Events []SequencedEvent `json:"events,omitempty"`
}

/***** Conversions *****/

// EventFromDomain converts a dcb.Event to its wire shape.
func EventFromDomain(event dcb.Event) Event {
	return Event{
		Type: event.EventType,
		Data: event.Data,
		Tags: event.Tags,
		UUID: event.UUID,
	}
}

// EventsFromDomain converts a batch of dcb.Event(s) to their wire shape.
func EventsFromDomain(events dcb.Events) []Event {
	wireEvents := make([]Event, len(events))
	for i, event := range events {
		wireEvents[i] = EventFromDomain(event)
	}

	return wireEvents
}

// ToDomain converts a wire event back to a dcb.Event, validating the
// envelope. A malformed envelope coming off the wire is a corruption, not
// a validation error: the client never constructed it.
func (e Event) ToDomain() (dcb.Event, error) {
	if e.Type == "" {
		return dcb.Event{}, errors.Join(dcb.ErrCorruptedData, errMissingEventType)
	}

	event := dcb.Event{
		EventType: e.Type,
		Data:      e.Data,
		Tags:      e.Tags,
	}

	if e.UUID != "" {
		parsed, parseErr := uuid.Parse(e.UUID)
		if parseErr != nil {
			return dcb.Event{}, errors.Join(
				dcb.ErrCorruptedData,
				fmt.Errorf("event envelope carries a malformed uuid %q", e.UUID),
				parseErr,
			)
		}

		event.UUID = parsed.String()
	}

	return event, nil
}

// ToDomain converts a wire sequenced event back to a dcb.SequencedEvent.
func (se SequencedEvent) ToDomain() (dcb.SequencedEvent, error) {
	event, convErr := se.Event.ToDomain()
	if convErr != nil {
		return dcb.SequencedEvent{}, convErr
	}

	return dcb.SequencedEvent{Event: event, Position: se.Position}, nil
}

// QueryFromDomain converts a dcb.Query to its wire shape.
func QueryFromDomain(query dcb.Query) Query {
	items := make([]QueryItem, len(query.Items()))
	for i, item := range query.Items() {
		items[i] = QueryItem{
			Types: item.Types(),
			Tags:  item.Tags(),
		}
	}

	return Query{Items: items}
}

// ToDomain converts a wire query back to a dcb.Query.
func (q Query) ToDomain() dcb.Query {
	items := make([]dcb.QueryItem, len(q.Items))
	for i, item := range q.Items {
		items[i] = dcb.BuildQueryItem(item.Types, item.Tags)
	}

	return dcb.BuildQuery(items...)
}

// ConditionFromDomain converts an optional dcb.AppendCondition to its wire
// shape, preserving the presence of the after boundary.
func ConditionFromDomain(condition *dcb.AppendCondition) *AppendCondition {
	if condition == nil {
		return nil
	}

	wireCondition := &AppendCondition{
		FailIfEventsMatch: QueryFromDomain(condition.Query()),
	}

	if after, ok := condition.AfterPosition(); ok {
		wireCondition.After = &after
	}

	return wireCondition
}

// ToDomain converts a wire condition back to a dcb.AppendCondition.
func (c AppendCondition) ToDomain() dcb.AppendCondition {
	condition := dcb.FailIfEventsMatch(c.FailIfEventsMatch.ToDomain())
	if c.After != nil {
		condition = condition.After(*c.After)
	}

	return condition
}
