package dcb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Events is an alias type for a slice of Event.
type Events = []Event

// SequencedEvents is an alias type for a slice of SequencedEvent.
type SequencedEvents = []SequencedEvent

// Event is an immutable domain event to be appended to the event store and
// queried back by type and tags.
//
// It is built on scalars to be completely agnostic of the implementation of
// domain events in the client code. Data is an opaque byte sequence; the
// store never interprets it.
//
// While its properties are exported, it should only be constructed with the
// supplied factory methods:
//   - BuildEvent
//   - BuildEventWithUUID
type Event struct {
	EventType string
	Data      []byte
	Tags      []string
	UUID      string
}

// BuildEvent is a factory method for Event without an idempotency UUID.
//
// Tags are kept in the given order for deterministic round-trips; matching
// treats them as a set.
func BuildEvent(eventType string, data []byte, tags ...string) Event {
	return Event{
		EventType: eventType,
		Data:      data,
		Tags:      tags,
	}
}

// BuildEventWithUUID is a factory method for Event carrying an idempotency
// UUID.
//
// The id must parse as a 128-bit UUID; it is canonicalized to its standard
// textual form. An invalid id fails here, never later at append time.
func BuildEventWithUUID(id string, eventType string, data []byte, tags ...string) (Event, error) {
	parsed, parseErr := uuid.Parse(id)
	if parseErr != nil {
		return Event{}, errors.Join(ErrInvalidInput, ErrInvalidUUID, parseErr)
	}

	return Event{
		EventType: eventType,
		Data:      data,
		Tags:      tags,
		UUID:      parsed.String(),
	}, nil
}

// HasUUID reports whether an idempotency UUID is present.
// The empty string is never a valid UUID, so it unambiguously means absent.
func (e Event) HasUUID() bool {
	return e.UUID != ""
}

// HasTag reports whether the given tag is present on the event.
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}

	return false
}

func (e Event) String() string {
	if e.UUID == "" {
		return fmt.Sprintf("Event(type=%s, tags=[%s])", e.EventType, strings.Join(e.Tags, ", "))
	}

	return fmt.Sprintf("Event(type=%s, tags=[%s], uuid=%s)", e.EventType, strings.Join(e.Tags, ", "), e.UUID)
}

// SequencedEvent is an Event annotated with its durable position once read
// back from the store.
//
// Positions are assigned only by the store, strictly increasing and unique
// per store instance; client code never fabricates them.
type SequencedEvent struct {
	Event    Event
	Position uint64
}

func (se SequencedEvent) String() string {
	return fmt.Sprintf("SequencedEvent(position=%d, event=%s)", se.Position, se.Event)
}
