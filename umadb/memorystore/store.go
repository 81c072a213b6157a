package memorystore

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/umadb-io/umadb-client-go/dcb"
)

// ErrDuplicateUUID signals that an event with the same idempotency UUID is
// already durable, or appears twice in one batch.
var ErrDuplicateUUID = errors.New("an event with the same uuid is already stored")

// Store is an in-memory append-only event log with DCB semantics.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	log     dcb.SequencedEvents
	uuids   map[string]struct{}
	changed chan struct{}
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		uuids:   make(map[string]struct{}),
		changed: make(chan struct{}),
	}
}

// Head returns the position of the most recent durable event; ok is false
// for an empty store.
func (s *Store) Head() (position uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.log) == 0 {
		return 0, false
	}

	return s.log[len(s.log)-1].Position, true
}

// Append atomically appends the batch, assigning contiguous positions, and
// returns the new head position. The condition, when present, is evaluated
// under the same lock as the write: if any durable event with a position
// strictly greater than the condition's boundary matches its query, nothing
// is written and dcb.ErrIntegrityConflict is returned. A duplicate UUID
// rejects the whole batch with ErrDuplicateUUID.
func (s *Store) Append(events dcb.Events, condition *dcb.AppendCondition) (uint64, error) {
	if len(events) == 0 {
		return 0, errors.Join(dcb.ErrInvalidInput, dcb.ErrEmptyEventBatch)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if condition != nil {
		for _, durable := range s.log {
			if condition.FailsOn(durable.Event, durable.Position) {
				return 0, errors.Join(
					dcb.ErrIntegrityConflict,
					fmt.Errorf("condition matched durable event at position %d", durable.Position),
				)
			}
		}
	}

	// all-or-nothing: every check happens before the first write
	batchUUIDs := make(map[string]struct{}, len(events))
	for _, event := range events {
		if !event.HasUUID() {
			continue
		}

		if _, exists := s.uuids[event.UUID]; exists {
			return 0, errors.Join(ErrDuplicateUUID, fmt.Errorf("uuid %s", event.UUID))
		}

		if _, dup := batchUUIDs[event.UUID]; dup {
			return 0, errors.Join(ErrDuplicateUUID, fmt.Errorf("uuid %s appears twice in the batch", event.UUID))
		}

		batchUUIDs[event.UUID] = struct{}{}
	}

	position := uint64(0)
	if len(s.log) > 0 {
		position = s.log[len(s.log)-1].Position
	}

	for _, event := range events {
		position++
		s.log = append(s.log, dcb.SequencedEvent{Event: event, Position: position})

		if event.HasUUID() {
			s.uuids[event.UUID] = struct{}{}
		}
	}

	close(s.changed)
	s.changed = make(chan struct{})

	return position, nil
}

// Read returns the currently-durable events matching the query, in position
// order (decreasing when backwards), bounded by the optional start position
// and limit. The result is a snapshot; later appends do not show up in it.
func (s *Store) Read(query dcb.Query, start *uint64, backwards bool, limit *uint32) dcb.SequencedEvents {
	s.mu.Lock()
	snapshot := slices.Clone(s.log)
	s.mu.Unlock()

	selected := make(dcb.SequencedEvents, 0)

	if backwards {
		for i := len(snapshot) - 1; i >= 0; i-- {
			if limit != nil && len(selected) >= int(*limit) {
				break
			}

			sequenced := snapshot[i]
			if start != nil && sequenced.Position > *start {
				continue
			}

			if query.Matches(sequenced.Event) {
				selected = append(selected, sequenced)
			}
		}

		return selected
	}

	for _, sequenced := range snapshot {
		if limit != nil && len(selected) >= int(*limit) {
			break
		}

		if start != nil && sequenced.Position < *start {
			continue
		}

		if query.Matches(sequenced.Event) {
			selected = append(selected, sequenced)
		}
	}

	return selected
}

// ReadAfter returns matching events with a position strictly greater than
// the given one, up to max events (0 = no cap). Used for subscription tails.
func (s *Store) ReadAfter(position uint64, query dcb.Query, max uint32) dcb.SequencedEvents {
	s.mu.Lock()
	snapshot := slices.Clone(s.log)
	s.mu.Unlock()

	selected := make(dcb.SequencedEvents, 0)

	for _, sequenced := range snapshot {
		if max > 0 && len(selected) >= int(max) {
			break
		}

		if sequenced.Position <= position {
			continue
		}

		if query.Matches(sequenced.Event) {
			selected = append(selected, sequenced)
		}
	}

	return selected
}

// Changed returns a channel that is closed on the next append. Grab it
// before scanning for new events to avoid losing a notification.
func (s *Store) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.changed
}
