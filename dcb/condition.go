package dcb

import (
	"fmt"
)

// AppendCondition is the optimistic-concurrency primitive for appends: the
// store rejects an append if any already-durable event with a position
// strictly greater than the boundary position matches the condition's query.
//
// Callers typically read up to some head position, make their business
// decision, and then assert "nothing matching my boundary query has
// appeared since that position":
//
//	condition := dcb.FailIfEventsMatch(query).After(head)
//
// Without After the condition covers the whole log.
type AppendCondition struct {
	failIfEventsMatch Query
	after             *uint64
}

// FailIfEventsMatch creates an AppendCondition covering the whole log.
// Note that an empty query matches every event, so a condition built from
// it fails the append as soon as any event exists past the boundary.
func FailIfEventsMatch(query Query) AppendCondition {
	return AppendCondition{failIfEventsMatch: query}
}

// After returns a copy of the condition with the boundary position set.
// The boundary is exclusive: events AT the position do not count, only
// strictly greater ones. 0 is a legal boundary, distinct from absent.
func (c AppendCondition) After(position uint64) AppendCondition {
	c.after = &position

	return c
}

func (c AppendCondition) Query() Query {
	return c.failIfEventsMatch
}

// AfterPosition returns the boundary position and whether one is set.
func (c AppendCondition) AfterPosition() (uint64, bool) {
	if c.after == nil {
		return 0, false
	}

	return *c.after, true
}

// FailsOn reports whether a durable event at the given position violates
// the condition. This is the exact predicate the store evaluates atomically
// with the append.
func (c AppendCondition) FailsOn(event Event, position uint64) bool {
	if c.after != nil && position <= *c.after {
		return false
	}

	return c.failIfEventsMatch.Matches(event)
}

func (c AppendCondition) String() string {
	if c.after == nil {
		return fmt.Sprintf("AppendCondition(items=%d)", len(c.failIfEventsMatch.items))
	}

	return fmt.Sprintf("AppendCondition(items=%d, after=%d)", len(c.failIfEventsMatch.items), *c.after)
}
