// Package dcb provides the core value types for the UmaDB dynamic
// consistency boundary (DCB) event model.
//
// This package defines events, queries, and append conditions together
// with the pure matching predicate that decides which events a query
// selects. The matching rule is a flat OR of ANDs:
//
//   - an event matches a QueryItem if its type is one of the item's types
//     (or the item has no types) AND every tag of the item is present on
//     the event
//   - an event matches a Query if it matches at least one of its items;
//     a Query without items matches every event
//
// Key types:
//   - Event: an immutable domain event with tags and an optional UUID
//   - SequencedEvent: an Event together with its store-assigned position
//   - QueryItem / Query: the predicate language over types and tags
//   - AppendCondition: the optimistic-concurrency primitive for appends
//
// Common usage pattern:
//
//	query := dcb.BuildEventQuery().
//		Matching().
//		AnyEventTypeOf("CourseRegistered", "CourseCancelled").
//		AndAllTagsOf("course:math-101").
//		Finalize()
//
//	condition := dcb.FailIfEventsMatch(query).After(head)
//
//	event := dcb.BuildEvent("CourseRegistered", payload, "course:math-101")
//	position, err := client.Append(ctx, dcb.Events{event}, &condition)
package dcb
