package dcb

import (
	"slices"
)

type QueryEventTypeString = string
type QueryTagString = string

/***** Query *****/

// Query is a predicate over events, composed as OR of its items: an event
// matches the Query if it matches at least one QueryItem. A Query without
// items matches every event.
type Query struct {
	items []QueryItem
}

// BuildQuery creates a Query from the given items.
// Prefer BuildEventQuery for the fluent builder with input sanitization.
func BuildQuery(items ...QueryItem) Query {
	return Query{items: items}
}

func (q Query) Items() []QueryItem {
	return q.items
}

// Matches reports whether the event is selected by this query.
// It is a pure function of (event, query), evaluated identically to how the
// store evaluates append conditions and read filters.
func (q Query) Matches(event Event) bool {
	if len(q.items) == 0 {
		return true
	}

	for _, item := range q.items {
		if item.Matches(event) {
			return true
		}
	}

	return false
}

/***** QueryItem *****/

// QueryItem is one AND-branch of a Query: an event matches if its type is
// one of the item's types (empty types = any type) and every tag of the
// item is present on the event (empty tags = no tag constraint).
type QueryItem struct {
	types []QueryEventTypeString
	tags  []QueryTagString
}

// BuildQueryItem creates a QueryItem from the given types and tags.
//
// It sanitizes the input:
//   - removing empty strings ("")
//   - sorting
//   - removing duplicates
func BuildQueryItem(types []QueryEventTypeString, tags []QueryTagString) QueryItem {
	return QueryItem{
		types: sanitizeStrings(types),
		tags:  sanitizeStrings(tags),
	}
}

func (qi QueryItem) Types() []QueryEventTypeString {
	return qi.types
}

func (qi QueryItem) Tags() []QueryTagString {
	return qi.tags
}

// Matches reports whether the event satisfies this item. Type and tag
// comparison is byte-exact, no normalization. Duplicate tags are harmless:
// presence is tested, not count.
func (qi QueryItem) Matches(event Event) bool {
	if len(qi.types) > 0 && !slices.Contains(qi.types, event.EventType) {
		return false
	}

	for _, tag := range qi.tags {
		if !event.HasTag(tag) {
			return false
		}
	}

	return true
}

func sanitizeStrings(input []string) []string {
	sanitized := slices.Clone(input)
	sanitized = slices.DeleteFunc(
		sanitized,
		func(s string) bool {
			return s == ""
		})
	slices.Sort(sanitized)
	sanitized = slices.Compact(sanitized)
	sanitized = slices.Clip(sanitized)

	return sanitized
}

/***** QueryBuilder *****/

// QueryBuilder builds a Query which must eventually be finalized with
// Finalize() or MatchingAnyEvent().
// It is designed with the idea to only allow "useful" query combinations
// for event-sourced workflows:
//
//   - empty query (matches any event)
//   - (eventType)
//   - (eventType OR eventType...)
//   - (tag AND tag...)
//   - (eventType AND (tag AND tag...))
//   - ((eventType OR eventType...) AND (tag AND tag...))
//   - ((eventType AND tag) OR (eventType AND tag)...) -> multiple QueryItem(s)
type QueryBuilder interface {
	// Matching starts a new QueryItem.
	Matching() EmptyQueryItemBuilder

	// MatchingAnyEvent directly creates an empty Query which matches every event.
	MatchingAnyEvent() Query
}

type EmptyQueryItemBuilder interface {
	// AnyEventTypeOf adds one or multiple event types to the current QueryItem.
	//
	// It sanitizes the input:
	//	- removing empty event types ("")
	//	- sorting the event types
	//	- removing duplicate event types
	AnyEventTypeOf(eventType QueryEventTypeString, eventTypes ...QueryEventTypeString) QueryItemBuilderLackingTags

	// AllTagsOf adds one or multiple tags to the current QueryItem; an event
	// must carry ALL of them to match.
	//
	// It sanitizes the input:
	//	- removing empty tags ("")
	//	- sorting the tags
	//	- removing duplicate tags
	AllTagsOf(tag QueryTagString, tags ...QueryTagString) QueryItemBuilderLackingEventTypes
}

type QueryItemBuilderLackingTags interface {
	// AndAllTagsOf adds one or multiple tags to the current QueryItem; an
	// event must carry ALL of them to match.
	//
	// It sanitizes the input:
	//	- removing empty tags ("")
	//	- sorting the tags
	//	- removing duplicate tags
	AndAllTagsOf(tag QueryTagString, tags ...QueryTagString) CompletedQueryItemBuilder

	// OrMatching finalizes the current QueryItem and starts a new one.
	OrMatching() EmptyQueryItemBuilder

	// Finalize returns the Query once it has at least one QueryItem with at
	// least one event type OR one tag.
	Finalize() Query
}

type QueryItemBuilderLackingEventTypes interface {
	// AndAnyEventTypeOf adds one or multiple event types to the current QueryItem.
	//
	// It sanitizes the input:
	//	- removing empty event types ("")
	//	- sorting the event types
	//	- removing duplicate event types
	AndAnyEventTypeOf(eventType QueryEventTypeString, eventTypes ...QueryEventTypeString) CompletedQueryItemBuilder

	// OrMatching finalizes the current QueryItem and starts a new one.
	OrMatching() EmptyQueryItemBuilder

	// Finalize returns the Query once it has at least one QueryItem with at
	// least one event type OR one tag.
	Finalize() Query
}

type CompletedQueryItemBuilder interface {
	// OrMatching finalizes the current QueryItem and starts a new one.
	OrMatching() EmptyQueryItemBuilder

	// Finalize returns the Query once it has at least one QueryItem with at
	// least one event type OR one tag.
	Finalize() Query
}

// queryBuilder implements all the interfaces of QueryBuilder
type queryBuilder struct {
	query            Query
	currentQueryItem QueryItem
}

// BuildEventQuery creates a QueryBuilder which must eventually be finalized
// with Finalize() or MatchingAnyEvent().
func BuildEventQuery() QueryBuilder {
	return queryBuilder{}
}

// Matching starts a new QueryItem.
func (qb queryBuilder) Matching() EmptyQueryItemBuilder {
	qb.currentQueryItem = QueryItem{}

	return qb
}

// AnyEventTypeOf adds one or multiple event types to the current QueryItem
// expecting ANY of them to match.
//
// It sanitizes the input:
//   - removing empty event types ("")
//   - sorting the event types
//   - removing duplicate event types
func (qb queryBuilder) AnyEventTypeOf(
	eventType QueryEventTypeString,
	eventTypes ...QueryEventTypeString,
) QueryItemBuilderLackingTags {

	qb.currentQueryItem.types = append(
		qb.currentQueryItem.types,
		sanitizeStrings(append([]QueryEventTypeString{eventType}, eventTypes...))...,
	)

	return qb
}

// AndAnyEventTypeOf adds one or multiple event types to the current QueryItem
// expecting ANY of them to match.
//
// It sanitizes the input:
//   - removing empty event types ("")
//   - sorting the event types
//   - removing duplicate event types
func (qb queryBuilder) AndAnyEventTypeOf(
	eventType QueryEventTypeString,
	eventTypes ...QueryEventTypeString,
) CompletedQueryItemBuilder {

	return qb.AnyEventTypeOf(eventType, eventTypes...)
}

// AllTagsOf adds one or multiple tags to the current QueryItem expecting ALL
// of them to be present on a matching event.
//
// It sanitizes the input:
//   - removing empty tags ("")
//   - sorting the tags
//   - removing duplicate tags
func (qb queryBuilder) AllTagsOf(
	tag QueryTagString,
	tags ...QueryTagString,
) QueryItemBuilderLackingEventTypes {

	qb.currentQueryItem.tags = append(
		qb.currentQueryItem.tags,
		sanitizeStrings(append([]QueryTagString{tag}, tags...))...,
	)

	return qb
}

// AndAllTagsOf adds one or multiple tags to the current QueryItem expecting
// ALL of them to be present on a matching event.
//
// It sanitizes the input:
//   - removing empty tags ("")
//   - sorting the tags
//   - removing duplicate tags
func (qb queryBuilder) AndAllTagsOf(
	tag QueryTagString,
	tags ...QueryTagString,
) CompletedQueryItemBuilder {

	return qb.AllTagsOf(tag, tags...)
}

// OrMatching finalizes the current QueryItem and starts a new one.
func (qb queryBuilder) OrMatching() EmptyQueryItemBuilder {
	qb.query.items = append(qb.query.items, qb.currentQueryItem)
	qb.currentQueryItem = QueryItem{}

	return qb
}

// MatchingAnyEvent directly creates an empty Query which matches every event.
func (qb queryBuilder) MatchingAnyEvent() Query {
	return qb.query
}

// Finalize returns the Query once it has at least one QueryItem with at least
// one event type OR one tag.
func (qb queryBuilder) Finalize() Query {
	qb.query.items = append(qb.query.items, qb.currentQueryItem)

	return qb.query
}
