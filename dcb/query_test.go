package dcb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/umadb-io/umadb-client-go/dcb"
)

//nolint:funlen
func Test_Query_Matching(t *testing.T) {
	tests := []struct {
		name    string
		query   dcb.Query
		event   dcb.Event
		matches bool
	}{
		{
			name:    "empty_query_matches_any_event",
			query:   dcb.BuildQuery(),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: true,
		},
		{
			name:    "empty_query_matches_event_without_tags",
			query:   dcb.BuildQuery(),
			event:   dcb.BuildEvent("SeatReserved", nil),
			matches: true,
		},
		{
			name:    "type_only_item_matches_same_type",
			query:   dcb.BuildQuery(dcb.BuildQueryItem([]string{"SeatReserved"}, nil)),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: true,
		},
		{
			name:    "type_only_item_rejects_other_type",
			query:   dcb.BuildQuery(dcb.BuildQueryItem([]string{"SeatReserved"}, nil)),
			event:   dcb.BuildEvent("SeatReleased", nil, "flight:LH454"),
			matches: false,
		},
		{
			name:    "type_matching_is_case_sensitive",
			query:   dcb.BuildQuery(dcb.BuildQueryItem([]string{"seatreserved"}, nil)),
			event:   dcb.BuildEvent("SeatReserved", nil),
			matches: false,
		},
		{
			name:    "multiple_types_in_item_are_or",
			query:   dcb.BuildQuery(dcb.BuildQueryItem([]string{"SeatReserved", "SeatReleased"}, nil)),
			event:   dcb.BuildEvent("SeatReleased", nil),
			matches: true,
		},
		{
			name:    "empty_types_is_type_wildcard",
			query:   dcb.BuildQuery(dcb.BuildQueryItem(nil, []string{"flight:LH454"})),
			event:   dcb.BuildEvent("AnythingAtAll", nil, "flight:LH454"),
			matches: true,
		},
		{
			name:    "all_item_tags_must_be_present",
			query:   dcb.BuildQuery(dcb.BuildQueryItem(nil, []string{"flight:LH454", "seat:12A"})),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: false,
		},
		{
			name:    "subset_of_event_tags_is_enough",
			query:   dcb.BuildQuery(dcb.BuildQueryItem(nil, []string{"flight:LH454"})),
			event:   dcb.BuildEvent("SeatReserved", nil, "seat:12A", "flight:LH454", "leg:1"),
			matches: true,
		},
		{
			name:    "tag_matching_is_case_sensitive",
			query:   dcb.BuildQuery(dcb.BuildQueryItem(nil, []string{"FLIGHT:LH454"})),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: false,
		},
		{
			name:    "event_without_tags_fails_tag_constraint",
			query:   dcb.BuildQuery(dcb.BuildQueryItem(nil, []string{"flight:LH454"})),
			event:   dcb.BuildEvent("SeatReserved", nil),
			matches: false,
		},
		{
			name:    "event_without_tags_matches_item_without_tags",
			query:   dcb.BuildQuery(dcb.BuildQueryItem([]string{"SeatReserved"}, nil)),
			event:   dcb.BuildEvent("SeatReserved", nil),
			matches: true,
		},
		{
			name: "items_are_or_second_item_matches",
			query: dcb.BuildQuery(
				dcb.BuildQueryItem([]string{"SeatReleased"}, nil),
				dcb.BuildQueryItem([]string{"SeatReserved"}, []string{"flight:LH454"}),
			),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: true,
		},
		{
			name: "items_are_or_no_item_matches",
			query: dcb.BuildQuery(
				dcb.BuildQueryItem([]string{"SeatReleased"}, nil),
				dcb.BuildQueryItem([]string{"SeatReserved"}, []string{"flight:LH999"}),
			),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: false,
		},
		{
			name:    "type_and_tags_must_both_hold_within_item",
			query:   dcb.BuildQuery(dcb.BuildQueryItem([]string{"SeatReleased"}, []string{"flight:LH454"})),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454"),
			matches: false,
		},
		{
			name:    "duplicate_event_tags_are_harmless",
			query:   dcb.BuildQuery(dcb.BuildQueryItem(nil, []string{"flight:LH454"})),
			event:   dcb.BuildEvent("SeatReserved", nil, "flight:LH454", "flight:LH454"),
			matches: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.query.Matches(tt.event))

			// OR across items is order-independent
			reversed := make([]dcb.QueryItem, 0, len(tt.query.Items()))
			for i := len(tt.query.Items()) - 1; i >= 0; i-- {
				reversed = append(reversed, tt.query.Items()[i])
			}
			assert.Equal(t, tt.matches, dcb.BuildQuery(reversed...).Matches(tt.event))
		})
	}
}

func Test_QueryItem_TagOrderIsIrrelevant(t *testing.T) {
	event := dcb.BuildEvent("SeatReserved", nil, "seat:12A", "flight:LH454")

	straight := dcb.BuildQueryItem(nil, []string{"flight:LH454", "seat:12A"})
	shuffled := dcb.BuildQueryItem(nil, []string{"seat:12A", "flight:LH454"})

	assert.True(t, straight.Matches(event))
	assert.True(t, shuffled.Matches(event))
}

func Test_BuildQueryItem_SanitizesInput(t *testing.T) {
	item := dcb.BuildQueryItem(
		[]string{"SeatReserved", "", "SeatReleased", "SeatReserved"},
		[]string{"flight:LH454", "flight:LH454", ""},
	)

	assert.Equal(t, []string{"SeatReleased", "SeatReserved"}, item.Types())
	assert.Equal(t, []string{"flight:LH454"}, item.Tags())
}

//nolint:funlen
func Test_QueryBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() dcb.Query
		validate func(t *testing.T, query dcb.Query)
	}{
		{
			name: "matching_any_event_creates_empty_query",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().MatchingAnyEvent()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Empty(t, q.Items())
				assert.True(t, q.Matches(dcb.BuildEvent("Whatever", nil)))
			},
		},
		{
			name: "single_event_type_query",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().
					Matching().
					AnyEventTypeOf("SeatReserved").
					Finalize()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Len(t, q.Items(), 1)
				assert.Equal(t, []string{"SeatReserved"}, q.Items()[0].Types())
				assert.Empty(t, q.Items()[0].Tags())
			},
		},
		{
			name: "multiple_event_types_are_sorted_and_deduplicated",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().
					Matching().
					AnyEventTypeOf("SeatReserved", "SeatReleased", "SeatReserved", "").
					Finalize()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Len(t, q.Items(), 1)
				assert.Equal(t, []string{"SeatReleased", "SeatReserved"}, q.Items()[0].Types())
			},
		},
		{
			name: "tags_only_query",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().
					Matching().
					AllTagsOf("flight:LH454", "seat:12A").
					Finalize()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Len(t, q.Items(), 1)
				assert.Empty(t, q.Items()[0].Types())
				assert.Equal(t, []string{"flight:LH454", "seat:12A"}, q.Items()[0].Tags())
			},
		},
		{
			name: "event_types_and_tags_query",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().
					Matching().
					AnyEventTypeOf("SeatReserved").
					AndAllTagsOf("flight:LH454").
					Finalize()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Len(t, q.Items(), 1)
				assert.Equal(t, []string{"SeatReserved"}, q.Items()[0].Types())
				assert.Equal(t, []string{"flight:LH454"}, q.Items()[0].Tags())
			},
		},
		{
			name: "tags_then_event_types_query",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().
					Matching().
					AllTagsOf("flight:LH454").
					AndAnyEventTypeOf("SeatReserved", "SeatReleased").
					Finalize()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Len(t, q.Items(), 1)
				assert.Equal(t, []string{"SeatReleased", "SeatReserved"}, q.Items()[0].Types())
				assert.Equal(t, []string{"flight:LH454"}, q.Items()[0].Tags())
			},
		},
		{
			name: "multiple_items_via_or_matching",
			build: func() dcb.Query {
				return dcb.BuildEventQuery().
					Matching().
					AnyEventTypeOf("SeatReserved").
					AndAllTagsOf("flight:LH454").
					OrMatching().
					AnyEventTypeOf("FlightCancelled").
					Finalize()
			},
			validate: func(t *testing.T, q dcb.Query) {
				assert.Len(t, q.Items(), 2)
				assert.Equal(t, []string{"SeatReserved"}, q.Items()[0].Types())
				assert.Equal(t, []string{"flight:LH454"}, q.Items()[0].Tags())
				assert.Equal(t, []string{"FlightCancelled"}, q.Items()[1].Types())
				assert.Empty(t, q.Items()[1].Tags())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}
