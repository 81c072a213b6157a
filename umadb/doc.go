// Package umadb provides the client for the UmaDB event store: an
// append-only log of immutable events with tag-based querying and
// optimistic-concurrency-controlled appends.
//
// The client speaks the umadb.v1.EventStore gRPC service and exposes three
// operations: Read (forward/backward, bounded or as a live subscription),
// Head, and Append (atomic, optionally guarded by a dcb.AppendCondition).
// All failures are classified into the closed taxonomy of the dcb package
// before they reach the caller; transport error shapes never leak.
//
// Common usage pattern:
//
//	client, err := umadb.Connect("localhost:50051")
//	if err != nil {
//		// handle error
//	}
//	defer client.Close()
//
//	query := dcb.BuildEventQuery().
//		Matching().
//		AnyEventTypeOf("SeatReserved").
//		AndAllTagsOf("flight:LH454").
//		Finalize()
//
//	sequence, err := client.Read(ctx, &query)
//	if err != nil {
//		// handle error
//	}
//	defer sequence.Close()
//
//	var head uint64
//	for sequence.Next() {
//		head = sequence.Current().Position
//		// project state from sequence.Current().Event
//	}
//	if err := sequence.Err(); err != nil {
//		// handle error
//	}
//
//	condition := dcb.FailIfEventsMatch(query).After(head)
//	event := dcb.BuildEvent("SeatReserved", payload, "flight:LH454")
//
//	_, err = client.Append(ctx, dcb.Events{event}, &condition)
//	if errors.Is(err, dcb.ErrIntegrityConflict) {
//		// someone else got there first: re-read and decide again
//	}
//
// For tests, the umadb/memorystore package provides an in-process
// implementation of the same gRPC service.
package umadb
