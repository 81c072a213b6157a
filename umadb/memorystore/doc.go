// Package memorystore provides an in-process, in-memory implementation of
// the umadb.v1.EventStore gRPC service.
//
// It enforces the same semantics as a real UmaDB server: atomic conditional
// appends with an exclusive after-boundary, UUID idempotency, strictly
// increasing positions starting at 1, forward/backward bounded reads, and
// live subscriptions. It is meant as a test double for code built on the
// umadb client, typically served over a bufconn listener:
//
//	lis := bufconn.Listen(1 << 20)
//	server := grpc.NewServer()
//	memorystore.NewServer(memorystore.New()).Register(server)
//	go server.Serve(lis)
//
// Nothing is persisted; the log lives and dies with the Store.
package memorystore
