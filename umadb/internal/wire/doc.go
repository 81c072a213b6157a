// Package wire defines the message types and method descriptors of the
// umadb.v1.EventStore gRPC service, plus the conversions between wire
// shapes and the dcb value types.
//
// The service is addressed by full method strings with a registered JSON
// codec, so no generated protobuf code is involved; both the client and
// the in-process memorystore server are built on these descriptors.
package wire
