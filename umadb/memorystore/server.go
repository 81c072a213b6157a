package memorystore

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/umadb-io/umadb-client-go/dcb"
	"github.com/umadb-io/umadb-client-go/umadb/internal/wire"
)

const defaultReadBatchSize uint32 = 256

// Server exposes a Store over the umadb.v1.EventStore gRPC service.
type Server struct {
	store *Store
}

// NewServer creates a Server on top of the given Store.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

// Register registers the event store service on a gRPC registrar.
func (s *Server) Register(registrar grpc.ServiceRegistrar) {
	registrar.RegisterService(&serviceDesc, s)
}

// eventStoreHandler pins the handler shape checked by gRPC on registration.
type eventStoreHandler interface {
	head(ctx context.Context, request *wire.HeadRequest) (*wire.HeadResponse, error)
	appendEvents(ctx context.Context, request *wire.AppendRequest) (*wire.AppendResponse, error)
	read(request *wire.ReadRequest, stream grpc.ServerStream) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: wire.ServiceName,
	HandlerType: (*eventStoreHandler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Head", Handler: handleHeadRPC},
		{MethodName: "Append", Handler: handleAppendRPC},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Read", Handler: handleReadRPC, ServerStreams: true},
	},
	Metadata: "umadb/v1/event_store.proto",
}

func handleHeadRPC(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	request := new(wire.HeadRequest)
	if err := dec(request); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(*Server).head(ctx, request)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.MethodHead}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).head(ctx, req.(*wire.HeadRequest))
	}

	return interceptor(ctx, request, info, handler)
}

func handleAppendRPC(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	request := new(wire.AppendRequest)
	if err := dec(request); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(*Server).appendEvents(ctx, request)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.MethodAppend}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).appendEvents(ctx, req.(*wire.AppendRequest))
	}

	return interceptor(ctx, request, info, handler)
}

func handleReadRPC(srv any, stream grpc.ServerStream) error {
	request := new(wire.ReadRequest)
	if err := stream.RecvMsg(request); err != nil {
		return err
	}

	return srv.(*Server).read(request, stream)
}

func (s *Server) head(_ context.Context, _ *wire.HeadRequest) (*wire.HeadResponse, error) {
	position, ok := s.store.Head()
	if !ok {
		return &wire.HeadResponse{}, nil
	}

	return &wire.HeadResponse{Head: &position}, nil
}

func (s *Server) appendEvents(_ context.Context, request *wire.AppendRequest) (*wire.AppendResponse, error) {
	events := make(dcb.Events, 0, len(request.Events))

	for _, wireEvent := range request.Events {
		event, convErr := wireEvent.ToDomain()
		if convErr != nil {
			return nil, status.Error(codes.InvalidArgument, convErr.Error())
		}

		events = append(events, event)
	}

	var condition *dcb.AppendCondition
	if request.Condition != nil {
		converted := request.Condition.ToDomain()
		condition = &converted
	}

	position, appendErr := s.store.Append(events, condition)
	if appendErr != nil {
		return nil, statusFromStoreError(appendErr)
	}

	return &wire.AppendResponse{Position: position}, nil
}

func (s *Server) read(request *wire.ReadRequest, stream grpc.ServerStream) error {
	if request.Subscribe && request.Backwards {
		return status.Error(codes.InvalidArgument, dcb.ErrSubscribeBackwards.Error())
	}

	query := dcb.BuildQuery()
	if request.Query != nil {
		query = request.Query.ToDomain()
	}

	batchSize := request.BatchSize
	if batchSize == 0 {
		batchSize = defaultReadBatchSize
	}

	var remaining *uint32
	if request.Limit != nil {
		limit := *request.Limit
		remaining = &limit
	}

	durable := s.store.Read(query, request.Start, request.Backwards, remaining)
	if sendErr := streamInBatches(stream, durable, batchSize); sendErr != nil {
		return sendErr
	}

	if remaining != nil {
		*remaining -= uint32(len(durable))
	}

	if !request.Subscribe {
		return nil
	}

	if remaining != nil && *remaining == 0 {
		return nil
	}

	lastPosition := uint64(0)
	if request.Start != nil && *request.Start > 0 {
		lastPosition = *request.Start - 1
	}
	if len(durable) > 0 {
		lastPosition = durable[len(durable)-1].Position
	}

	ctx := stream.Context()

	for {
		// grab the notification channel before scanning, appends in the
		// window between scan and wait would otherwise be lost
		changed := s.store.Changed()

		tailCap := uint32(0)
		if remaining != nil {
			tailCap = *remaining
		}

		fresh := s.store.ReadAfter(lastPosition, query, tailCap)
		if len(fresh) > 0 {
			if sendErr := streamInBatches(stream, fresh, batchSize); sendErr != nil {
				return sendErr
			}

			lastPosition = fresh[len(fresh)-1].Position

			if remaining != nil {
				*remaining -= uint32(len(fresh))
				if *remaining == 0 {
					return nil
				}
			}

			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

func streamInBatches(stream grpc.ServerStream, events dcb.SequencedEvents, batchSize uint32) error {
	for offset := 0; offset < len(events); offset += int(batchSize) {
		end := min(offset+int(batchSize), len(events))

		batch := make([]wire.SequencedEvent, 0, end-offset)
		for _, sequenced := range events[offset:end] {
			batch = append(batch, wire.SequencedEvent{
				Position: sequenced.Position,
				Event:    wire.EventFromDomain(sequenced.Event),
			})
		}

		if sendErr := stream.SendMsg(&wire.ReadResponse{Events: batch}); sendErr != nil {
			return sendErr
		}
	}

	return nil
}

func statusFromStoreError(storeErr error) error {
	switch {
	case errors.Is(storeErr, ErrDuplicateUUID):
		return status.Error(codes.AlreadyExists, storeErr.Error())
	case errors.Is(storeErr, dcb.ErrIntegrityConflict):
		return status.Error(codes.FailedPrecondition, storeErr.Error())
	case errors.Is(storeErr, dcb.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, storeErr.Error())
	default:
		return status.Error(codes.Internal, storeErr.Error())
	}
}
