package umadb

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/umadb-io/umadb-client-go/dcb"
)

// translateRPCError classifies a store-reported gRPC error into the closed
// dcb taxonomy. The raw error stays joined underneath for diagnostics, but
// callers classify with errors.Is against the dcb sentinels only.
func translateRPCError(rpcErr error) error {
	if rpcErr == nil {
		return nil
	}

	if errors.Is(rpcErr, dcb.ErrCorruptedData) {
		return rpcErr
	}

	st, ok := status.FromError(rpcErr)
	if !ok {
		return errors.Join(dcb.ErrTransportFailed, rpcErr)
	}

	switch st.Code() {
	case codes.FailedPrecondition, codes.AlreadyExists:
		return errors.Join(dcb.ErrIntegrityConflict, rpcErr)
	case codes.InvalidArgument, codes.OutOfRange:
		return errors.Join(dcb.ErrInvalidInput, rpcErr)
	case codes.DataLoss:
		return errors.Join(dcb.ErrCorruptedData, rpcErr)
	default:
		return errors.Join(dcb.ErrTransportFailed, rpcErr)
	}
}

// errorKind labels a translated error for metrics.
func errorKind(translatedErr error) string {
	switch {
	case errors.Is(translatedErr, dcb.ErrIntegrityConflict):
		return "integrity"
	case errors.Is(translatedErr, dcb.ErrCorruptedData):
		return "corruption"
	case errors.Is(translatedErr, dcb.ErrInvalidInput):
		return "validation"
	case errors.Is(translatedErr, dcb.ErrIOFailure):
		return "io"
	default:
		return "transport"
	}
}
