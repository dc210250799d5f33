package grpc

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	clamav "github.com/DevHatRo/clamav-sdk-go"
)

// statusTable maps gRPC codes to SDK errors. Codes not listed become service errors.
var statusTable = map[codes.Code]func(msg string, err error) error{
	codes.InvalidArgument: func(msg string, err error) error {
		if clamav.MatchesFileTooLarge(msg) {
			return clamav.NewFileTooLargeError(msg, http.StatusRequestEntityTooLarge, err)
		}
		return clamav.NewBadRequestError(msg, http.StatusBadRequest, err)
	},
	codes.ResourceExhausted: func(msg string, err error) error {
		return clamav.NewFileTooLargeError(msg, http.StatusRequestEntityTooLarge, err)
	},
	codes.Internal: func(msg string, err error) error {
		return clamav.NewServiceUnavailableError(msg, http.StatusInternalServerError, err)
	},
	codes.DeadlineExceeded: func(msg string, err error) error {
		return clamav.NewTimeoutError(msg, err)
	},
	codes.Canceled: func(msg string, err error) error {
		return clamav.NewTimeoutError(msg, err)
	},
	codes.Unavailable: func(msg string, err error) error {
		return clamav.NewConnectionError(msg, err)
	},
}

// mapGRPCError converts a gRPC error to an SDK error type.
func mapGRPCError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return clamav.NewConnectionError("gRPC error", err)
	}

	if build, ok := statusTable[st.Code()]; ok {
		return build(st.Message(), err)
	}
	return clamav.NewServiceError(st.Message(), grpcCodeToHTTP(st.Code()), err)
}

// grpcCodeToHTTP maps gRPC status codes to HTTP-equivalent status codes
// so that StatusCode is consistent between the REST and gRPC clients.
func grpcCodeToHTTP(c codes.Code) int {
	switch c {
	case codes.OK:
		return 200
	case codes.InvalidArgument:
		return 400
	case codes.Unauthenticated:
		return 401
	case codes.PermissionDenied:
		return 403
	case codes.NotFound:
		return 404
	case codes.AlreadyExists:
		return 409
	case codes.ResourceExhausted:
		return 429
	case codes.Canceled:
		return 499
	case codes.Internal, codes.DataLoss, codes.Unknown:
		return 500
	case codes.Unimplemented:
		return 501
	case codes.Unavailable:
		return 503
	case codes.DeadlineExceeded:
		return 504
	default:
		return 500
	}
}
