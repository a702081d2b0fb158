package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const invalidLinkMessage = "this link is invalid"

// toStatus maps a service error to a gRPC status. Internal details are
// logged, never returned.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidAssertion), errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenAlreadyUsed):
		return status.Error(codes.FailedPrecondition, invalidLinkMessage)
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, common.ErrAccountConflict):
		return status.Error(codes.AlreadyExists, "account conflict")
	case errors.Is(err, common.ErrCleanupInProgress):
		return status.Error(codes.Aborted, "cleanup already in progress")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Warn(ctx, op+" failed", "error", err)
		return status.Error(codes.Unavailable, "store unavailable")
	}

	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
