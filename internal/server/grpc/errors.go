package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a domain error onto a gRPC status. Unclassified errors
// become Internal without leaking their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, common.ErrNoCredential),
		errors.Is(err, common.ErrInvalidCredential),
		errors.Is(err, common.ErrExpiredCredential),
		errors.Is(err, common.ErrUnknownSubject):
		code = codes.Unauthenticated
	case errors.Is(err, common.ErrForbidden):
		code = codes.PermissionDenied
	case errors.Is(err, common.ErrConflict), errors.Is(err, common.ErrAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, common.ErrorNotFound):
		code = codes.NotFound
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrBlacklisted):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrSearchLimitExceeded):
		code = codes.ResourceExhausted
	case errors.Is(err, common.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, common.ErrStoreUnavailable.Error())
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
