package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/errs"
)

// Error is a failed call as reported by the server. It unwraps to one of
// the errs sentinels.
type Error struct {
	Code codes.Code
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

// AttachError reports an item that was created but whose image could not be
// attached. The item stays without an image.
type AttachError struct {
	ID  uuid.UUID
	Err error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("%v: item %s: %v", errs.ErrImageAttach, e.ID, e.Err)
}

func (e *AttachError) Unwrap() []error { return []error{errs.ErrImageAttach, e.Err} }

// fromRPC maps a gRPC status back onto the sentinels. Anything the client
// does not recognise becomes errs.ErrBackend.
func fromRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", errs.ErrBackend, err)
	}
	var kind error
	switch st.Code() {
	case codes.InvalidArgument:
		kind = errs.ErrValidation
	case codes.NotFound:
		kind = errs.ErrNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		kind = errs.ErrUnauthorized
	case codes.ResourceExhausted:
		kind = errs.ErrTooLarge
		if st.Message() == api.RateLimitedMessage {
			kind = errs.ErrRateLimited
		}
	case codes.AlreadyExists:
		kind = errs.ErrAlreadyExists
	case codes.Canceled:
		kind = context.Canceled
	case codes.DeadlineExceeded:
		kind = context.DeadlineExceeded
	default:
		kind = errs.ErrBackend
	}
	return &Error{Code: st.Code(), Kind: kind, Msg: st.Message()}
}

// Message renders err for display to a person.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var attach *AttachError
	if errors.As(err, &attach) {
		return "Item saved, but the image could not be attached: " + Message(attach.Err)
	}
	var rpc *Error
	hasMsg := errors.As(err, &rpc) && rpc.Msg != ""
	switch {
	case errors.Is(err, errs.ErrValidation):
		return err.Error()
	case errors.Is(err, errs.ErrUnauthorized):
		if hasMsg {
			return rpc.Msg
		}
		return "You are not signed in"
	case errors.Is(err, errs.ErrRateLimited):
		return "Too many attempts, try again later"
	case errors.Is(err, errs.ErrTooLarge):
		return "The image is too large"
	case errors.Is(err, errs.ErrAlreadyExists):
		return "An account with this email already exists"
	case errors.Is(err, errs.ErrNotFound):
		return "The item no longer exists"
	case errors.Is(err, context.DeadlineExceeded):
		return "The server did not respond in time"
	case hasMsg:
		return "Request failed: " + rpc.Msg
	default:
		return "Request failed: " + err.Error()
	}
}
