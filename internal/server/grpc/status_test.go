package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/stockkeeper/internal/errs"
)

func TestToStatus(t *testing.T) {
	t.Parallel()

	require.NoError(t, toStatus(nil))
	cases := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("%w: name is required", errs.ErrValidation), codes.InvalidArgument},
		{errs.ErrNotFound, codes.NotFound},
		{errs.ErrUnauthorized, codes.Unauthenticated},
		{errs.ErrRateLimited, codes.ResourceExhausted},
		{errs.ErrAlreadyExists, codes.AlreadyExists},
		{context.Canceled, codes.Canceled},
		{errors.New("pg: broken pipe"), codes.Internal},
		{status.Error(codes.Unavailable, "x"), codes.Unavailable},
	}
	for _, c := range cases {
		require.Equal(t, c.code, status.Code(toStatus(c.err)), c.err.Error())
	}
	require.Contains(t, status.Convert(toStatus(fmt.Errorf("%w: name is required", errs.ErrValidation))).Message(), "name is required")
}
