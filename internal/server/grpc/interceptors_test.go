package grpcserver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/stockkeeper/internal/api"
)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "127.0.0.1:12345" }

func TestLoggingUnary_Passthrough(t *testing.T) {
	t.Parallel()

	ic := LoggingUnary(zaptest.NewLogger(t))
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: fakeAddr{}})
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Ok"}

	resp, err := ic(ctx, nil, info, func(context.Context, any) (any, error) { return "ok", nil })
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	want := status.Error(codes.PermissionDenied, "nope")
	_, err = ic(ctx, nil, info, func(context.Context, any) (any, error) { return nil, want })
	require.ErrorIs(t, err, want)
}

func TestRecoverUnary(t *testing.T) {
	t.Parallel()

	ic := RecoverUnary(zaptest.NewLogger(t))
	_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Panic"},
		func(context.Context, any) (any, error) { panic("boom") })
	require.Equal(t, codes.Internal, status.Code(err))

	_, err = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Err"},
		func(context.Context, any) (any, error) { return nil, errors.New("plain") })
	require.EqualError(t, err, "plain")
}

func TestAuthUnary_SkipsPublicMethods(t *testing.T) {
	t.Parallel()

	ic := AuthUnary(testKey)
	called := false
	h := func(context.Context, any) (any, error) { called = true; return nil, nil }

	_, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: api.FullMethod(api.MethodSignIn)}, h)
	require.NoError(t, err)
	require.True(t, called)

	called = false
	_, err = ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: api.FullMethod(api.MethodListItems)}, h)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	require.False(t, called)
}
