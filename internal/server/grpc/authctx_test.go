package grpcserver

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestPrincipalRoundTrip(t *testing.T) {
	t.Parallel()

	_, ok := PrincipalFromCtx(context.Background())
	require.False(t, ok)

	want := Principal{UserID: uuid.Must(uuid.NewV4()), Email: "a@b.c"}
	got, ok := PrincipalFromCtx(WithPrincipal(context.Background(), want))
	require.True(t, ok)
	require.Equal(t, want, got)

	_, ok = PrincipalFromCtx(WithPrincipal(context.Background(), Principal{}))
	require.False(t, ok)
}

func Test_bearerTokenFromMD(t *testing.T) {
	t.Parallel()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	got, err := bearerTokenFromMD(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", got)

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic foo"))
	_, err = bearerTokenFromMD(ctx)
	require.Error(t, err)

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer   "))
	_, err = bearerTokenFromMD(ctx)
	require.Error(t, err)

	_, err = bearerTokenFromMD(context.Background())
	require.Error(t, err)
}

func Test_authenticate(t *testing.T) {
	t.Parallel()

	sub := uuid.Must(uuid.NewV4())
	tok := jwtFor(t, sub.String(), "a@b.c", testKey, time.Hour)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "bearer "+tok))

	p, err := authenticate(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, sub, p.UserID)
	require.Equal(t, "a@b.c", p.Email)

	bad := jwtFor(t, "not-a-uuid", "a@b.c", testKey, time.Hour)
	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+bad))
	_, err = authenticate(ctx, testKey)
	require.Error(t, err)
}
