package grpcserver

import (
	"encoding/base64"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/blob"
)

// MaxRecvMsgBytes fits a base64-encoded image of blob.MaxImageBytes plus
// the rest of the request.
var MaxRecvMsgBytes = base64.StdEncoding.EncodedLen(blob.MaxImageBytes) + 1<<20

// NewGRPCServer builds a grpc.Server with the interceptor chains, the
// Inventory service and the health service. Reflection is dev only.
func NewGRPCServer(app *Server, signKey []byte, log *zap.Logger, dev bool, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{grpc.MaxRecvMsgSize(MaxRecvMsgBytes)}, opts...)
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
			AuthUnary(signKey),
		),
		grpc.ChainStreamInterceptor(
			RecoverStream(log),
			LoggingStream(log),
			AuthStream(signKey),
		),
	)
	s := grpc.NewServer(opts...)
	api.RegisterInventoryServer(s, app)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if dev {
		reflection.Register(s)
	}
	return s, hs
}
