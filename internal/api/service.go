package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "stockkeeper.v1.Inventory"

// RateLimitedMessage is the status message of a throttled sign-in. Clients
// use it to tell throttling apart from other ResourceExhausted rejections,
// such as an oversized message.
const RateLimitedMessage = "too many attempts, try again later"

// Method names.
const (
	MethodSignUp         = "SignUp"
	MethodSignIn         = "SignIn"
	MethodWhoAmI         = "WhoAmI"
	MethodCreateItem     = "CreateItem"
	MethodUpdateItem     = "UpdateItem"
	MethodDeleteItem     = "DeleteItem"
	MethodGetItem        = "GetItem"
	MethodListItems      = "ListItems"
	MethodAdjustQuantity = "AdjustQuantity"
	MethodAttachImage    = "AttachImage"
	MethodGetSettings    = "GetSettings"
	MethodUpdateSettings = "UpdateSettings"
	MethodStepLowStock   = "StepLowStock"
	MethodWatchItems     = "WatchItems"
	MethodWatchSettings  = "WatchSettings"
)

// FullMethod returns "/stockkeeper.v1.Inventory/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// Sender is the server side of a server-streaming call.
type Sender[T any] interface {
	Send(*T) error
	grpc.ServerStream
}

// InventoryServer is implemented by the gRPC handlers.
type InventoryServer interface {
	SignUp(context.Context, *SignUpRequest) (*SignUpResponse, error)
	SignIn(context.Context, *SignInRequest) (*SignInResponse, error)
	WhoAmI(context.Context, *Empty) (*WhoAmIResponse, error)

	CreateItem(context.Context, *CreateItemRequest) (*CreateItemResponse, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*Empty, error)
	DeleteItem(context.Context, *ItemRef) (*Empty, error)
	GetItem(context.Context, *ItemRef) (*Item, error)
	ListItems(context.Context, *Empty) (*ItemList, error)
	AdjustQuantity(context.Context, *AdjustQuantityRequest) (*AdjustQuantityResponse, error)
	AttachImage(context.Context, *AttachImageRequest) (*AttachImageResponse, error)

	GetSettings(context.Context, *Empty) (*Settings, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*Settings, error)
	StepLowStock(context.Context, *StepLowStockRequest) (*Settings, error)

	WatchItems(*Empty, Sender[ItemList]) error
	WatchSettings(*Empty, Sender[Settings]) error
}

// RegisterInventoryServer attaches srv to a gRPC server.
func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(InventoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InventoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(InventoryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type sender[T any] struct{ grpc.ServerStream }

func (s *sender[T]) Send(m *T) error { return s.ServerStream.SendMsg(m) }

func serverStream[T any](method string, call func(InventoryServer, *Empty, Sender[T]) error) grpc.StreamDesc {
	return grpc.StreamDesc{
		StreamName:    method,
		ServerStreams: true,
		Handler: func(srv any, stream grpc.ServerStream) error {
			in := new(Empty)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return call(srv.(InventoryServer), in, &sender[T]{stream})
		},
	}
}

// ServiceDesc describes the Inventory service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodSignUp, InventoryServer.SignUp),
		unary(MethodSignIn, InventoryServer.SignIn),
		unary(MethodWhoAmI, InventoryServer.WhoAmI),
		unary(MethodCreateItem, InventoryServer.CreateItem),
		unary(MethodUpdateItem, InventoryServer.UpdateItem),
		unary(MethodDeleteItem, InventoryServer.DeleteItem),
		unary(MethodGetItem, InventoryServer.GetItem),
		unary(MethodListItems, InventoryServer.ListItems),
		unary(MethodAdjustQuantity, InventoryServer.AdjustQuantity),
		unary(MethodAttachImage, InventoryServer.AttachImage),
		unary(MethodGetSettings, InventoryServer.GetSettings),
		unary(MethodUpdateSettings, InventoryServer.UpdateSettings),
		unary(MethodStepLowStock, InventoryServer.StepLowStock),
	},
	Streams: []grpc.StreamDesc{
		serverStream(MethodWatchItems, InventoryServer.WatchItems),
		serverStream(MethodWatchSettings, InventoryServer.WatchSettings),
	},
	Metadata: "stockkeeper/v1/inventory",
}
