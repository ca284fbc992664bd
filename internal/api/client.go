package api

import (
	"context"

	"google.golang.org/grpc"
)

// Receiver is the client side of a server-streaming call.
type Receiver[T any] interface {
	Recv() (*T, error)
	grpc.ClientStream
}

// InventoryClient is a typed client for the Inventory service.
// Every call is forced onto the JSON codec.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

// NewInventoryClient wraps a connection.
func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(Codec)}, opts...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

type receiver[T any] struct{ grpc.ClientStream }

func (r *receiver[T]) Recv() (*T, error) {
	m := new(T)
	if err := r.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func watch[T any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, opts []grpc.CallOption) (Receiver[T], error) {
	stream, err := cc.NewStream(ctx, desc, FullMethod(desc.StreamName), withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &receiver[T]{stream}, nil
}

func (c *InventoryClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SignUpResponse, error) {
	return invoke[SignUpResponse](ctx, c.cc, MethodSignUp, in, opts)
}

func (c *InventoryClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SignInResponse, error) {
	return invoke[SignInResponse](ctx, c.cc, MethodSignIn, in, opts)
}

func (c *InventoryClient) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	return invoke[WhoAmIResponse](ctx, c.cc, MethodWhoAmI, &Empty{}, opts)
}

func (c *InventoryClient) CreateItem(ctx context.Context, in *CreateItemRequest, opts ...grpc.CallOption) (*CreateItemResponse, error) {
	return invoke[CreateItemResponse](ctx, c.cc, MethodCreateItem, in, opts)
}

func (c *InventoryClient) UpdateItem(ctx context.Context, in *UpdateItemRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodUpdateItem, in, opts)
	return err
}

func (c *InventoryClient) DeleteItem(ctx context.Context, id string, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodDeleteItem, &ItemRef{ID: id}, opts)
	return err
}

func (c *InventoryClient) GetItem(ctx context.Context, id string, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, MethodGetItem, &ItemRef{ID: id}, opts)
}

func (c *InventoryClient) ListItems(ctx context.Context, opts ...grpc.CallOption) (*ItemList, error) {
	return invoke[ItemList](ctx, c.cc, MethodListItems, &Empty{}, opts)
}

func (c *InventoryClient) AdjustQuantity(ctx context.Context, in *AdjustQuantityRequest, opts ...grpc.CallOption) (*AdjustQuantityResponse, error) {
	return invoke[AdjustQuantityResponse](ctx, c.cc, MethodAdjustQuantity, in, opts)
}

func (c *InventoryClient) AttachImage(ctx context.Context, in *AttachImageRequest, opts ...grpc.CallOption) (*AttachImageResponse, error) {
	return invoke[AttachImageResponse](ctx, c.cc, MethodAttachImage, in, opts)
}

func (c *InventoryClient) GetSettings(ctx context.Context, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, MethodGetSettings, &Empty{}, opts)
}

func (c *InventoryClient) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, MethodUpdateSettings, in, opts)
}

func (c *InventoryClient) StepLowStock(ctx context.Context, delta int64, opts ...grpc.CallOption) (*Settings, error) {
	return invoke[Settings](ctx, c.cc, MethodStepLowStock, &StepLowStockRequest{Delta: delta}, opts)
}

// WatchItems opens the item snapshot stream.
func (c *InventoryClient) WatchItems(ctx context.Context, opts ...grpc.CallOption) (Receiver[ItemList], error) {
	return watch[ItemList](ctx, c.cc, &ServiceDesc.Streams[0], opts)
}

// WatchSettings opens the settings stream.
func (c *InventoryClient) WatchSettings(ctx context.Context, opts ...grpc.CallOption) (Receiver[Settings], error) {
	return watch[Settings](ctx, c.cc, &ServiceDesc.Streams[1], opts)
}
