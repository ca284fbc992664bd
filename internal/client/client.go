// Package client is the SDK used by front ends of the inventory service.
//
// It owns the session token, turns gRPC statuses back into errs sentinels,
// orchestrates multi-step flows (create then attach an image) and exposes
// live snapshots as latest-wins channels.
package client

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/blob"
	"github.com/and161185/stockkeeper/internal/convert"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
)

// Inventory is the RPC surface the client depends on. *api.InventoryClient
// satisfies it.
type Inventory interface {
	SignUp(ctx context.Context, in *api.SignUpRequest, opts ...grpc.CallOption) (*api.SignUpResponse, error)
	SignIn(ctx context.Context, in *api.SignInRequest, opts ...grpc.CallOption) (*api.SignInResponse, error)
	WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*api.WhoAmIResponse, error)
	CreateItem(ctx context.Context, in *api.CreateItemRequest, opts ...grpc.CallOption) (*api.CreateItemResponse, error)
	UpdateItem(ctx context.Context, in *api.UpdateItemRequest, opts ...grpc.CallOption) error
	DeleteItem(ctx context.Context, id string, opts ...grpc.CallOption) error
	GetItem(ctx context.Context, id string, opts ...grpc.CallOption) (*api.Item, error)
	ListItems(ctx context.Context, opts ...grpc.CallOption) (*api.ItemList, error)
	AdjustQuantity(ctx context.Context, in *api.AdjustQuantityRequest, opts ...grpc.CallOption) (*api.AdjustQuantityResponse, error)
	AttachImage(ctx context.Context, in *api.AttachImageRequest, opts ...grpc.CallOption) (*api.AttachImageResponse, error)
	GetSettings(ctx context.Context, opts ...grpc.CallOption) (*api.Settings, error)
	UpdateSettings(ctx context.Context, in *api.UpdateSettingsRequest, opts ...grpc.CallOption) (*api.Settings, error)
	StepLowStock(ctx context.Context, delta int64, opts ...grpc.CallOption) (*api.Settings, error)
	WatchItems(ctx context.Context, opts ...grpc.CallOption) (api.Receiver[api.ItemList], error)
	WatchSettings(ctx context.Context, opts ...grpc.CallOption) (api.Receiver[api.Settings], error)
}

var _ Inventory = (*api.InventoryClient)(nil)

// Picked is an image chosen by the user.
type Picked struct {
	Filename string
	Data     []byte
}

// Client talks to one server on behalf of one session.
type Client struct {
	rpc     Inventory
	session *Session
	secure  bool
	log     *zap.Logger
}

// New builds a client over rpc. secure must be true when the connection
// uses TLS; bearer tokens are refused on plaintext connections otherwise.
func New(rpc Inventory, session *Session, secure bool, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{rpc: rpc, session: session, secure: secure, log: log}
}

// Session exposes the auth state holder.
func (c *Client) Session() *Session { return c.session }

func (c *Client) auth() (grpc.CallOption, error) {
	tok, ok := c.session.Token()
	if !ok {
		return nil, fmt.Errorf("%w: sign in first", errs.ErrUnauthorized)
	}
	return grpc.PerRPCCredentials(bearer{token: tok, secure: c.secure}), nil
}

/************ identity ************/

// SignUp registers an account and returns its id.
func (c *Client) SignUp(ctx context.Context, email, password string) (string, error) {
	out, err := c.rpc.SignUp(ctx, &api.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return "", fromRPC(err)
	}
	return out.UserID, nil
}

// SignIn authenticates and persists the token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*CurrentUser, error) {
	out, err := c.rpc.SignIn(ctx, &api.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, fromRPC(err)
	}
	if err := c.session.Save(out.AccessToken, out.ExpiresAt, out.UserID, out.Email); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &CurrentUser{UserID: out.UserID, Email: out.Email}, nil
}

// SignOut forgets the token locally.
func (c *Client) SignOut() error { return c.session.Clear() }

// CurrentUser returns the locally known user or nil.
func (c *Client) CurrentUser() *CurrentUser { return c.session.CurrentUser() }

// ObserveAuthState emits the current user now and on every change.
func (c *Client) ObserveAuthState(ctx context.Context) <-chan *CurrentUser {
	return c.session.Observe(ctx)
}

// WhoAmI asks the server who the token belongs to.
func (c *Client) WhoAmI(ctx context.Context) (*CurrentUser, error) {
	opt, err := c.auth()
	if err != nil {
		return nil, err
	}
	out, err := c.rpc.WhoAmI(ctx, opt)
	if err != nil {
		return nil, fromRPC(err)
	}
	return &CurrentUser{UserID: out.UserID, Email: out.Email}, nil
}

/************ items ************/

// AddItem creates an item and, when img is set, attaches the image.
// Validation failures return before any call is made. If the item is
// created but the image is not, the new id is returned with an
// *AttachError.
func (c *Client) AddItem(ctx context.Context, in model.NewItem, img *Picked) (uuid.UUID, error) {
	if err := in.Validate(); err != nil {
		return uuid.Nil, err
	}
	if img != nil && len(img.Data) > blob.MaxImageBytes {
		return uuid.Nil, fmt.Errorf("%w: image larger than %d bytes", errs.ErrValidation, blob.MaxImageBytes)
	}
	opt, err := c.auth()
	if err != nil {
		return uuid.Nil, err
	}
	out, err := c.rpc.CreateItem(ctx, convert.ToCreateRequest(in.Normalize()), opt)
	if err != nil {
		return uuid.Nil, fromRPC(err)
	}
	id, err := convert.ParseID(out.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad id from server: %v", errs.ErrBackend, err)
	}
	if img == nil {
		return id, nil
	}
	if _, err := c.attach(ctx, id, *img, opt); err != nil {
		c.log.Warn("item created without image", zap.String("id", id.String()), zap.Error(err))
		return id, &AttachError{ID: id, Err: err}
	}
	return id, nil
}

// AttachImage uploads img for an existing item and returns its URL.
func (c *Client) AttachImage(ctx context.Context, id uuid.UUID, img Picked) (string, error) {
	opt, err := c.auth()
	if err != nil {
		return "", err
	}
	return c.attach(ctx, id, img, opt)
}

func (c *Client) attach(ctx context.Context, id uuid.UUID, img Picked, opt grpc.CallOption) (string, error) {
	if len(img.Data) > blob.MaxImageBytes {
		return "", fmt.Errorf("%w: image larger than %d bytes", errs.ErrValidation, blob.MaxImageBytes)
	}
	out, err := c.rpc.AttachImage(ctx, &api.AttachImageRequest{ID: id.String(), Filename: img.Filename, Data: img.Data}, opt)
	if err != nil {
		return "", fromRPC(err)
	}
	return out.ImageURL, nil
}

// UpdateItem applies a merge patch.
func (c *Client) UpdateItem(ctx context.Context, id uuid.UUID, p model.ItemPatch) error {
	if p.Name != nil {
		if err := (model.NewItem{Name: *p.Name}).Validate(); err != nil {
			return err
		}
	}
	opt, err := c.auth()
	if err != nil {
		return err
	}
	return fromRPC(c.rpc.UpdateItem(ctx, convert.ToUpdateRequest(id, p), opt))
}

// DeleteItem removes an item and, server side, its image.
func (c *Client) DeleteItem(ctx context.Context, id uuid.UUID) error {
	opt, err := c.auth()
	if err != nil {
		return err
	}
	return fromRPC(c.rpc.DeleteItem(ctx, id.String(), opt))
}

// GetItem reads one item.
func (c *Client) GetItem(ctx context.Context, id uuid.UUID) (model.Item, error) {
	opt, err := c.auth()
	if err != nil {
		return model.Item{}, err
	}
	out, err := c.rpc.GetItem(ctx, id.String(), opt)
	if err != nil {
		return model.Item{}, fromRPC(err)
	}
	return convert.FromAPIItem(*out)
}

// ListItems reads the current snapshot once.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	opt, err := c.auth()
	if err != nil {
		return nil, err
	}
	out, err := c.rpc.ListItems(ctx, opt)
	if err != nil {
		return nil, fromRPC(err)
	}
	return convert.FromAPIItems(out.Items)
}

// AdjustQuantity applies delta atomically on the server and returns the
// new quantity, floored at zero.
func (c *Client) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	if delta == 0 {
		return 0, fmt.Errorf("%w: delta must be non-zero", errs.ErrValidation)
	}
	opt, err := c.auth()
	if err != nil {
		return 0, err
	}
	out, err := c.rpc.AdjustQuantity(ctx, &api.AdjustQuantityRequest{ID: id.String(), Delta: delta}, opt)
	if err != nil {
		return 0, fromRPC(err)
	}
	return out.Quantity, nil
}

// Increment is AdjustQuantity(+1).
func (c *Client) Increment(ctx context.Context, id uuid.UUID) (int64, error) {
	return c.AdjustQuantity(ctx, id, 1)
}

// Decrement is AdjustQuantity(-1).
func (c *Client) Decrement(ctx context.Context, id uuid.UUID) (int64, error) {
	return c.AdjustQuantity(ctx, id, -1)
}

/************ settings ************/

// Settings reads the namespace settings.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	opt, err := c.auth()
	if err != nil {
		return model.Settings{}, err
	}
	out, err := c.rpc.GetSettings(ctx, opt)
	if err != nil {
		return model.Settings{}, fromRPC(err)
	}
	return convert.FromAPISettings(out), nil
}

func (c *Client) updateSettings(ctx context.Context, p model.SettingsPatch) (model.Settings, error) {
	opt, err := c.auth()
	if err != nil {
		return model.Settings{}, err
	}
	out, err := c.rpc.UpdateSettings(ctx, convert.ToUpdateSettingsRequest(p), opt)
	if err != nil {
		return model.Settings{}, fromRPC(err)
	}
	return convert.FromAPISettings(out), nil
}

// SetDarkMode persists the theme preference.
func (c *Client) SetDarkMode(ctx context.Context, on bool) (model.Settings, error) {
	return c.updateSettings(ctx, model.SettingsPatch{DarkMode: &on})
}

// SetLowStockThreshold persists the threshold; values below one are raised
// to one by the server.
func (c *Client) SetLowStockThreshold(ctx context.Context, n int64) (model.Settings, error) {
	return c.updateSettings(ctx, model.SettingsPatch{LowStock: &n})
}

// StepLowStockThreshold moves the threshold by delta in one atomic update.
func (c *Client) StepLowStockThreshold(ctx context.Context, delta int64) (model.Settings, error) {
	if delta == 0 {
		return model.Settings{}, fmt.Errorf("%w: delta must be non-zero", errs.ErrValidation)
	}
	opt, err := c.auth()
	if err != nil {
		return model.Settings{}, err
	}
	out, err := c.rpc.StepLowStock(ctx, delta, opt)
	if err != nil {
		return model.Settings{}, fromRPC(err)
	}
	return convert.FromAPISettings(out), nil
}
