// Package grpcserver exposes the Inventory gRPC API handlers.
package grpcserver

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/convert"
	"github.com/and161185/stockkeeper/internal/service"
)

// Server wires services into gRPC handlers.
type Server struct {
	auth     service.AuthService
	items    service.ItemService
	settings service.SettingsService
	log      *zap.Logger
}

var _ api.InventoryServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, items service.ItemService, settings service.SettingsService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, items: items, settings: settings, log: log}
}

// --- Auth ---

func (s *Server) SignUp(ctx context.Context, req *api.SignUpRequest) (*api.SignUpResponse, error) {
	id, err := s.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.SignUpResponse{UserID: id}, nil
}

func (s *Server) SignIn(ctx context.Context, req *api.SignInRequest) (*api.SignInResponse, error) {
	tok, u, err := s.auth.SignIn(ctx, req.Email, req.Password, peerAddr(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.SignInResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt,
		UserID:      u.ID.String(),
		Email:       u.Email,
	}, nil
}

func (s *Server) WhoAmI(ctx context.Context, _ *api.Empty) (*api.WhoAmIResponse, error) {
	p, ok := PrincipalFromCtx(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	u, err := s.auth.WhoAmI(ctx, p.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.WhoAmIResponse{UserID: u.ID.String(), Email: u.Email}, nil
}

// --- Items ---

func (s *Server) CreateItem(ctx context.Context, req *api.CreateItemRequest) (*api.CreateItemResponse, error) {
	id, err := s.items.Create(ctx, convert.FromCreateRequest(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.CreateItemResponse{ID: id.String()}, nil
}

func (s *Server) UpdateItem(ctx context.Context, req *api.UpdateItemRequest) (*api.Empty, error) {
	id, patch, err := convert.FromUpdateRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.items.Update(ctx, id, patch); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *Server) DeleteItem(ctx context.Context, req *api.ItemRef) (*api.Empty, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *Server) GetItem(ctx context.Context, req *api.ItemRef) (*api.Item, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	it, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	out := convert.ToAPIItem(*it)
	return &out, nil
}

func (s *Server) ListItems(ctx context.Context, _ *api.Empty) (*api.ItemList, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ItemList{Items: convert.ToAPIItems(items)}, nil
}

func (s *Server) AdjustQuantity(ctx context.Context, req *api.AdjustQuantityRequest) (*api.AdjustQuantityResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	q, err := s.items.AdjustQuantity(ctx, id, req.Delta)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.AdjustQuantityResponse{Quantity: q}, nil
}

func (s *Server) AttachImage(ctx context.Context, req *api.AttachImageRequest) (*api.AttachImageResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	url, err := s.items.AttachImage(ctx, id, req.Filename, req.Data)
	if err != nil {
		s.log.Warn("attach image", zap.String("item_id", req.ID), zap.String("user_id", callerID(ctx).String()), zap.Error(err))
		return nil, toStatus(err)
	}
	return &api.AttachImageResponse{ImageURL: url}, nil
}

// --- Settings ---

func (s *Server) GetSettings(ctx context.Context, _ *api.Empty) (*api.Settings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return convert.ToAPISettings(st), nil
}

func (s *Server) UpdateSettings(ctx context.Context, req *api.UpdateSettingsRequest) (*api.Settings, error) {
	st, err := s.settings.Update(ctx, convert.FromUpdateSettingsRequest(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return convert.ToAPISettings(st), nil
}

func (s *Server) StepLowStock(ctx context.Context, req *api.StepLowStockRequest) (*api.Settings, error) {
	st, err := s.settings.StepLowStockThreshold(ctx, req.Delta)
	if err != nil {
		return nil, toStatus(err)
	}
	return convert.ToAPISettings(st), nil
}

// --- Streams ---

// WatchItems pushes a full snapshot first and after every change, until the client leaves.
func (s *Server) WatchItems(_ *api.Empty, stream api.Sender[api.ItemList]) error {
	ctx := stream.Context()
	ch, err := s.items.Watch(ctx)
	if err != nil {
		return toStatus(err)
	}
	for snap := range ch {
		if err := stream.Send(&api.ItemList{Items: convert.ToAPIItems(snap)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) WatchSettings(_ *api.Empty, stream api.Sender[api.Settings]) error {
	ctx := stream.Context()
	ch, err := s.settings.Watch(ctx)
	if err != nil {
		return toStatus(err)
	}
	for st := range ch {
		if err := stream.Send(convert.ToAPISettings(st)); err != nil {
			return err
		}
	}
	return nil
}

// callerID is used by handlers that need the user behind the token.
func callerID(ctx context.Context) uuid.UUID {
	p, _ := PrincipalFromCtx(ctx)
	return p.UserID
}
