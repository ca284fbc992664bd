package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/blob"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/live"
	"github.com/and161185/stockkeeper/internal/model"
	"github.com/and161185/stockkeeper/internal/repository"
)

// MaxImageBytes caps an attached photo.
const MaxImageBytes = blob.MaxImageBytes

// ItemService defines operations over the items of one namespace.
type ItemService interface {
	Create(ctx context.Context, in model.NewItem) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, patch model.ItemPatch) error
	// Delete removes the item, then its photo on a best-effort basis.
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
	// AttachImage uploads the photo and links it to the item, returning its URL.
	AttachImage(ctx context.Context, id uuid.UUID, filename string, data []byte) (string, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	// Watch replays the full item set and re-emits it after every change.
	Watch(ctx context.Context) (<-chan []model.Item, error)
}

// ItemDeps bundles ItemServiceImpl collaborators.
type ItemDeps struct {
	Repo      repository.ItemRepository
	Blobs     blob.Store
	Hub       *live.Hub
	Namespace string
	PublicURL string
	Log       *zap.Logger
}

type ItemServiceImpl struct {
	repo      repository.ItemRepository
	blobs     blob.Store
	hub       *live.Hub
	ns        string
	publicURL string
	log       *zap.Logger
}

// NewItemService constructs ItemService.
func NewItemService(d ItemDeps) *ItemServiceImpl {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &ItemServiceImpl{
		repo:      d.Repo,
		blobs:     d.Blobs,
		hub:       d.Hub,
		ns:        d.Namespace,
		publicURL: d.PublicURL,
		log:       d.Log,
	}
}

func validateID(id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: empty item id", errs.ErrValidation)
	}
	return nil
}

// Create rejects an empty name before the repository is touched.
func (s *ItemServiceImpl) Create(ctx context.Context, in model.NewItem) (uuid.UUID, error) {
	if err := in.Validate(); err != nil {
		return uuid.Nil, err
	}
	return s.repo.Create(ctx, in.Normalize())
}

// Update applies a merge patch.
func (s *ItemServiceImpl) Update(ctx context.Context, id uuid.UUID, p model.ItemPatch) error {
	if err := validateID(id); err != nil {
		return err
	}
	if p.Empty() {
		return fmt.Errorf("%w: nothing to update", errs.ErrValidation)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return fmt.Errorf("%w: name is required", errs.ErrValidation)
		}
		p.Name = &name
	}
	if p.Category != nil {
		cat := strings.TrimSpace(*p.Category)
		if cat == "" {
			cat = model.DefaultCategory
		}
		p.Category = &cat
	}
	return s.repo.Update(ctx, id, p)
}

// Delete is two independent steps; only the first can fail the call.
func (s *ItemServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := validateID(id); err != nil {
		return err
	}
	path, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if path == nil || *path == "" || s.blobs == nil {
		return nil
	}
	if err := s.blobs.Delete(ctx, *path); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("image cleanup failed", zap.String("item_id", id.String()), zap.String("path", *path), zap.Error(err))
	}
	return nil
}

// AdjustQuantity delegates to the repository transaction.
func (s *ItemServiceImpl) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	if err := validateID(id); err != nil {
		return 0, err
	}
	if delta == 0 {
		return 0, fmt.Errorf("%w: delta must be non-zero", errs.ErrValidation)
	}
	return s.repo.AdjustQuantity(ctx, id, delta)
}

// AttachImage stores data at the item's image path and records the URL.
func (s *ItemServiceImpl) AttachImage(ctx context.Context, id uuid.UUID, filename string, data []byte) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", errs.ErrValidation)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: image larger than %d bytes", errs.ErrValidation, MaxImageBytes)
	}
	if s.blobs == nil {
		return "", fmt.Errorf("%w: blob store not configured", errs.ErrBackend)
	}

	ext := blob.Extension(filename)
	path := blob.ItemImagePath(s.ns, id, ext)
	if err := s.blobs.Put(ctx, path, bytes.NewReader(data), blob.ContentType(ext)); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	url := blob.URL(s.publicURL, path)

	if err := s.repo.Update(ctx, id, model.ItemPatch{ImageURL: &url, StoragePath: &path}); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			if derr := s.blobs.Delete(ctx, path); derr != nil {
				s.log.Warn("orphan image cleanup failed", zap.String("path", path), zap.Error(derr))
			}
		}
		return "", err
	}
	return url, nil
}

func (s *ItemServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *ItemServiceImpl) List(ctx context.Context) ([]model.Item, error) {
	return s.repo.List(ctx)
}

// Watch follows the namespace topic on the hub.
func (s *ItemServiceImpl) Watch(ctx context.Context) (<-chan []model.Item, error) {
	if s.hub == nil {
		return nil, fmt.Errorf("%w: live updates not configured", errs.ErrBackend)
	}
	return live.Follow(ctx, s.hub, s.ns, s.repo.List, s.log)
}
