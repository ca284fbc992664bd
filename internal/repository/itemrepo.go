package repository

import (
	"context"

	"github.com/and161185/stockkeeper/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ItemRepository provides access to the items of one inventory namespace.
type ItemRepository interface {
	// Create inserts a normalized item and returns its repository-assigned ID.
	Create(ctx context.Context, in model.NewItem) (uuid.UUID, error)

	// Update merges the set fields of patch into the item and refreshes updated_at.
	Update(ctx context.Context, id uuid.UUID, patch model.ItemPatch) error

	// Delete removes the item and returns its storage path, if one was attached.
	Delete(ctx context.Context, id uuid.UUID) (storagePath *string, err error)

	// AdjustQuantity atomically applies delta with a floor of zero and returns the new quantity.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (int64, error)

	// Get returns a single item by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Item, error)

	// List returns every item ordered by updated_at descending.
	List(ctx context.Context) ([]model.Item, error)
}
