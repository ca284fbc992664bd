package postgres

import (
	"context"
	"errors"

	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

const itemColumns = `id, name, quantity, category, image_url, storage_path, created_at, updated_at`

// ItemRepo implements ItemRepository for one namespace using PostgreSQL.
type ItemRepo struct {
	db *DB
	ns string
}

// NewItemRepo constructs an item repository scoped to namespace.
func NewItemRepo(db *DB, namespace string) *ItemRepo { return &ItemRepo{db: db, ns: namespace} }

// Create inserts a new item with server-side timestamps and no image.
func (r *ItemRepo) Create(ctx context.Context, in model.NewItem) (uuid.UUID, error) {
	if err := in.Validate(); err != nil {
		return uuid.Nil, err
	}
	in = in.Normalize()
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	const q = `
INSERT INTO items (namespace, id, name, quantity, category)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.Pool.Exec(ctx, q, r.ns, id, in.Name, in.Quantity, in.Category); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Update merges set fields into the item. Unset fields keep their stored values.
func (r *ItemRepo) Update(ctx context.Context, id uuid.UUID, p model.ItemPatch) error {
	if p.Quantity != nil {
		q := model.ClampQuantity(*p.Quantity)
		p.Quantity = &q
	}
	const q = `
UPDATE items SET
  name = COALESCE($3, name),
  quantity = COALESCE($4, quantity),
  category = COALESCE($5, category),
  image_url = COALESCE($6, image_url),
  storage_path = COALESCE($7, storage_path),
  updated_at = now()
WHERE namespace = $1 AND id = $2`
	tag, err := r.db.Pool.Exec(ctx, q, r.ns, id, p.Name, p.Quantity, p.Category, p.ImageURL, p.StoragePath)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the item row and reports where its blob lives, if anywhere.
func (r *ItemRepo) Delete(ctx context.Context, id uuid.UUID) (*string, error) {
	const q = `DELETE FROM items WHERE namespace = $1 AND id = $2 RETURNING storage_path`
	var path *string
	if err := r.db.Pool.QueryRow(ctx, q, r.ns, id).Scan(&path); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return path, nil
}

// AdjustQuantity reads the locked row, applies delta clamped at zero and writes it back.
// The row lock serializes concurrent adjusters so no update is lost.
func (r *ItemRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int64) (next int64, err error) {
	const sel = `SELECT COALESCE(quantity, 0) FROM items WHERE namespace = $1 AND id = $2 FOR UPDATE`
	const upd = `UPDATE items SET quantity = $3, updated_at = now() WHERE namespace = $1 AND id = $2`

	err = r.db.inTx(ctx, func(tx pgx.Tx) error {
		var cur int64
		if err := tx.QueryRow(ctx, sel, r.ns, id).Scan(&cur); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}
		next = model.NextQuantity(cur, delta)
		_, err := tx.Exec(ctx, upd, r.ns, id, next)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Get returns a single item by id.
func (r *ItemRepo) Get(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE namespace = $1 AND id = $2`
	it, err := scanItem(r.db.Pool.QueryRow(ctx, q, r.ns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// List returns the full namespace, most recently updated first.
func (r *ItemRepo) List(ctx context.Context) ([]model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE namespace = $1 ORDER BY updated_at DESC, id`
	rows, err := r.db.Pool.Query(ctx, q, r.ns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanItem(row pgx.Row) (model.Item, error) {
	var it model.Item
	err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.Category, &it.ImageURL, &it.StoragePath, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}
