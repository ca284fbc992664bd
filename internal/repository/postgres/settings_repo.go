package postgres

import (
	"context"
	"errors"

	"github.com/and161185/stockkeeper/internal/model"
	"github.com/jackc/pgx/v5"
)

// SettingsRepo implements SettingsRepository for one namespace using PostgreSQL.
type SettingsRepo struct {
	db *DB
	ns string
}

// NewSettingsRepo constructs a settings repository scoped to namespace.
func NewSettingsRepo(db *DB, namespace string) *SettingsRepo {
	return &SettingsRepo{db: db, ns: namespace}
}

// EnsureDefaults inserts the default record unless one already exists.
func (r *SettingsRepo) EnsureDefaults(ctx context.Context) error {
	const q = `
INSERT INTO settings (namespace, dark_mode, low_stock)
VALUES ($1, $2, $3)
ON CONFLICT (namespace) DO NOTHING`
	d := model.DefaultSettings()
	_, err := r.db.Pool.Exec(ctx, q, r.ns, d.DarkMode, d.LowStock)
	return err
}

// Get returns the stored record or the defaults when none exists yet.
func (r *SettingsRepo) Get(ctx context.Context) (model.Settings, error) {
	const q = `SELECT dark_mode, low_stock, updated_at FROM settings WHERE namespace = $1`
	var s model.Settings
	err := r.db.Pool.QueryRow(ctx, q, r.ns).Scan(&s.DarkMode, &s.LowStock, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// Update upserts with merge semantics: fields absent from patch are never overwritten.
func (r *SettingsRepo) Update(ctx context.Context, p model.SettingsPatch) (model.Settings, error) {
	if p.LowStock != nil {
		v := model.ClampLowStock(*p.LowStock)
		p.LowStock = &v
	}
	const q = `
INSERT INTO settings (namespace, dark_mode, low_stock)
VALUES ($1, COALESCE($2, $4), COALESCE($3, $5))
ON CONFLICT (namespace) DO UPDATE SET
  dark_mode = COALESCE($2, settings.dark_mode),
  low_stock = COALESCE($3, settings.low_stock),
  updated_at = now()
RETURNING dark_mode, low_stock, updated_at`
	d := model.DefaultSettings()
	var s model.Settings
	err := r.db.Pool.QueryRow(ctx, q, r.ns, p.DarkMode, p.LowStock, d.DarkMode, d.LowStock).
		Scan(&s.DarkMode, &s.LowStock, &s.UpdatedAt)
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

// StepLowStock adds delta to the threshold in one statement, never going below the floor.
func (r *SettingsRepo) StepLowStock(ctx context.Context, delta int64) (model.Settings, error) {
	const q = `
INSERT INTO settings (namespace, dark_mode, low_stock)
VALUES ($1, $2, GREATEST($4::bigint, $3::bigint + $5::bigint))
ON CONFLICT (namespace) DO UPDATE SET
  low_stock = GREATEST($4::bigint, settings.low_stock + $5::bigint),
  updated_at = now()
RETURNING dark_mode, low_stock, updated_at`
	d := model.DefaultSettings()
	var s model.Settings
	err := r.db.Pool.QueryRow(ctx, q, r.ns, d.DarkMode, d.LowStock, model.MinLowStock, delta).
		Scan(&s.DarkMode, &s.LowStock, &s.UpdatedAt)
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}
