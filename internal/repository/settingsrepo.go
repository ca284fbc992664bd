package repository

import (
	"context"

	"github.com/and161185/stockkeeper/internal/model"
)

// SettingsRepository provides access to the single settings record of a namespace.
type SettingsRepository interface {
	// EnsureDefaults creates the record with default values if it is absent.
	EnsureDefaults(ctx context.Context) error
	// Get returns the record, or model.DefaultSettings when it does not exist.
	Get(ctx context.Context) (model.Settings, error)
	// Update merges the set fields of patch, creating the record if needed.
	Update(ctx context.Context, patch model.SettingsPatch) (model.Settings, error)
	// StepLowStock atomically adds delta to the threshold, floored at model.MinLowStock.
	StepLowStock(ctx context.Context, delta int64) (model.Settings, error)
}
