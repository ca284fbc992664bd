package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/live"
	"github.com/and161185/stockkeeper/internal/model"
	"github.com/and161185/stockkeeper/internal/repository"
)

// SettingsService manages the shared settings record.
type SettingsService interface {
	EnsureDefaults(ctx context.Context) error
	Get(ctx context.Context) (model.Settings, error)
	Update(ctx context.Context, p model.SettingsPatch) (model.Settings, error)
	SetDarkMode(ctx context.Context, on bool) (model.Settings, error)
	SetLowStockThreshold(ctx context.Context, n int64) (model.Settings, error)
	StepLowStockThreshold(ctx context.Context, delta int64) (model.Settings, error)
	Watch(ctx context.Context) (<-chan model.Settings, error)
}

type SettingsServiceImpl struct {
	repo repository.SettingsRepository
	hub  *live.Hub
	ns   string
	log  *zap.Logger
}

// NewSettingsService constructs SettingsService for namespace.
func NewSettingsService(repo repository.SettingsRepository, hub *live.Hub, namespace string, log *zap.Logger) *SettingsServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsServiceImpl{repo: repo, hub: hub, ns: namespace, log: log}
}

func (s *SettingsServiceImpl) EnsureDefaults(ctx context.Context) error {
	return s.repo.EnsureDefaults(ctx)
}

func (s *SettingsServiceImpl) Get(ctx context.Context) (model.Settings, error) {
	return s.repo.Get(ctx)
}

// Update writes only the fields set in p.
func (s *SettingsServiceImpl) Update(ctx context.Context, p model.SettingsPatch) (model.Settings, error) {
	if p.DarkMode == nil && p.LowStock == nil {
		return model.Settings{}, fmt.Errorf("%w: nothing to update", errs.ErrValidation)
	}
	if p.LowStock != nil {
		v := model.ClampLowStock(*p.LowStock)
		p.LowStock = &v
	}
	return s.repo.Update(ctx, p)
}

func (s *SettingsServiceImpl) SetDarkMode(ctx context.Context, on bool) (model.Settings, error) {
	return s.Update(ctx, model.SettingsPatch{DarkMode: &on})
}

// SetLowStockThreshold floors n at model.MinLowStock.
func (s *SettingsServiceImpl) SetLowStockThreshold(ctx context.Context, n int64) (model.Settings, error) {
	return s.Update(ctx, model.SettingsPatch{LowStock: &n})
}

func (s *SettingsServiceImpl) StepLowStockThreshold(ctx context.Context, delta int64) (model.Settings, error) {
	if delta == 0 {
		return model.Settings{}, fmt.Errorf("%w: delta must be non-zero", errs.ErrValidation)
	}
	return s.repo.StepLowStock(ctx, delta)
}

func (s *SettingsServiceImpl) Watch(ctx context.Context) (<-chan model.Settings, error) {
	if s.hub == nil {
		return nil, fmt.Errorf("%w: live updates not configured", errs.ErrBackend)
	}
	return live.Follow(ctx, s.hub, s.ns, s.repo.Get, s.log)
}
