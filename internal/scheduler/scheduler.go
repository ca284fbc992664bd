// Package scheduler runs periodic jobs on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/aggregate"
	"github.com/and161185/stockkeeper/internal/model"
)

// ItemLister reads the current item set.
type ItemLister interface {
	List(ctx context.Context) ([]model.Item, error)
}

// SettingsReader reads the current settings.
type SettingsReader interface {
	Get(ctx context.Context) (model.Settings, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	items     ItemLister
	settings  SettingsReader
	namespace string
	logger    *zap.Logger
	timeout   time.Duration
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(items ItemLister, settings SettingsReader, namespace string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(),
		items:     items,
		settings:  settings,
		namespace: namespace,
		logger:    logger,
		timeout:   time.Minute,
	}
}

// Start schedules the low-stock report. An empty schedule leaves the scheduler idle.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("low-stock report disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, s.runLowStockReport); err != nil {
		return err
	}
	s.logger.Info("starting scheduler", zap.String("schedule", schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runLowStockReport() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.LowStockReport(ctx); err != nil {
		s.logger.Error("low-stock report failed", zap.Error(err))
	}
}

// LowStockReport computes and logs the current summary.
func (s *Scheduler) LowStockReport(ctx context.Context) (aggregate.Summary, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return aggregate.Summary{}, err
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable, using defaults", zap.Error(err))
		st = model.DefaultSettings()
	}
	sum := aggregate.Summarize(items, st.LowStock)

	low := make([]string, 0, len(sum.LowStock))
	for _, it := range sum.LowStock {
		low = append(low, it.Name)
	}
	fields := []zap.Field{
		zap.String("namespace", s.namespace),
		zap.Int("items", sum.ItemCount),
		zap.Int64("total_stock", sum.TotalStock),
		zap.Int64("threshold", sum.Threshold),
		zap.Strings("low_stock", low),
	}
	if sum.MostStocked != nil {
		fields = append(fields, zap.String("most_stocked", sum.MostStocked.Name))
	}
	s.logger.Info("low-stock report", fields...)
	return sum, nil
}
