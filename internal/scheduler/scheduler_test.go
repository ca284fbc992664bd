package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/stockkeeper/internal/model"
)

type stubItems struct {
	items []model.Item
	err   error
}

func (s stubItems) List(context.Context) ([]model.Item, error) { return s.items, s.err }

type stubSettings struct {
	s   model.Settings
	err error
}

func (s stubSettings) Get(context.Context) (model.Settings, error) { return s.s, s.err }

func TestLowStockReport(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	items := []model.Item{
		{Name: "a", Quantity: 10}, {Name: "b", Quantity: 5}, {Name: "c", Quantity: 3}, {Name: "d", Quantity: 0},
	}
	s := NewScheduler(stubItems{items: items}, stubSettings{s: model.Settings{LowStock: 5}}, "main", zap.New(core))

	sum, err := s.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, sum.ItemCount)
	require.Len(t, sum.LowStock, 3)
	require.Equal(t, "d", sum.LowStock[0].Name)

	entries := logs.FilterMessage("low-stock report").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, "main", ctx["namespace"])
	require.Equal(t, "a", ctx["most_stocked"])
}

func TestLowStockReport_SettingsFailureFallsBackToDefaults(t *testing.T) {
	s := NewScheduler(stubItems{items: []model.Item{{Name: "x", Quantity: 5}}},
		stubSettings{err: errors.New("db")}, "main", zap.NewNop())

	sum, err := s.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.DefaultLowStock, sum.Threshold)
	require.Len(t, sum.LowStock, 1)
}

func TestLowStockReport_ListError(t *testing.T) {
	s := NewScheduler(stubItems{err: errors.New("db")}, stubSettings{}, "main", nil)
	_, err := s.LowStockReport(context.Background())
	require.Error(t, err)
}

func TestStart_EmptySpecDisabled_BadSpecRejected(t *testing.T) {
	s := NewScheduler(stubItems{}, stubSettings{}, "main", nil)
	require.NoError(t, s.Start(""))
	require.Error(t, s.Start("not a cron"))

	s = NewScheduler(stubItems{}, stubSettings{}, "main", nil)
	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}
