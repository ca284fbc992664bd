package model

import (
	"testing"

	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/stretchr/testify/require"
)

func TestNextQuantity_ClampsPerStep(t *testing.T) {
	t.Parallel()

	q := int64(2)
	q = NextQuantity(q, -5)
	require.Equal(t, int64(0), q)
	q = NextQuantity(q, +1)
	require.Equal(t, int64(1), q)
}

func TestNextQuantity_Sequences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		start  int64
		deltas []int64
		want   int64
	}{
		{"increments", 0, []int64{1, 1, 1}, 3},
		{"floor at zero", 1, []int64{-1, -1, -1}, 0},
		{"deficit not remembered", 0, []int64{-3, 3}, 3},
		{"large delta", 10, []int64{-100}, 0},
		{"no deltas", 7, nil, 7},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q := tc.start
			for _, d := range tc.deltas {
				q = NextQuantity(q, d)
				require.GreaterOrEqual(t, q, int64(0))
			}
			require.Equal(t, tc.want, q)
		})
	}
}

func TestNewItem_NormalizeAndValidate(t *testing.T) {
	t.Parallel()

	n := NewItem{Name: "  Apple ", Quantity: -4, Category: "   "}.Normalize()
	require.Equal(t, "Apple", n.Name)
	require.Equal(t, int64(0), n.Quantity)
	require.Equal(t, DefaultCategory, n.Category)
	require.NoError(t, n.Validate())

	err := NewItem{Name: "   "}.Validate()
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestClampLowStock(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(1), ClampLowStock(0))
	require.Equal(t, int64(1), ClampLowStock(-3))
	require.Equal(t, int64(1), ClampLowStock(1))
	require.Equal(t, int64(9), ClampLowStock(9))
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	require.False(t, s.DarkMode)
	require.Equal(t, int64(5), s.LowStock)
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	q, err := ParseQuantity(" 12 ")
	require.NoError(t, err)
	require.Equal(t, int64(12), q)

	q, err = ParseQuantity("")
	require.NoError(t, err)
	require.Equal(t, int64(0), q)

	_, err = ParseQuantity("twelve")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = ParseQuantity("-1")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestItemPatch_Empty(t *testing.T) {
	t.Parallel()

	require.True(t, ItemPatch{}.Empty())
	name := "x"
	require.False(t, ItemPatch{Name: &name}.Empty())
}
