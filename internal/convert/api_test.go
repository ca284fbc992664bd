package convert

import (
	"testing"
	"time"

	u "github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
)

func TestItemRoundTripKeepsImageFields(t *testing.T) {
	url, path := "http://h/blobs/p", "p"
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := model.Item{
		ID: u.Must(u.NewV4()), Name: "Apple", Quantity: 3, Category: "Fruit",
		ImageURL: &url, StoragePath: &path, CreatedAt: ts, UpdatedAt: ts,
	}

	out, err := FromAPIItem(ToAPIItem(in))
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestFromAPIItems_BadIDStops(t *testing.T) {
	_, err := FromAPIItems([]api.Item{{ID: u.Must(u.NewV4()).String()}, {ID: "nope"}})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Contains(t, err.Error(), "item[1]")
}

func TestToAPIItems_EmptyIsNotNil(t *testing.T) {
	require.NotNil(t, ToAPIItems(nil))
}

func TestFromUpdateRequest(t *testing.T) {
	id := u.Must(u.NewV4())
	name := "n"
	gotID, p, err := FromUpdateRequest(&api.UpdateItemRequest{ID: id.String(), Name: &name})
	require.NoError(t, err)
	require.Equal(t, id, gotID)
	require.Equal(t, "n", *p.Name)
	require.Nil(t, p.Quantity)
	require.Nil(t, p.ImageURL)

	_, _, err = FromUpdateRequest(&api.UpdateItemRequest{ID: ""})
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestFromAPISettings_NilIsDefaults(t *testing.T) {
	require.Equal(t, model.DefaultSettings(), FromAPISettings(nil))
	s := FromAPISettings(ToAPISettings(model.Settings{DarkMode: true, LowStock: 9}))
	require.True(t, s.DarkMode)
	require.Equal(t, int64(9), s.LowStock)
}
