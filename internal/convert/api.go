// Package convert maps between domain models and wire messages.
package convert

import (
	"fmt"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/errs"
	"github.com/and161185/stockkeeper/internal/model"
)

// ParseID parses a wire item id.
func ParseID(s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil {
		return u.Nil, fmt.Errorf("%w: invalid id %q", errs.ErrValidation, s)
	}
	return id, nil
}

// --- items ---

// ToAPIItem converts a domain item to its wire form.
func ToAPIItem(it model.Item) api.Item {
	return api.Item{
		ID:          it.ID.String(),
		Name:        it.Name,
		Quantity:    it.Quantity,
		Category:    it.Category,
		ImageURL:    it.ImageURL,
		StoragePath: it.StoragePath,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

// ToAPIItems keeps order and never returns nil.
func ToAPIItems(in []model.Item) []api.Item {
	out := make([]api.Item, 0, len(in))
	for _, it := range in {
		out = append(out, ToAPIItem(it))
	}
	return out
}

// FromAPIItem converts a wire item back to the domain form.
func FromAPIItem(in api.Item) (model.Item, error) {
	id, err := ParseID(in.ID)
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{
		ID:          id,
		Name:        in.Name,
		Quantity:    in.Quantity,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		StoragePath: in.StoragePath,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}, nil
}

// FromAPIItems stops at the first malformed item.
func FromAPIItems(in []api.Item) ([]model.Item, error) {
	out := make([]model.Item, 0, len(in))
	for i, it := range in {
		m, err := FromAPIItem(it)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func FromCreateRequest(in *api.CreateItemRequest) model.NewItem {
	return model.NewItem{Name: in.Name, Quantity: in.Quantity, Category: in.Category}
}

func ToCreateRequest(in model.NewItem) *api.CreateItemRequest {
	return &api.CreateItemRequest{Name: in.Name, Quantity: in.Quantity, Category: in.Category}
}

// FromUpdateRequest builds the patch. Image fields are only set by AttachImage.
func FromUpdateRequest(in *api.UpdateItemRequest) (u.UUID, model.ItemPatch, error) {
	id, err := ParseID(in.ID)
	if err != nil {
		return u.Nil, model.ItemPatch{}, err
	}
	return id, model.ItemPatch{Name: in.Name, Quantity: in.Quantity, Category: in.Category}, nil
}

func ToUpdateRequest(id u.UUID, p model.ItemPatch) *api.UpdateItemRequest {
	return &api.UpdateItemRequest{ID: id.String(), Name: p.Name, Quantity: p.Quantity, Category: p.Category}
}

// --- settings ---

func ToAPISettings(s model.Settings) *api.Settings {
	return &api.Settings{DarkMode: s.DarkMode, LowStock: s.LowStock, UpdatedAt: s.UpdatedAt}
}

func FromAPISettings(s *api.Settings) model.Settings {
	if s == nil {
		return model.DefaultSettings()
	}
	return model.Settings{DarkMode: s.DarkMode, LowStock: s.LowStock, UpdatedAt: s.UpdatedAt}
}

func FromUpdateSettingsRequest(in *api.UpdateSettingsRequest) model.SettingsPatch {
	return model.SettingsPatch{DarkMode: in.DarkMode, LowStock: in.LowStock}
}

func ToUpdateSettingsRequest(p model.SettingsPatch) *api.UpdateSettingsRequest {
	return &api.UpdateSettingsRequest{DarkMode: p.DarkMode, LowStock: p.LowStock}
}
