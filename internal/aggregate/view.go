package aggregate

import "github.com/and161185/stockkeeper/internal/model"

// View is the derived state a screen renders. It holds the latest snapshot and
// settings plus the user's search/category selection, and recomputes everything
// whenever one of them changes. The snapshot is replaced wholesale, never patched.
type View struct {
	items    []model.Item
	settings model.Settings
	query    string
	category string

	Visible []model.Item
	Summary Summary
}

// NewView returns a view over an empty snapshot with default settings.
func NewView() *View {
	v := &View{settings: model.DefaultSettings(), category: AllCategories}
	v.recompute()
	return v
}

// ApplyItems replaces the item snapshot.
func (v *View) ApplyItems(items []model.Item) {
	v.items = append([]model.Item(nil), items...)
	v.recompute()
}

// ApplySettings replaces the settings value.
func (v *View) ApplySettings(s model.Settings) {
	v.settings = s
	v.recompute()
}

// Search sets the search text and category selection.
func (v *View) Search(query, category string) {
	v.query = query
	if category == "" {
		category = AllCategories
	}
	v.category = category
	v.recompute()
}

// Settings returns the settings the view was last computed with.
func (v *View) Settings() model.Settings { return v.settings }

// Category returns the current category selection. The selection is kept
// even while no item carries that category; it then matches nothing.
func (v *View) Category() string { return v.category }

func (v *View) recompute() {
	v.Summary = Summarize(v.items, v.settings.LowStock)
	v.Visible = Filter(v.items, v.query, v.category)
}
