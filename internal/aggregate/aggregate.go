// Package aggregate computes derived views over an item snapshot.
//
// Every function is pure and is re-run in full for each snapshot the client
// receives. That is O(n) per update, which is fine for a single shared
// inventory; nothing here is incremental.
package aggregate

import (
	"sort"
	"strings"

	"github.com/and161185/stockkeeper/internal/model"
)

// AllCategories is the synthetic facet that matches every item.
const AllCategories = "All"

// Categories returns AllCategories followed by the sorted distinct non-empty categories.
func Categories(items []model.Item) []string {
	seen := make(map[string]struct{}, len(items))
	var cats []string
	for _, it := range items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		cats = append(cats, it.Category)
	}
	sort.Strings(cats)
	return append([]string{AllCategories}, cats...)
}

// Matches reports whether it passes the search text and category selection.
// Name matching is a case-insensitive substring test on the query as typed;
// category matching is exact.
func Matches(it model.Item, query, category string) bool {
	q := strings.ToLower(query)
	if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
		return false
	}
	return category == "" || category == AllCategories || category == it.Category
}

// Filter returns the items passing Matches, in snapshot order.
func Filter(items []model.Item, query, category string) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if Matches(it, query, category) {
			out = append(out, it)
		}
	}
	return out
}

// LowStock returns items with quantity <= threshold, ascending by quantity.
// Equal quantities keep their snapshot order.
func LowStock(items []model.Item, threshold int64) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Quantity <= threshold {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

// TotalStock sums all quantities.
func TotalStock(items []model.Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Quantity
	}
	return total
}

// MostStocked returns the item with the strictly greatest quantity.
// On ties the first one in snapshot order wins. ok is false for an empty snapshot.
func MostStocked(items []model.Item) (best model.Item, ok bool) {
	for i, it := range items {
		if i == 0 || it.Quantity > best.Quantity {
			best = it
		}
	}
	return best, len(items) > 0
}

// Summary bundles the figures a dashboard renders for one snapshot.
type Summary struct {
	ItemCount   int
	TotalStock  int64
	Threshold   int64
	LowStock    []model.Item
	MostStocked *model.Item
	Categories  []string
}

// Summarize computes every aggregate for items under threshold.
func Summarize(items []model.Item, threshold int64) Summary {
	s := Summary{
		ItemCount:  len(items),
		TotalStock: TotalStock(items),
		Threshold:  threshold,
		LowStock:   LowStock(items, threshold),
		Categories: Categories(items),
	}
	if best, ok := MostStocked(items); ok {
		s.MostStocked = &best
	}
	return s
}
