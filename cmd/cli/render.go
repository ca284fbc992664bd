package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/and161185/stockkeeper/internal/aggregate"
	"github.com/and161185/stockkeeper/internal/model"
)

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printItems(w io.Writer, items []model.Item, threshold int64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tCATEGORY\tIMAGE\t")
	for _, it := range items {
		mark := ""
		if it.Quantity <= threshold {
			mark = " !"
		}
		img := "-"
		if it.ImageURL != nil {
			img = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d%s\t%s\t%s\t\n", it.ID, it.Name, it.Quantity, mark, it.Category, img)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s aggregate.Summary) {
	fmt.Fprintf(w, "items:        %d\n", s.ItemCount)
	fmt.Fprintf(w, "total stock:  %d\n", s.TotalStock)
	fmt.Fprintf(w, "low stock:    %d (threshold %d)\n", len(s.LowStock), s.Threshold)
	if s.MostStocked != nil {
		fmt.Fprintf(w, "most stocked: %s (%d)\n", s.MostStocked.Name, s.MostStocked.Quantity)
	} else {
		fmt.Fprintln(w, "most stocked: -")
	}
	fmt.Fprintf(w, "categories:   %s\n", strings.Join(s.Categories, ", "))
}

func printSettings(w io.Writer, s model.Settings) {
	theme := "light"
	if s.DarkMode {
		theme = "dark"
	}
	fmt.Fprintf(w, "theme: %s\nlow-stock threshold: %d\n", theme, s.LowStock)
}

func printDashboard(w io.Writer, v *aggregate.View) {
	fmt.Fprintln(w, strings.Repeat("-", 40))
	printSummary(w, v.Summary)
	fmt.Fprintf(w, "showing %d item(s) in %s\n", len(v.Visible), v.Category())
	_ = printItems(w, v.Visible, v.Summary.Threshold)
}
