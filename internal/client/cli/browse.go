package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/trophyshop/internal/client/models"
)

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, c := range cats {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, oneLine(c.Description))
	}
	return w.Flush()
}

// parseProductFilter reads "category=<id>" and treats the remaining words as
// the search text.
func parseProductFilter(args []string) (models.ProductFilter, error) {
	var f models.ProductFilter
	var words []string
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, "category="); ok {
			id, err := parseID(v)
			if err != nil {
				return f, err
			}
			f.CategoryID = &id
			continue
		}
		words = append(words, arg)
	}
	f.Query = strings.Join(words, " ")
	return f, nil
}

func (a *App) Products(ctx context.Context, args []string) error {
	filter, err := parseProductFilter(args)
	if err != nil {
		return err
	}
	products, err := a.catalog.Products(ctx, filter)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tIMAGE")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, categoryLabel(p.CategoryID), p.ImageURL)
	}
	return w.Flush()
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	p, err := a.catalog.Product(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "#%d %s\n", p.ID, p.Name)
	fmt.Fprintf(a.out, "Category: %s\n", categoryLabel(p.CategoryID))
	if p.ImageURL != "" {
		fmt.Fprintf(a.out, "Image: %s\n", p.ImageURL)
	}
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(a.out, "Updated: %s\n", humanize.Time(p.UpdatedAt))
	}
	if p.Description != "" {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, p.Description)
	}
	return nil
}

func (a *App) Gallery(ctx context.Context) error {
	items, err := a.catalog.Gallery(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tIMAGE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\n", it.ID, it.Title, it.ImageURL)
	}
	return w.Flush()
}

// Cache prints the persisted cache entries or, with "clear", drops them.
func (a *App) Cache(ctx context.Context, args []string) error {
	sub := "status"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "status":
		entries, err := a.catalog.CacheStatus(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(a.out, "Cache is empty")
			return nil
		}
		w := a.table()
		fmt.Fprintln(w, "KEY\tSIZE\tUPDATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Key, humanize.Bytes(uint64(e.Size)), updatedLabel(e.UpdatedAt))
		}
		fmt.Fprintf(w, "\nFreshness window: %s\n", a.config.CacheFreshnessWindow)
		return w.Flush()
	case "clear":
		if err := a.catalog.ClearCache(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Cache cleared")
		return nil
	}
	return fmt.Errorf("usage: cache [status|clear]")
}

func categoryLabel(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func updatedLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func oneLine(s string) string {
	s, _, cut := strings.Cut(s, "\n")
	if cut {
		s += "..."
	}
	return s
}
