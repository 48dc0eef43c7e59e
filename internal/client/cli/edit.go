package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/trophyshop/internal/client/client"
	"github.com/dmitrijs2005/trophyshop/internal/client/models"
	"github.com/dmitrijs2005/trophyshop/internal/client/services"
)

type resource string

const (
	resourceCategories resource = "categories"
	resourceProducts   resource = "products"
	resourceGallery    resource = "gallery"
)

func parseResource(s string) (resource, error) {
	switch s {
	case "category", "categories":
		return resourceCategories, nil
	case "product", "products":
		return resourceProducts, nil
	case "gallery":
		return resourceGallery, nil
	}
	return "", fmt.Errorf("unknown resource %q (category, product, gallery)", s)
}

// resourceAndID parses "<resource> <id>".
func resourceAndID(args []string, usage string) (resource, int64, error) {
	if len(args) != 2 {
		return "", 0, errors.New(usage)
	}
	r, err := parseResource(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := parseID(args[1])
	if err != nil {
		return "", 0, err
	}
	return r, id, nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: add <resource>")
	}
	r, err := parseResource(args[0])
	if err != nil {
		return err
	}
	switch r {
	case resourceCategories:
		return a.editCategory(ctx, &models.Category{})
	case resourceProducts:
		return a.editProduct(ctx, &models.Product{})
	default:
		return a.editGalleryItem(ctx, &models.GalleryItem{})
	}
}

func (a *App) Edit(ctx context.Context, args []string) error {
	r, id, err := resourceAndID(args, "usage: edit <resource> <id>")
	if err != nil {
		return err
	}
	switch r {
	case resourceCategories:
		cats, err := a.catalog.Categories(ctx)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(cats, func(c models.Category) bool { return c.ID == id })
		if i < 0 {
			return client.ErrNotFound
		}
		return a.editCategory(ctx, &cats[i])
	case resourceProducts:
		p, err := a.catalog.Product(ctx, id)
		if err != nil {
			return err
		}
		return a.editProduct(ctx, p)
	default:
		items, err := a.catalog.Gallery(ctx)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(items, func(it models.GalleryItem) bool { return it.ID == id })
		if i < 0 {
			return client.ErrNotFound
		}
		return a.editGalleryItem(ctx, &items[i])
	}
}

func (a *App) editCategory(ctx context.Context, c *models.Category) error {
	var err error
	if c.Name, err = GetWithDefault(a.reader, "Name", c.Name, a.out); err != nil {
		return err
	}
	if c.Description, err = GetWithDefault(a.reader, "Description", c.Description, a.out); err != nil {
		return err
	}
	saved, err := a.admin.SaveCategory(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved category #%d\n", saved.ID)
	return nil
}

func (a *App) editProduct(ctx context.Context, p *models.Product) error {
	var err error
	if p.Name, err = GetWithDefault(a.reader, "Name", p.Name, a.out); err != nil {
		return err
	}
	if p.Description, err = GetWithDefault(a.reader, "Description", p.Description, a.out); err != nil {
		return err
	}
	cat, err := GetWithDefault(a.reader, "Category id", categoryInput(p.CategoryID), a.out)
	if err != nil {
		return err
	}
	if cat == "" {
		p.CategoryID = nil
	} else {
		id, err := parseID(cat)
		if err != nil {
			return err
		}
		p.CategoryID = &id
	}
	image, err := a.promptImage()
	if err != nil {
		return err
	}
	saved, err := a.admin.SaveProduct(ctx, p, image)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved product #%d %s\n", saved.ID, saved.ImageURL)
	return nil
}

func (a *App) editGalleryItem(ctx context.Context, it *models.GalleryItem) error {
	var err error
	if it.Title, err = GetWithDefault(a.reader, "Title", it.Title, a.out); err != nil {
		return err
	}
	if it.Description, err = GetWithDefault(a.reader, "Description", it.Description, a.out); err != nil {
		return err
	}
	image, err := a.promptImage()
	if err != nil {
		return err
	}
	saved, err := a.admin.SaveGalleryItem(ctx, it, image)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved gallery item #%d %s\n", saved.ID, saved.ImageURL)
	return nil
}

// promptImage asks for an optional image path; nil means keep the current one.
func (a *App) promptImage() (*services.Image, error) {
	path, err := getSimpleText(a.reader, "Image file (empty to keep current)", a.out)
	if err != nil || path == "" {
		return nil, err
	}
	return loadImage(path)
}

func (a *App) Delete(ctx context.Context, args []string) error {
	r, id, err := resourceAndID(args, "usage: delete <resource> <id>")
	if err != nil {
		return err
	}
	switch r {
	case resourceCategories:
		err = a.admin.DeleteCategory(ctx, id)
	case resourceProducts:
		err = a.admin.DeleteProduct(ctx, id)
	default:
		err = a.admin.DeleteGalleryItem(ctx, id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s #%d\n", r, id)
	return nil
}

// Reorder takes the complete new order, e.g. "reorder product 3 1 2".
func (a *App) Reorder(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reorder <resource> <id>...")
	}
	r, err := parseResource(args[0])
	if err != nil {
		return err
	}
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}
	if err := a.admin.Reorder(ctx, string(r), ids); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Reordered %d %s\n", len(ids), r)
	return nil
}

func categoryInput(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}
