package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/server/models"
)

type orderRequest struct {
	IDs []int64 `json:"ids"`
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// --- categories ---

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := decodeJSON(r, &c); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out, err := h.catalog.CreateCategory(r.Context(), &c)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var c models.Category
	if err := decodeJSON(r, &c); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	c.ID = id
	out, err := h.catalog.UpdateCategory(r.Context(), &c)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.catalog.DeleteCategory)
}

func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	h.reorder(w, r, h.catalog.ReorderCategories)
}

// --- products ---

// ListProducts accepts ?category=<id> and ?q=<text>.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var filter models.ProductFilter
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeServiceError(w, r, common.NewValidationError("category", "must be an integer"))
			return
		}
		filter.CategoryID = &id
	}
	filter.Query = strings.TrimSpace(q.Get("q"))

	out, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out, err := h.catalog.CreateProduct(r.Context(), &p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var p models.Product
	if err := decodeJSON(r, &p); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	p.ID = id
	out, err := h.catalog.UpdateProduct(r.Context(), &p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.catalog.DeleteProduct)
}

func (h *Handler) ReorderProducts(w http.ResponseWriter, r *http.Request) {
	h.reorder(w, r, h.catalog.ReorderProducts)
}

// --- gallery ---

func (h *Handler) ListGallery(w http.ResponseWriter, r *http.Request) {
	out, err := h.catalog.ListGallery(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	var it models.GalleryItem
	if err := decodeJSON(r, &it); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	out, err := h.catalog.CreateGalleryItem(r.Context(), &it)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) UpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var it models.GalleryItem
	if err := decodeJSON(r, &it); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	it.ID = id
	out, err := h.catalog.UpdateGalleryItem(r.Context(), &it)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.catalog.DeleteGalleryItem)
}

func (h *Handler) ReorderGallery(w http.ResponseWriter, r *http.Request) {
	h.reorder(w, r, h.catalog.ReorderGallery)
}

// --- shared ---

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, ids []int64) error) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := apply(r.Context(), req.IDs); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
