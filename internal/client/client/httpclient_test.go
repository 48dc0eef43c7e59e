package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trophyshop/internal/client/models"
	"github.com/dmitrijs2005/trophyshop/internal/common"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 2*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresTokenForLaterRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "tok", "isAdmin": in["username"] == "admin"})
	})
	var gotAuth string
	mux.HandleFunc("DELETE /api/admin/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	err := c.Login(ctx, "admin", "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.LoggedIn())

	assert.ErrorIs(t, c.Login(ctx, "customer", "pw"), ErrForbidden)
	assert.False(t, c.LoggedIn())

	require.NoError(t, c.Login(ctx, "admin", "pw"))
	assert.True(t, c.LoggedIn())

	require.NoError(t, c.DeleteProduct(ctx, 4))
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestListProducts_QueryAndNoCache(t *testing.T) {
	mux := http.NewServeMux()
	var gotQuery, gotCacheControl string
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCacheControl = r.Header.Get("Cache-Control")
		writeJSON(w, http.StatusOK, []models.Product{{ID: 1, Name: "Cup"}})
	})
	c := newTestClient(t, mux)

	cat := int64(3)
	got, err := c.ListProducts(context.Background(), models.ProductFilter{CategoryID: &cat, Query: "gold cup"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "category=3&q=gold+cup", gotQuery)
	assert.Equal(t, "no-cache", gotCacheControl)

	_, err = c.ListProducts(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestSave_CreateVersusUpdate(t *testing.T) {
	mux := http.NewServeMux()
	var calls []string
	echo := func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		var in models.Category
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in.ID == 0 {
			in.ID = 9
		}
		writeJSON(w, http.StatusOK, in)
	}
	mux.HandleFunc("POST /api/admin/categories", echo)
	mux.HandleFunc("PUT /api/admin/categories/{id}", echo)
	c := newTestClient(t, mux)
	ctx := context.Background()

	created, err := c.SaveCategory(ctx, &models.Category{Name: "Cups"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)

	_, err = c.SaveCategory(ctx, &models.Category{ID: 9, Name: "Cups"})
	require.NoError(t, err)
	assert.Equal(t, []string{"POST /api/admin/categories", "PUT /api/admin/categories/9"}, calls)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, common.ErrValidation},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusRequestEntityTooLarge, common.ErrPayloadTooLarge},
		{http.StatusBadGateway, common.ErrTransport},
		{http.StatusServiceUnavailable, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/gallery", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, map[string]string{"error": "nope"})
			})
			_, err := newTestClient(t, mux).ListGallery(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorContains(t, err, "nope")
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	srv.Close()

	err := NewHTTPClient(srv.URL, time.Second).Ping(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUploadImage_Multipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/uploads/{area}", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		writeJSON(w, http.StatusCreated, models.StagedUpload{
			URL:         "/media/temp/" + r.PathValue("area") + "/" + r.FormValue("sessionId") + "-1-" + hdr.Filename,
			SessionID:   r.FormValue("sessionId"),
			FileName:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        int64(len(data)),
		})
	})
	c := newTestClient(t, mux)

	up, err := c.UploadImage(context.Background(), "products", "s1", "photo.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/media/temp/products/s1-1-photo.png", up.URL)
	assert.Equal(t, "image/png", up.ContentType)
	assert.Equal(t, int64(3), up.Size)
}

func TestFinalizeUpload_FallbackOnPromotionFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/uploads/products/finalize", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["save"] == true {
			writeJSON(w, http.StatusBadGateway, models.FinalizeResult{Message: "could not move", FallbackURL: in["path"].(string)})
			return
		}
		writeJSON(w, http.StatusOK, models.FinalizeResult{Success: true, Deleted: 2})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	res, err := c.FinalizeUpload(ctx, "products", "s1", true, "/media/temp/products/s1-1-a.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrTransport))
	require.NotNil(t, res)
	assert.Equal(t, "/media/temp/products/s1-1-a.png", res.FallbackURL)

	res, err = c.FinalizeUpload(ctx, "products", "s1", false, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Deleted)
}

func TestReorderAndCleanup(t *testing.T) {
	mux := http.NewServeMux()
	var order map[string][]int64
	mux.HandleFunc("PUT /api/admin/gallery/order", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&order))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/admin/uploads/gallery/cleanup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []models.CleanupResult{{Path: "a", Deleted: true}}})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.Reorder(ctx, "gallery", []int64{2, 1}))
	assert.Equal(t, []int64{2, 1}, order["ids"])

	res, err := c.CleanupUploads(ctx, "gallery", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []models.CleanupResult{{Path: "a", Deleted: true}}, res)
}
