package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/client/models"
	"github.com/dmitrijs2005/trophyshop/internal/common"
)

// HTTPClient talks to the server JSON API. The session token obtained by
// Login is sent as a Bearer header on every later request.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+c.token)
	}
	c.mu.RUnlock()
	if method == http.MethodGet {
		// Listings are cached locally; intermediaries must not answer for the server.
		req.Header.Set("Cache-Control", "no-cache")
	}
	return req, nil
}

// send executes req and decodes a 2xx JSON body into out when out is not
// nil. Failed answers come back as *APIError, with the body still decoded
// into out when it is JSON.
func (c *HTTPClient) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
	}
	return apiErr
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	var resp struct {
		Token   string `json:"token"`
		IsAdmin bool   `json:"isAdmin"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, &resp)
	if err != nil {
		return err
	}
	if !resp.IsAdmin {
		return ErrForbidden
	}
	c.setToken(resp.Token)
	return nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.setToken("")
	return err
}

// --- public catalog ---

func (c *HTTPClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, &out)
	return out, err
}

func (c *HTTPClient) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := url.Values{}
	if filter.CategoryID != nil {
		q.Set("category", strconv.FormatInt(*filter.CategoryID, 10))
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []models.Product
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var out models.Product
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListGallery(ctx context.Context) ([]models.GalleryItem, error) {
	var out []models.GalleryItem
	err := c.doJSON(ctx, http.MethodGet, "/api/gallery", nil, &out)
	return out, err
}

// --- admin catalog ---

// save creates the record when id is 0 and replaces it otherwise.
func save[T any](ctx context.Context, c *HTTPClient, resource string, id int64, in *T) (*T, error) {
	method, path := http.MethodPost, "/api/admin/"+resource
	if id != 0 {
		method, path = http.MethodPut, fmt.Sprintf("/api/admin/%s/%d", resource, id)
	}
	var out T
	if err := c.doJSON(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) remove(ctx context.Context, resource string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/%s/%d", resource, id), nil, nil)
}

func (c *HTTPClient) SaveCategory(ctx context.Context, cat *models.Category) (*models.Category, error) {
	return save(ctx, c, "categories", cat.ID, cat)
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id int64) error {
	return c.remove(ctx, "categories", id)
}

func (c *HTTPClient) SaveProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	return save(ctx, c, "products", p.ID, p)
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.remove(ctx, "products", id)
}

func (c *HTTPClient) SaveGalleryItem(ctx context.Context, it *models.GalleryItem) (*models.GalleryItem, error) {
	return save(ctx, c, "gallery", it.ID, it)
}

func (c *HTTPClient) DeleteGalleryItem(ctx context.Context, id int64) error {
	return c.remove(ctx, "gallery", id)
}

// Reorder sets the display order of resource ("categories", "products",
// "gallery") to ids.
func (c *HTTPClient) Reorder(ctx context.Context, resource string, ids []int64) error {
	return c.doJSON(ctx, http.MethodPut, "/api/admin/"+resource+"/order", map[string][]int64{"ids": ids}, nil)
}

// --- uploads ---

func (c *HTTPClient) UploadImage(ctx context.Context, area, sessionID, fileName, contentType string, body io.Reader) (*models.StagedUpload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("sessionId", sessionID); err != nil {
		return nil, err
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", formDataDisposition("file", fileName))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/uploads/"+url.PathEscape(area), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.StagedUpload
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func formDataDisposition(field, fileName string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, r.Replace(fileName))
}

// FinalizeUpload promotes (save) or discards (!save) the session's staged
// upload. A failed promotion returns both the error and the result
// carrying the fallback reference.
func (c *HTTPClient) FinalizeUpload(ctx context.Context, area, sessionID string, save bool, path string) (*models.FinalizeResult, error) {
	in := map[string]any{"sessionId": sessionID, "save": save}
	if path != "" {
		in["path"] = path
	}
	var out models.FinalizeResult
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/uploads/"+url.PathEscape(area)+"/finalize", in, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadGateway {
			return &out, err
		}
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CleanupUploads(ctx context.Context, area string, paths []string) ([]models.CleanupResult, error) {
	var out struct {
		Results []models.CleanupResult `json:"results"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/admin/uploads/"+url.PathEscape(area)+"/cleanup", map[string][]string{"paths": paths}, &out)
	return out.Results, err
}
