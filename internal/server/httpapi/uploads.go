package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/server/staging"
)

// multipartOverhead leaves room for form fields and part headers on top of
// the file itself.
const multipartOverhead = 64 << 10

type uploadResponse struct {
	URL         string `json:"url"`
	SessionID   string `json:"sessionId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type finalizeRequest struct {
	SessionID string `json:"sessionId"`
	Save      bool   `json:"save"`
	Path      string `json:"path,omitempty"`
}

type finalizeResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	FinalURL    string `json:"finalUrl,omitempty"`
	FallbackURL string `json:"fallbackUrl,omitempty"`
	Deleted     int    `json:"deleted,omitempty"`
}

type cleanupRequest struct {
	Paths []string `json:"paths"`
}

type cleanupResponse struct {
	Results []staging.CleanupResult `json:"results"`
}

func (h *Handler) pipeline(w http.ResponseWriter, r *http.Request) (UploadPipeline, bool) {
	p, ok := h.uploads[r.PathValue("area")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown upload area")
	}
	return p, ok
}

// Upload stages the multipart "file" field for the session in "sessionId".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pipeline(w, r)
	if !ok {
		return
	}
	maxSize := p.Config().MaxFileSize
	if r.ContentLength > maxSize+multipartOverhead {
		h.writeServiceError(w, r, p.TooLarge(r.ContentLength))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			size := r.ContentLength
			if size <= maxSize {
				size = tooBig.Limit
			}
			h.writeServiceError(w, r, p.TooLarge(size))
			return
		}
		h.writeServiceError(w, r, common.NewValidationError("file", "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeServiceError(w, r, common.NewValidationError("file", "no file uploaded"))
		return
	}
	defer file.Close()

	staged, err := p.Accept(r.Context(), staging.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, r.FormValue("sessionId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		URL:         staged.URL,
		SessionID:   staged.SessionID,
		FileName:    staged.OriginalFileName,
		ContentType: staged.ContentType,
		Size:        staged.SizeBytes,
	})
}

// Finalize promotes the staged path on save and discards the session's
// staged files otherwise. A failed promotion answers 502 with the
// temporary reference as fallback; a failed cancel is reported but not
// treated as a request error.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pipeline(w, r)
	if !ok {
		return
	}
	var req finalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := p.Finalize(r.Context(), req.SessionID, req.Save, req.Path)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrCleanup) && res != nil:
		h.logger.Warn(r.Context(), "session cleanup incomplete", "session", req.SessionID, "error", err)
	case errors.Is(err, common.ErrTransport) && res != nil:
		h.logger.Error(r.Context(), "promotion failed", "session", req.SessionID, "error", err)
		writeJSON(w, http.StatusBadGateway, toFinalizeResponse(res))
		return
	default:
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFinalizeResponse(res))
}

func toFinalizeResponse(res *staging.FinalizeResult) finalizeResponse {
	return finalizeResponse{
		Success:     res.Success,
		Message:     res.Message,
		FinalURL:    res.FinalURL,
		FallbackURL: res.FallbackURL,
		Deleted:     res.Deleted,
	}
}

// Cleanup deletes individual temporary references, e.g. superseded
// previews.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pipeline(w, r)
	if !ok {
		return
	}
	var req cleanupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cleanupResponse{Results: p.Cleanup(r.Context(), req.Paths)})
}
