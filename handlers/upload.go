package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/booknest/backend/service"
)

type UploadHandler struct {
	Covers   *service.CoverStorage
	MaxBytes int64
}

type UploadResponse struct {
	Key string `json:"key"`
}

// UploadCover accepts a multipart image and stores it as a book cover.
// The returned key goes into a book's coverKey field on create/update.
func (h *UploadHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	if h.Covers == nil {
		writeError(w, http.StatusServiceUnavailable, "upload not configured (missing S3)")
		return
	}
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(header.Filename)))
	contentType := header.Header.Get("Content-Type")
	allowedByExt := ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".webp"
	allowedByMime := strings.HasPrefix(contentType, "image/")
	if !allowedByExt && !allowedByMime {
		writeError(w, http.StatusBadRequest, "only image files are allowed")
		return
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key, err := h.Covers.Upload(r.Context(), header.Filename, file, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to upload to storage")
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{Key: key})
}
