package handlers

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/files"
	"schedulemanager/internal/storage"
)

// FileHandler serves stored assets by their stored name.
type FileHandler struct {
	store  files.Store
	assets storage.AssetStore
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(store files.Store, assets storage.AssetStore) *FileHandler {
	return &FileHandler{store: store, assets: assets}
}

// ServeHTTP streams the file, using the asset record's MIME type when one
// exists and falling back to the extension.
func (h *FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name := chi.URLParam(r, "name")
	path, err := h.store.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, files.ErrInvalidName):
			http.Error(w, "invalid file name", http.StatusBadRequest)
		case errors.Is(err, fs.ErrNotExist):
			http.Error(w, "file not found", http.StatusNotFound)
		default:
			logger.ErrorContext(ctx, "failed to open stored file", "name", name, "error", err)
			http.Error(w, "failed to open file", http.StatusInternalServerError)
		}
		return
	}

	contentType := ""
	asset, err := h.assets.GetByStoredName(ctx, name)
	switch {
	case err == nil:
		contentType = asset.MimeType
	case !errors.Is(err, storage.ErrNotFound):
		logger.WarnContext(ctx, "failed to load asset record", "name", name, "error", err)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, path)
}
