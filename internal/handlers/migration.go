package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/migration"
)

// maxUploadBytes bounds the multipart form size; the import engine applies its
// own decompressed-size budget on top of this.
const maxUploadBytes = 512 << 20

// MigrationHandler handles legacy archive import requests.
type MigrationHandler struct {
	svc *migration.Service
}

// NewMigrationHandler creates a new MigrationHandler.
func NewMigrationHandler(svc *migration.Service) *MigrationHandler {
	return &MigrationHandler{svc: svc}
}

// ServeHTTP accepts a multipart upload (field "file") for the user named by
// the X-User-ID header and responds with the import report.
func (h *MigrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID := r.Header.Get("X-User-ID")
	if _, err := uuid.Parse(userID); err != nil {
		http.Error(w, "valid X-User-ID header is required", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing or unreadable upload", "error", err)
		http.Error(w, "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	report := h.svc.ImportArchive(ctx, userID, data, header.Filename)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.ErrorContext(ctx, "failed to encode import report", "error", err)
	}
}
