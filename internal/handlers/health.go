package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"schedulemanager/internal/contextutil"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db          *sql.DB
	pingTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db, pingTimeout: 5 * time.Second}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// ServeHTTP reports liveness plus a database ping. 200 when healthy,
// 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, h.pingTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := h.db.PingContext(pingCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
