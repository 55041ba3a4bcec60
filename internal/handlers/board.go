package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"schedulemanager/internal/contextutil"
	"schedulemanager/internal/workspace"
)

// BoardHandler serves the month board view.
type BoardHandler struct {
	svc *workspace.Service
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(svc *workspace.Service) *BoardHandler {
	return &BoardHandler{svc: svc}
}

// ServeHTTP responds with the board rows for ?user=...&month=YYYY-MM.
func (h *BoardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "user query parameter is required", http.StatusBadRequest)
		return
	}
	month := r.URL.Query().Get("month")

	rows, err := h.svc.Board(ctx, userID, month)
	if err != nil {
		if errors.Is(err, workspace.ErrInvalidMonth) {
			http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		logger.ErrorContext(ctx, "failed to build board", "user", userID, "month", month, "error", err)
		http.Error(w, "failed to build board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		logger.ErrorContext(ctx, "failed to encode board rows", "error", err)
	}
}
