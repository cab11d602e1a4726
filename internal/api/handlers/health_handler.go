package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/retrolist/games-service/internal/api/response"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health. Reports 503 when the database is unreachable.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
