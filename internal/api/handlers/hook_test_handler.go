package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/retrolist/games-service/internal/api/response"
)

// HookTestHandler is a debugging receiver: a pair of endpoints that can be
// registered as webhook recipients so deliveries can be observed in the
// service's own logs during development.
type HookTestHandler struct{}

// NewHookTestHandler creates a new hook test handler.
func NewHookTestHandler() *HookTestHandler {
	return &HookTestHandler{}
}

// Receive handles POST /v1/webhooks/hook-test/{n}. It logs the delivered
// payload and signature headers without verifying them.
func (h *HookTestHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.RespondBadRequest(w, "Failed to read request body")
		return
	}

	slog.InfoContext(r.Context(), "Test hook received delivery",
		"receiver", r.PathValue("n"),
		"webhook_id", r.Header.Get("webhook-id"),
		"webhook_timestamp", r.Header.Get("webhook-timestamp"),
		"body", string(body),
	)

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
