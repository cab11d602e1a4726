package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/retrolist/games-service/internal/api/middleware"
	"github.com/retrolist/games-service/internal/api/response"
	"github.com/retrolist/games-service/internal/api/validation"
	"github.com/retrolist/games-service/internal/models"
)

// WebhooksService defines the interface for webhook registration business logic.
type WebhooksService interface {
	RegisterWebhook(ctx context.Context, owner string, req *models.CreateWebhookRequest) (*models.Webhook, error)
	GetWebhook(ctx context.Context, owner string, id uuid.UUID) (*models.Webhook, error)
	ListWebhooks(ctx context.Context, owner string) (*models.ListWebhooksResponse, error)
	DeleteWebhook(ctx context.Context, owner string, id uuid.UUID) error
}

// WebhooksHandler handles HTTP requests for webhook registrations
type WebhooksHandler struct {
	service WebhooksService
}

// NewWebhooksHandler creates a new webhooks handler
func NewWebhooksHandler(service WebhooksService) *WebhooksHandler {
	return &WebhooksHandler{service: service}
}

// Create handles POST /v1/webhooks
// @Summary Register a webhook
// @Description Registers a webhook for one event type; the signing key is returned once in the response
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body models.CreateWebhookRequest true "Webhook registration"
// @Success 201 {object} models.Webhook
// @Failure 400 {object} response.ProblemDetails
// @Failure 409 {object} response.ProblemDetails "Already registered for this event type and URL"
// @Security BearerAuth
// @Router /v1/webhooks [post]
func (h *WebhooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWebhookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	owner := middleware.OwnerFromContext(r.Context())

	webhook, err := h.service.RegisterWebhook(r.Context(), owner, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, webhook)
}

// Get handles GET /v1/webhooks/{id}
// @Summary Get a webhook registration
// @Tags Webhooks
// @Produce json
// @Param id path string true "Webhook ID (UUID)"
// @Success 200 {object} models.Webhook
// @Failure 404 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/webhooks/{id} [get]
func (h *WebhooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")
		return
	}

	owner := middleware.OwnerFromContext(r.Context())

	webhook, err := h.service.GetWebhook(r.Context(), owner, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, webhook)
}

// List handles GET /v1/webhooks
// @Summary List the caller's webhook registrations
// @Tags Webhooks
// @Produce json
// @Success 200 {object} models.ListWebhooksResponse
// @Security BearerAuth
// @Router /v1/webhooks [get]
func (h *WebhooksHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())

	resp, err := h.service.ListWebhooks(r.Context(), owner)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /v1/webhooks/{id}
// @Summary Delete a webhook registration
// @Tags Webhooks
// @Param id path string true "Webhook ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/webhooks/{id} [delete]
func (h *WebhooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "Invalid UUID format")
		return
	}

	owner := middleware.OwnerFromContext(r.Context())

	if err := h.service.DeleteWebhook(r.Context(), owner, id); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
