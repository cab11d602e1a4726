package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"

	"github.com/retrolist/games-service/internal/apperrors"
	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/models"
)

// WebhooksRepository defines the interface for webhook registration data
// access.
type WebhooksRepository interface {
	Create(ctx context.Context, webhook *models.Webhook) (*models.Webhook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Webhook, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WebhooksService handles business logic for webhook registrations.
// Registrations are owner-scoped: a caller only ever sees and manages
// their own.
type WebhooksService struct {
	repo WebhooksRepository
}

// NewWebhooksService creates a new webhooks service.
func NewWebhooksService(repo WebhooksRepository) *WebhooksService {
	return &WebhooksService{repo: repo}
}

// RegisterWebhook registers a new webhook for owner. A signing key is
// generated server-side and returned once in the response; registering the
// same (event type, recipient URL) pair twice is a conflict.
func (s *WebhooksService) RegisterWebhook(ctx context.Context, owner string, req *models.CreateWebhookRequest) (*models.Webhook, error) {
	eventType, ok := datatypes.ParseEventType(req.EventType)
	if !ok {
		return nil, apperrors.NewInvalidInputError("event_type",
			"unknown event type, expected one of: "+joinEventTypes())
	}

	key, err := generateSigningKey()
	if err != nil {
		return nil, err
	}

	webhook := &models.Webhook{
		ID:           uuid.Must(uuid.NewV7()),
		Owner:        owner,
		EventType:    eventType,
		RecipientURL: req.RecipientURL,
		SigningKey:   key,
	}

	return s.repo.Create(ctx, webhook)
}

// generateSigningKey generates a cryptographically secure signing key
// in the format expected by Standard Webhooks: "whsec_" + base64(32 random bytes)
func generateSigningKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return "whsec_" + base64.StdEncoding.EncodeToString(key), nil
}

func joinEventTypes() string {
	return strings.Join(datatypes.AllEventTypes(), ", ")
}

// GetWebhook retrieves one of the caller's webhook registrations by ID.
// Registrations belonging to other owners are reported as not found rather
// than forbidden, so IDs cannot be probed across owners.
func (s *WebhooksService) GetWebhook(ctx context.Context, owner string, id uuid.UUID) (*models.Webhook, error) {
	webhook, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if webhook.Owner != owner {
		return nil, apperrors.NewNotFoundError("webhook", "webhook not found")
	}

	return webhook, nil
}

// ListWebhooks retrieves all of the caller's webhook registrations.
func (s *WebhooksService) ListWebhooks(ctx context.Context, owner string) (*models.ListWebhooksResponse, error) {
	webhooks, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &models.ListWebhooksResponse{
		Data:  webhooks,
		Total: len(webhooks),
	}, nil
}

// DeleteWebhook removes one of the caller's webhook registrations.
func (s *WebhooksService) DeleteWebhook(ctx context.Context, owner string, id uuid.UUID) error {
	if _, err := s.GetWebhook(ctx, owner, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
