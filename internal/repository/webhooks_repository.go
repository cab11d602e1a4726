package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retrolist/games-service/internal/apperrors"
	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/models"
)

// WebhooksRepository handles data access for webhook registrations.
type WebhooksRepository struct {
	db *pgxpool.Pool
}

// NewWebhooksRepository creates a new webhooks repository.
func NewWebhooksRepository(db *pgxpool.Pool) *WebhooksRepository {
	return &WebhooksRepository{db: db}
}

const webhookColumns = `id, owner, event_type, recipient_url, signing_key, created_at`

func scanWebhook(row pgx.Row) (*models.Webhook, error) {
	var (
		w            models.Webhook
		eventTypeStr string
	)

	err := row.Scan(&w.ID, &w.Owner, &eventTypeStr, &w.RecipientURL, &w.SigningKey, &w.CreatedAt)
	if err != nil {
		return nil, err
	}

	et, ok := datatypes.ParseEventType(eventTypeStr)
	if !ok {
		return nil, fmt.Errorf("%w: stored event type %q", datatypes.ErrInvalidEventType, eventTypeStr)
	}

	w.EventType = et

	return &w, nil
}

// Create inserts a new webhook registration. A duplicate
// (owner, event_type, recipient_url) triple is rejected with a ConflictError
// via the table's unique index.
func (r *WebhooksRepository) Create(ctx context.Context, webhook *models.Webhook) (*models.Webhook, error) {
	query := `
		INSERT INTO webhooks (id, owner, event_type, recipient_url, signing_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + webhookColumns

	created, err := scanWebhook(r.db.QueryRow(ctx, query,
		webhook.ID, webhook.Owner, webhook.EventType.String(), webhook.RecipientURL, webhook.SigningKey,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("webhook already registered for this event type and recipient URL")
		}

		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}

	return created, nil
}

// GetByID retrieves a single webhook registration by ID.
func (r *WebhooksRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`

	webhook, err := scanWebhook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("webhook", "webhook not found")
		}

		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}

	return webhook, nil
}

// ListByOwner retrieves all webhook registrations belonging to an owner.
func (r *WebhooksRepository) ListByOwner(ctx context.Context, owner string) ([]models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE owner = $1 ORDER BY created_at DESC`

	return r.queryWebhooks(ctx, query, owner)
}

// ListByEventType retrieves all registrations subscribed to an event type,
// across all owners. This is the dispatch lookup in the default
// (global) configuration.
func (r *WebhooksRepository) ListByEventType(ctx context.Context, eventType datatypes.EventType) ([]models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE event_type = $1 ORDER BY created_at`

	return r.queryWebhooks(ctx, query, eventType.String())
}

// ListByEventTypeAndOwner retrieves registrations for an event type scoped to
// a single owner (dispatch lookup when owner scoping is enabled).
func (r *WebhooksRepository) ListByEventTypeAndOwner(ctx context.Context, eventType datatypes.EventType, owner string) ([]models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE event_type = $1 AND owner = $2 ORDER BY created_at`

	return r.queryWebhooks(ctx, query, eventType.String(), owner)
}

func (r *WebhooksRepository) queryWebhooks(ctx context.Context, query string, args ...interface{}) ([]models.Webhook, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer rows.Close()

	webhooks := []models.Webhook{}

	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}

		webhooks = append(webhooks, *webhook)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhooks: %w", err)
	}

	return webhooks, nil
}

// Delete removes a webhook registration.
func (r *WebhooksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("webhook", "webhook not found")
	}

	return nil
}
