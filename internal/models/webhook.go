package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/retrolist/games-service/internal/datatypes"
)

// Webhook represents a webhook registration: a subscription by one owner to
// one event type, delivered to one recipient URL. Registrations are created
// and deleted, never mutated; the (owner, event type, recipient URL) triple
// is unique.
type Webhook struct {
	ID           uuid.UUID           `json:"id"`
	Owner        string              `json:"owner"`
	EventType    datatypes.EventType `json:"event_type"`
	RecipientURL string              `json:"recipient_url"`
	SigningKey   string              `json:"signing_key"`
	CreatedAt    time.Time           `json:"created_at"`
}

// MarshalJSON writes EventType in its string form.
func (w *Webhook) MarshalJSON() ([]byte, error) {
	type Alias Webhook
	aux := &struct {
		EventType string `json:"event_type"`
		*Alias
	}{
		EventType: w.EventType.String(),
		Alias:     (*Alias)(w),
	}

	return json.Marshal(aux)
}

// UnmarshalJSON parses EventType from its string form.
func (w *Webhook) UnmarshalJSON(data []byte) error {
	type Alias Webhook
	aux := &struct {
		EventType string `json:"event_type"`
		*Alias
	}{
		Alias: (*Alias)(w),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	et, ok := datatypes.ParseEventType(aux.EventType)
	if !ok {
		return fmt.Errorf("%w: %s", datatypes.ErrInvalidEventType, aux.EventType)
	}

	w.EventType = et

	return nil
}

// CreateWebhookRequest represents the request to register a webhook.
type CreateWebhookRequest struct {
	EventType    string `json:"event_type" validate:"required,event_type"`
	RecipientURL string `json:"recipient_url" validate:"required,no_null_bytes,url,max=2048"`
}

// ListWebhooksResponse represents the response for listing the caller's
// webhook registrations.
type ListWebhooksResponse struct {
	Data  []Webhook `json:"data"`
	Total int       `json:"total"`
}
