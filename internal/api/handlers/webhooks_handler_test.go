package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrolist/games-service/internal/api/middleware"
	"github.com/retrolist/games-service/internal/apperrors"
	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/models"
)

// mockWebhooksService mocks WebhooksService for handler tests.
type mockWebhooksService struct {
	registerFunc func(ctx context.Context, owner string, req *models.CreateWebhookRequest) (*models.Webhook, error)
	getFunc      func(ctx context.Context, owner string, id uuid.UUID) (*models.Webhook, error)
	listFunc     func(ctx context.Context, owner string) (*models.ListWebhooksResponse, error)
	deleteFunc   func(ctx context.Context, owner string, id uuid.UUID) error
}

func (m *mockWebhooksService) RegisterWebhook(ctx context.Context, owner string, req *models.CreateWebhookRequest) (*models.Webhook, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, owner, req)
	}

	return nil, nil
}

func (m *mockWebhooksService) GetWebhook(ctx context.Context, owner string, id uuid.UUID) (*models.Webhook, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, owner, id)
	}

	return nil, nil
}

func (m *mockWebhooksService) ListWebhooks(ctx context.Context, owner string) (*models.ListWebhooksResponse, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, owner)
	}

	return &models.ListWebhooksResponse{Data: []models.Webhook{}}, nil
}

func (m *mockWebhooksService) DeleteWebhook(ctx context.Context, owner string, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, owner, id)
	}

	return nil
}

// authedRequest builds a request carrying the owner identity the way the
// Auth middleware would.
func authedRequest(t *testing.T, method, target, owner string, body string) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), middleware.OwnerContextKey, owner)

	return req.WithContext(ctx)
}

func TestWebhooksHandler_Create(t *testing.T) {
	t.Run("valid registration returns 201", func(t *testing.T) {
		mock := &mockWebhooksService{
			registerFunc: func(_ context.Context, owner string, req *models.CreateWebhookRequest) (*models.Webhook, error) {
				assert.Equal(t, "a@x.com", owner)
				assert.Equal(t, "on-create-game", req.EventType)

				return &models.Webhook{
					ID:           uuid.Must(uuid.NewV7()),
					Owner:        owner,
					EventType:    datatypes.GameCreated,
					RecipientURL: req.RecipientURL,
					SigningKey:   "whsec_test",
					CreatedAt:    time.Now(),
				}, nil
			},
		}
		h := NewWebhooksHandler(mock)

		req := authedRequest(t, http.MethodPost, "http://test/v1/webhooks", "a@x.com",
			`{"event_type":"on-create-game","recipient_url":"https://example.com/hook"}`)
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp models.Webhook

		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, datatypes.GameCreated, resp.EventType)
		assert.Equal(t, "whsec_test", resp.SigningKey)
	})

	t.Run("unknown event type returns 400", func(t *testing.T) {
		h := NewWebhooksHandler(&mockWebhooksService{})

		req := authedRequest(t, http.MethodPost, "http://test/v1/webhooks", "a@x.com",
			`{"event_type":"on-create-user","recipient_url":"https://example.com/hook"}`)
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "event_type")
	})

	t.Run("missing recipient url returns 400", func(t *testing.T) {
		h := NewWebhooksHandler(&mockWebhooksService{})

		req := authedRequest(t, http.MethodPost, "http://test/v1/webhooks", "a@x.com",
			`{"event_type":"on-create-game"}`)
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate registration returns 409", func(t *testing.T) {
		mock := &mockWebhooksService{
			registerFunc: func(context.Context, string, *models.CreateWebhookRequest) (*models.Webhook, error) {
				return nil, apperrors.NewConflictError("webhook already registered for this event type and recipient URL")
			},
		}
		h := NewWebhooksHandler(mock)

		req := authedRequest(t, http.MethodPost, "http://test/v1/webhooks", "a@x.com",
			`{"event_type":"on-create-game","recipient_url":"https://example.com/hook"}`)
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		h := NewWebhooksHandler(&mockWebhooksService{})

		req := authedRequest(t, http.MethodPost, "http://test/v1/webhooks", "a@x.com", `{not json`)
		rec := httptest.NewRecorder()

		h.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWebhooksHandler_Get(t *testing.T) {
	t.Run("invalid uuid returns 400", func(t *testing.T) {
		h := NewWebhooksHandler(&mockWebhooksService{})

		req := authedRequest(t, http.MethodGet, "http://test/v1/webhooks/not-a-uuid", "a@x.com", "")
		req.SetPathValue("id", "not-a-uuid")
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("foreign webhook returns 404", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		mock := &mockWebhooksService{
			getFunc: func(context.Context, string, uuid.UUID) (*models.Webhook, error) {
				return nil, apperrors.NewNotFoundError("webhook", "webhook not found")
			},
		}
		h := NewWebhooksHandler(mock)

		req := authedRequest(t, http.MethodGet, "http://test/v1/webhooks/"+id.String(), "b@x.com", "")
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWebhooksHandler_List(t *testing.T) {
	mock := &mockWebhooksService{
		listFunc: func(_ context.Context, owner string) (*models.ListWebhooksResponse, error) {
			assert.Equal(t, "a@x.com", owner)

			return &models.ListWebhooksResponse{
				Data: []models.Webhook{{
					ID:           uuid.Must(uuid.NewV7()),
					Owner:        owner,
					EventType:    datatypes.GameDeleted,
					RecipientURL: "https://example.com/hook",
				}},
				Total: 1,
			}, nil
		},
	}
	h := NewWebhooksHandler(mock)

	req := authedRequest(t, http.MethodGet, "http://test/v1/webhooks", "a@x.com", "")
	rec := httptest.NewRecorder()

	h.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ListWebhooksResponse

	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, datatypes.GameDeleted, resp.Data[0].EventType)
}

func TestWebhooksHandler_Delete(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	deleted := false

	mock := &mockWebhooksService{
		deleteFunc: func(_ context.Context, owner string, got uuid.UUID) error {
			assert.Equal(t, "a@x.com", owner)
			assert.Equal(t, id, got)
			deleted = true

			return nil
		},
	}
	h := NewWebhooksHandler(mock)

	req := authedRequest(t, http.MethodDelete, "http://test/v1/webhooks/"+id.String(), "a@x.com", "")
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}
