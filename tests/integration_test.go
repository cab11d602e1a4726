package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrolist/games-service/internal/apperrors"
	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/events"
	"github.com/retrolist/games-service/internal/models"
	"github.com/retrolist/games-service/internal/repository"
	"github.com/retrolist/games-service/internal/service"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, datatypes.EventType, string, any) {}

func TestGameLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := service.NewGamesService(repository.NewGamesRepository(db), nopPublisher{})

	req := &models.CreateGameRequest{
		Title:     "GoldenEye 007",
		Console:   "Nintendo 64",
		Condition: 4,
		Price:     35.50,
	}

	created, err := svc.CreateGame(ctx, "tom@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "n64/goldeneye-007", created.ResourceID)

	// A second ad for the same title takes the smallest free suffix.
	second, err := svc.CreateGame(ctx, "ana@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "n64/goldeneye-007(1)", second.ResourceID)

	got, err := svc.GetGame(ctx, "n64/goldeneye-007")
	require.NoError(t, err)
	assert.Equal(t, "tom@example.com", got.Owner)
	assert.Equal(t, 35.50, got.Price)

	// Deleting the base frees its identifier for the next allocation.
	require.NoError(t, svc.DeleteGame(ctx, "tom@example.com", "n64/goldeneye-007"))

	third, err := svc.CreateGame(ctx, "ana@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "n64/goldeneye-007", third.ResourceID)
}

func TestGameListFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := service.NewGamesService(repository.NewGamesRepository(db), nopPublisher{})

	seed := []struct {
		owner, title, console string
	}{
		{"tom@example.com", "Tetris", "gb"},
		{"tom@example.com", "Doom", "pc"},
		{"ana@example.com", "Sonic the Hedgehog", "md"},
	}

	for _, s := range seed {
		_, err := svc.CreateGame(ctx, s.owner, &models.CreateGameRequest{
			Title: s.title, Console: s.console, Condition: 3, Price: 10,
		})
		require.NoError(t, err)
	}

	owner := "tom@example.com"
	resp, err := svc.ListGames(ctx, &models.ListGamesFilters{Owner: &owner})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	// Alias resolves to the canonical code before filtering.
	console := "Mega Drive"
	resp, err = svc.ListGames(ctx, &models.ListGamesFilters{Console: &console})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "md/sonic-the-hedgehog", resp.Data[0].ResourceID)
}

func TestConcurrentAllocationBackstop(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := service.NewGamesService(repository.NewGamesRepository(db), nopPublisher{})

	// Concurrent creates of the same title: every attempt must end with a
	// distinct identifier or a conflict, never two rows sharing one.
	const attempts = 8

	var wg sync.WaitGroup

	errs := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = svc.CreateGame(ctx, "tom@example.com", &models.CreateGameRequest{
				Title: "Perfect Dark", Console: "n64", Condition: 4, Price: 20,
			})
		}()
	}

	wg.Wait()

	succeeded := 0

	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, apperrors.ErrConflict)
		}
	}

	require.Positive(t, succeeded)

	var distinct int

	err := db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT resource_id) FROM games WHERE title = 'Perfect Dark'`,
	).Scan(&distinct)
	require.NoError(t, err)
	assert.Equal(t, succeeded, distinct)
}

func TestWebhookRegistrationUniqueness(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := service.NewWebhooksService(repository.NewWebhooksRepository(db))

	req := &models.CreateWebhookRequest{
		EventType:    "on-create-game",
		RecipientURL: "https://example.com/hooks/games",
	}

	first, err := svc.RegisterWebhook(ctx, "tom@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, datatypes.GameCreated, first.EventType)

	_, err = svc.RegisterWebhook(ctx, "tom@example.com", req)
	require.True(t, errors.Is(err, apperrors.ErrConflict), "duplicate registration must conflict, got %v", err)

	// Same registration under another owner is independent.
	_, err = svc.RegisterWebhook(ctx, "ana@example.com", req)
	require.NoError(t, err)

	resp, err := svc.ListWebhooks(ctx, "tom@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestEventPipelineDeliversToRegisteredRecipient(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	webhooksRepo := repository.NewWebhooksRepository(db)

	delivered := make(chan []byte, 1)
	sender := senderFunc(func(_ context.Context, _ models.Webhook, payload []byte, _ string) error {
		delivered <- payload

		return nil
	})

	manager := events.NewManager(8)
	dispatcher := events.NewDispatcher(webhooksRepo, sender, 4, false, nil)
	manager.RegisterProvider(dispatcher)

	gamesService := service.NewGamesService(repository.NewGamesRepository(db), manager)
	webhooksService := service.NewWebhooksService(webhooksRepo)

	_, err := webhooksService.RegisterWebhook(ctx, "ana@example.com", &models.CreateWebhookRequest{
		EventType:    "on-create-game",
		RecipientURL: "https://example.com/hooks/games",
	})
	require.NoError(t, err)

	_, err = gamesService.CreateGame(ctx, "tom@example.com", &models.CreateGameRequest{
		Title: "Tetris", Console: "gb", Condition: 3, Price: 12,
	})
	require.NoError(t, err)

	manager.Shutdown()
	dispatcher.Wait()

	select {
	case payload := <-delivered:
		assert.Contains(t, string(payload), "on-create-game")
		assert.Contains(t, string(payload), "gb/tetris")
	default:
		t.Fatal("no delivery reached the registered recipient")
	}
}

type senderFunc func(ctx context.Context, webhook models.Webhook, payloadJSON []byte, messageID string) error

func (f senderFunc) Send(ctx context.Context, webhook models.Webhook, payloadJSON []byte, messageID string) error {
	return f(ctx, webhook, payloadJSON, messageID)
}
