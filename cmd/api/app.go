package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retrolist/games-service/internal/api/handlers"
	"github.com/retrolist/games-service/internal/api/middleware"
	"github.com/retrolist/games-service/internal/config"
	"github.com/retrolist/games-service/internal/events"
	"github.com/retrolist/games-service/internal/observability"
	"github.com/retrolist/games-service/internal/repository"
	"github.com/retrolist/games-service/internal/service"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg        *config.Config
	db         *pgxpool.Pool
	server     *http.Server
	publisher  *events.Manager
	dispatcher *events.Dispatcher
	metrics    *observability.Metrics
}

// NewApp builds and wires all components. It does not start the HTTP server;
// call Run to start and block until shutdown or failure.
func NewApp(cfg *config.Config, db *pgxpool.Pool) *App {
	metrics := observability.NewMetrics()

	gamesRepo := repository.NewGamesRepository(db)
	webhooksRepo := repository.NewWebhooksRepository(db)

	publisher := events.NewManager(cfg.EventBufferSize)
	publisher.SetDropRecorder(metrics)

	sender := events.NewHTTPSender(cfg.WebhookDeliveryTimeout)
	dispatcher := events.NewDispatcher(
		webhooksRepo, sender,
		cfg.WebhookDeliveryMaxConcurrent, cfg.WebhookOwnerScoped,
		metrics,
	)
	publisher.RegisterProvider(dispatcher)

	gamesService := service.NewGamesService(gamesRepo, publisher)
	webhooksService := service.NewWebhooksService(webhooksRepo)

	gamesHandler := handlers.NewGamesHandler(gamesService)
	webhooksHandler := handlers.NewWebhooksHandler(webhooksService)
	healthHandler := handlers.NewHealthHandler(db)
	hookTestHandler := handlers.NewHookTestHandler()

	server := newHTTPServer(cfg, metrics, gamesHandler, webhooksHandler, healthHandler, hookTestHandler)

	return &App{
		cfg:        cfg,
		db:         db,
		server:     server,
		publisher:  publisher,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

// newHTTPServer builds the HTTP server and muxes (no auth on /health,
// /metrics, and the hook-test receivers; API key on everything else under /v1/).
func newHTTPServer(
	cfg *config.Config,
	metrics *observability.Metrics,
	games *handlers.GamesHandler,
	webhooks *handlers.WebhooksHandler,
	health *handlers.HealthHandler,
	hookTest *handlers.HookTestHandler,
) *http.Server {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", health.Check)
	public.Handle("GET /metrics", metrics.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/games", games.Create)
	protected.HandleFunc("GET /v1/games", games.List)
	protected.HandleFunc("GET /v1/games/{console}/{slug}", games.Get)
	protected.HandleFunc("PATCH /v1/games/{console}/{slug}", games.Update)
	protected.HandleFunc("DELETE /v1/games/{console}/{slug}", games.Delete)

	protected.HandleFunc("POST /v1/webhooks", webhooks.Create)
	protected.HandleFunc("GET /v1/webhooks", webhooks.List)
	protected.HandleFunc("GET /v1/webhooks/{id}", webhooks.Get)
	protected.HandleFunc("DELETE /v1/webhooks/{id}", webhooks.Delete)

	protectedWithAuth := middleware.Auth(cfg.APIKey)(protected)

	mux := http.NewServeMux()
	mux.Handle("/v1/", protectedWithAuth)
	// More specific than /v1/, so the test receivers stay reachable without
	// credentials; the dispatcher sends no Authorization header.
	mux.HandleFunc("POST /v1/webhooks/hook-test/{n}", hookTest.Receive)
	mux.Handle("/", public)

	var handler http.Handler = mux
	handler = middleware.MaxBody(cfg.MaxRequestBodyBytes)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Metrics(metrics)(handler)

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 15 * time.Second
		idleTimeout  = 60 * time.Second
	)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled (e.g. signal)
// or the server fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr <- fmt.Errorf("server: %w", err)
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the server, drains the event publisher, and waits for
// in-flight webhook deliveries. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Drain buffered events first so late mutations still dispatch, then
	// wait for the deliveries they spawned.
	a.publisher.Shutdown()
	a.dispatcher.Wait()

	return nil
}
