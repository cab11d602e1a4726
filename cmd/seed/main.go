// Command seed resets the database and loads demo data: a couple of user
// accounts on the sibling auth service and a handful of game ads. Meant for
// local development and end-to-end test environments only.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/retrolist/games-service/internal/config"
	"github.com/retrolist/games-service/internal/events"
	"github.com/retrolist/games-service/internal/models"
	"github.com/retrolist/games-service/internal/observability"
	"github.com/retrolist/games-service/internal/repository"
	"github.com/retrolist/games-service/internal/service"
	"github.com/retrolist/games-service/pkg/authsvc"
	"github.com/retrolist/games-service/pkg/database"
)

type demoUser struct {
	email    string
	password string
}

type demoGame struct {
	owner string
	req   models.CreateGameRequest
}

var demoUsers = []demoUser{
	{email: "tom@example.com", password: "tom-demo-password"},
	{email: "ana@example.com", password: "ana-demo-password"},
}

var demoGames = []demoGame{
	{owner: "tom@example.com", req: models.CreateGameRequest{
		Title: "GoldenEye 007", Console: "Nintendo 64", Condition: 4, Price: 35.50, City: "Lisbon",
	}},
	{owner: "tom@example.com", req: models.CreateGameRequest{
		Title: "Tetris", Console: "gb", Condition: 3, Price: 12, City: "Lisbon",
	}},
	{owner: "ana@example.com", req: models.CreateGameRequest{
		Title: "Sonic the Hedgehog", Console: "Mega Drive", Condition: 5, Price: 25, City: "Porto",
	}},
	{owner: "ana@example.com", req: models.CreateGameRequest{
		Title: "Final Fantasy VII", Console: "ps", Condition: 2, Price: 45, City: "Porto",
		Description: "Discs only, no manual",
	}},
	// Same title as Tom's copy, so the second ad demonstrates the (1) suffix.
	{owner: "ana@example.com", req: models.CreateGameRequest{
		Title: "GoldenEye 007", Console: "n64", Condition: 5, Price: 60, City: "Porto",
	}},
}

func main() {
	skipUsers := flag.Bool("skip-users", false, "do not touch the auth service")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.LogLevel)

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if _, err := db.Exec(ctx, "TRUNCATE games, webhooks"); err != nil {
		slog.Error("Failed to reset tables", "error", err)
		os.Exit(1)
	}

	slog.Info("Tables reset")

	if !*skipUsers {
		authClient := authsvc.NewClient(cfg.AuthServiceURL, cfg.APIKey)

		if err := authClient.DeleteAllUsers(ctx); err != nil {
			slog.Error("Failed to reset auth service users", "error", err)
			os.Exit(1)
		}

		for _, u := range demoUsers {
			if err := authClient.RegisterUser(ctx, u.email, u.password); err != nil {
				slog.Error("Failed to register demo user", "email", u.email, "error", err)
				os.Exit(1)
			}
		}

		slog.Info("Demo users registered", "count", len(demoUsers))
	}

	// Create ads through the service so identifiers allocate the same way
	// they do in production. No providers are registered, so nothing fires.
	publisher := events.NewManager(len(demoGames))
	defer publisher.Shutdown()

	gamesService := service.NewGamesService(repository.NewGamesRepository(db), publisher)

	for _, g := range demoGames {
		req := g.req

		game, err := gamesService.CreateGame(ctx, g.owner, &req)
		if err != nil {
			slog.Error("Failed to seed game ad", "title", req.Title, "error", err)
			os.Exit(1)
		}

		slog.Info("Seeded game ad", "resource_id", game.ResourceID, "owner", game.Owner)
	}

	slog.Info("Seed complete", "games", len(demoGames))
}
