// Package service holds the business logic layer: ownership checks,
// identifier allocation, event publication. Handlers stay thin and
// repositories stay dumb.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/retrolist/games-service/internal/apperrors"
	"github.com/retrolist/games-service/internal/datatypes"
	"github.com/retrolist/games-service/internal/events"
	"github.com/retrolist/games-service/internal/models"
	"github.com/retrolist/games-service/internal/slug"
)

// GamesRepository defines the interface for games data access.
type GamesRepository interface {
	Create(ctx context.Context, game *models.Game) (*models.Game, error)
	GetByResourceID(ctx context.Context, resourceID string) (*models.Game, error)
	ExistsByResourceID(ctx context.Context, resourceID string) (bool, error)
	List(ctx context.Context, filters *models.ListGamesFilters) ([]models.Game, error)
	Count(ctx context.Context, filters *models.ListGamesFilters) (int64, error)
	Update(ctx context.Context, resourceID string, game *models.Game) (*models.Game, error)
	Delete(ctx context.Context, resourceID string) error
}

// GamesService handles business logic for game ads.
type GamesService struct {
	repo      GamesRepository
	publisher events.Publisher
}

// NewGamesService creates a new games service.
func NewGamesService(repo GamesRepository, publisher events.Publisher) *GamesService {
	return &GamesService{repo: repo, publisher: publisher}
}

// CreateGame posts a new game ad for owner. The console is canonicalized
// (aliases like "Nintendo 64" resolve to "n64") and a unique resource
// identifier is allocated from the console and title before persisting.
func (s *GamesService) CreateGame(ctx context.Context, owner string, req *models.CreateGameRequest) (*models.Game, error) {
	console, ok := datatypes.CanonicalConsole(req.Console)
	if !ok {
		return nil, apperrors.NewInvalidInputError("console",
			"unsupported console, expected one of: "+datatypes.SupportedConsolesString())
	}

	resourceID, err := slug.Allocate(ctx, console, req.Title, s.repo.ExistsByResourceID)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:          uuid.Must(uuid.NewV7()),
		ResourceID:  resourceID,
		Title:       req.Title,
		Console:     console,
		Condition:   req.Condition,
		ImageURL:    req.ImageURL,
		City:        req.City,
		Price:       req.Price,
		Description: req.Description,
		Owner:       owner,
	}

	created, err := s.repo.Create(ctx, game)
	if err != nil {
		// A concurrent allocation of the same identifier loses the race on
		// the unique index and surfaces here as a conflict.
		return nil, err
	}

	s.publisher.Publish(ctx, datatypes.GameCreated, owner, created)

	return created, nil
}

// GetGame retrieves a single game ad by its resource identifier.
func (s *GamesService) GetGame(ctx context.Context, resourceID string) (*models.Game, error) {
	return s.repo.GetByResourceID(ctx, resourceID)
}

// ListGames retrieves game ads with optional filters. A console filter may
// be any alias; rows are matched on the canonical code.
func (s *GamesService) ListGames(ctx context.Context, filters *models.ListGamesFilters) (*models.ListGamesResponse, error) {
	if filters.Console != nil {
		console, ok := datatypes.CanonicalConsole(*filters.Console)
		if !ok {
			return nil, apperrors.NewInvalidInputError("console",
				"unsupported console, expected one of: "+datatypes.SupportedConsolesString())
		}
		filters.Console = &console
	}

	if filters.Limit <= 0 {
		filters.Limit = 100 // Default limit
	}
	if filters.Limit > 1000 {
		filters.Limit = 1000 // Max limit
	}

	games, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &models.ListGamesResponse{
		Data:   games,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// UpdateGame applies a partial update to the caller's own game ad. The
// resource identifier is stable across updates unless req.RederiveID asks
// for a fresh allocation from the updated title and console.
func (s *GamesService) UpdateGame(ctx context.Context, owner, resourceID string, req *models.UpdateGameRequest) (*models.Game, error) {
	existing, err := s.repo.GetByResourceID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if existing.Owner != owner {
		return nil, apperrors.NewForbiddenError("game ad belongs to another user")
	}

	updated := *existing

	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Console != nil {
		console, ok := datatypes.CanonicalConsole(*req.Console)
		if !ok {
			return nil, apperrors.NewInvalidInputError("console",
				"unsupported console, expected one of: "+datatypes.SupportedConsolesString())
		}
		updated.Console = console
	}
	if req.Condition != nil {
		updated.Condition = *req.Condition
	}
	if req.ImageURL != nil {
		updated.ImageURL = *req.ImageURL
	}
	if req.City != nil {
		updated.City = *req.City
	}
	if req.Price != nil {
		updated.Price = *req.Price
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}

	if req.RederiveID {
		// The current identifier counts as free so an unchanged title keeps
		// its identifier instead of picking up a "(1)" suffix.
		exists := func(ctx context.Context, id string) (bool, error) {
			if id == resourceID {
				return false, nil
			}
			return s.repo.ExistsByResourceID(ctx, id)
		}

		newID, err := slug.Allocate(ctx, updated.Console, updated.Title, exists)
		if err != nil {
			return nil, err
		}
		updated.ResourceID = newID
	}

	result, err := s.repo.Update(ctx, resourceID, &updated)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, datatypes.GameUpdated, owner, result)

	return result, nil
}

// DeleteGame removes the caller's own game ad and publishes a deletion event
// carrying the last snapshot of the ad.
func (s *GamesService) DeleteGame(ctx context.Context, owner, resourceID string) error {
	existing, err := s.repo.GetByResourceID(ctx, resourceID)
	if err != nil {
		return err
	}

	if existing.Owner != owner {
		return apperrors.NewForbiddenError("game ad belongs to another user")
	}

	if err := s.repo.Delete(ctx, resourceID); err != nil {
		return err
	}

	s.publisher.Publish(ctx, datatypes.GameDeleted, owner, existing)

	return nil
}
