// Package repository handles data access for games and webhook registrations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retrolist/games-service/internal/apperrors"
	"github.com/retrolist/games-service/internal/models"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations; the unique indexes on games.resource_id and on webhook
// registrations are the authoritative backstop for racing writers.
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// GamesRepository handles data access for game ads.
type GamesRepository struct {
	db *pgxpool.Pool
}

// NewGamesRepository creates a new games repository.
func NewGamesRepository(db *pgxpool.Pool) *GamesRepository {
	return &GamesRepository{db: db}
}

const gameColumns = `id, resource_id, title, console, condition, image_url, city, price, description, owner, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game

	err := row.Scan(
		&g.ID, &g.ResourceID, &g.Title, &g.Console, &g.Condition,
		&g.ImageURL, &g.City, &g.Price, &g.Description, &g.Owner,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// Create inserts a new game ad. A duplicate resource_id (two allocations
// racing past the existence check) surfaces as a ConflictError.
func (r *GamesRepository) Create(ctx context.Context, game *models.Game) (*models.Game, error) {
	query := `
		INSERT INTO games (
			id, resource_id, title, console, condition, image_url, city, price, description, owner
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + gameColumns

	created, err := scanGame(r.db.QueryRow(ctx, query,
		game.ID, game.ResourceID, game.Title, game.Console, game.Condition,
		game.ImageURL, game.City, game.Price, game.Description, game.Owner,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("resource identifier already taken: " + game.ResourceID)
		}

		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return created, nil
}

// GetByResourceID retrieves a single game ad by its resource identifier.
func (r *GamesRepository) GetByResourceID(ctx context.Context, resourceID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE resource_id = $1`

	game, err := scanGame(r.db.QueryRow(ctx, query, resourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("game", "game not found")
		}

		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ExistsByResourceID reports whether a game with the given resource
// identifier is currently stored. This is the existence check consumed by
// the slug allocator; a single atomic read, no lock held.
func (r *GamesRepository) ExistsByResourceID(ctx context.Context, resourceID string) (bool, error) {
	var exists bool

	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM games WHERE resource_id = $1)`, resourceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check resource id: %w", err)
	}

	return exists, nil
}

// buildGameFilterConditions builds WHERE clause conditions and arguments from filters.
func buildGameFilterConditions(filters *models.ListGamesFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Console != nil {
		conditions = append(conditions, fmt.Sprintf("console = $%d", argCount))
		args = append(args, *filters.Console)
		argCount++
	}

	if filters.Owner != nil {
		conditions = append(conditions, fmt.Sprintf("owner = $%d", argCount))
		args = append(args, *filters.Owner)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args
}

// List retrieves game ads with optional filters.
func (r *GamesRepository) List(ctx context.Context, filters *models.ListGamesFilters) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games`

	whereClause, args := buildGameFilterConditions(filters)
	query += whereClause
	argCount := len(args) + 1

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filters.Limit)
		argCount++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []models.Game{}

	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}

		games = append(games, *game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// Count returns the total count of game ads matching the filters.
func (r *GamesRepository) Count(ctx context.Context, filters *models.ListGamesFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM games`

	whereClause, args := buildGameFilterConditions(filters)
	query += whereClause

	var count int64

	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

// Update replaces the mutable fields of a game ad identified by its current
// resource identifier. The identifier itself changes only when the caller
// allocated a new one (explicit re-derivation).
func (r *GamesRepository) Update(ctx context.Context, resourceID string, game *models.Game) (*models.Game, error) {
	query := `
		UPDATE games
		SET resource_id = $1, title = $2, console = $3, condition = $4,
		    image_url = $5, city = $6, price = $7, description = $8, updated_at = $9
		WHERE resource_id = $10
		RETURNING ` + gameColumns

	updated, err := scanGame(r.db.QueryRow(ctx, query,
		game.ResourceID, game.Title, game.Console, game.Condition,
		game.ImageURL, game.City, game.Price, game.Description, time.Now(),
		resourceID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("game", "game not found")
		}

		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("resource identifier already taken: " + game.ResourceID)
		}

		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return updated, nil
}

// Delete removes a game ad by its resource identifier.
func (r *GamesRepository) Delete(ctx context.Context, resourceID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM games WHERE resource_id = $1`, resourceID)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("game", "game not found")
	}

	return nil
}
