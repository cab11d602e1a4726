// Package handlers contains the HTTP handlers for the games marketplace API.
package handlers

import (
	"context"
	"net/http"

	"github.com/retrolist/games-service/internal/api/middleware"
	"github.com/retrolist/games-service/internal/api/response"
	"github.com/retrolist/games-service/internal/api/validation"
	"github.com/retrolist/games-service/internal/models"
)

// GamesService defines the interface for game ads business logic.
type GamesService interface {
	CreateGame(ctx context.Context, owner string, req *models.CreateGameRequest) (*models.Game, error)
	GetGame(ctx context.Context, resourceID string) (*models.Game, error)
	ListGames(ctx context.Context, filters *models.ListGamesFilters) (*models.ListGamesResponse, error)
	UpdateGame(ctx context.Context, owner, resourceID string, req *models.UpdateGameRequest) (*models.Game, error)
	DeleteGame(ctx context.Context, owner, resourceID string) error
}

// GamesHandler handles HTTP requests for game ads
type GamesHandler struct {
	service GamesService
}

// NewGamesHandler creates a new games handler
func NewGamesHandler(service GamesService) *GamesHandler {
	return &GamesHandler{service: service}
}

// resourceIDFromPath rebuilds the two-segment resource identifier
// ("console/title-slug") from the request path values.
func resourceIDFromPath(r *http.Request) string {
	return r.PathValue("console") + "/" + r.PathValue("slug")
}

// Create handles POST /v1/games
// @Summary Post a game ad
// @Description Creates a new game ad owned by the caller and allocates its resource identifier
// @Tags Games
// @Accept json
// @Produce json
// @Param request body models.CreateGameRequest true "Game ad to create"
// @Success 201 {object} models.Game
// @Failure 400 {object} response.ProblemDetails
// @Failure 409 {object} response.ProblemDetails "Identifier lost a concurrent allocation race"
// @Security BearerAuth
// @Router /v1/games [post]
func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	owner := middleware.OwnerFromContext(r.Context())

	game, err := h.service.CreateGame(r.Context(), owner, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, game)
}

// Get handles GET /v1/games/{console}/{slug}
// @Summary Get a game ad
// @Description Retrieves a single game ad by its resource identifier
// @Tags Games
// @Produce json
// @Param console path string true "Console code (e.g. n64)"
// @Param slug path string true "Title slug (e.g. goldeneye-007)"
// @Success 200 {object} models.Game
// @Failure 404 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/games/{console}/{slug} [get]
func (h *GamesHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.service.GetGame(r.Context(), resourceIDFromPath(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, game)
}

// List handles GET /v1/games
// @Summary List game ads
// @Description Lists game ads with optional console and owner filters
// @Tags Games
// @Produce json
// @Param console query string false "Filter by console code or alias"
// @Param owner query string false "Filter by owner email"
// @Param limit query int false "Number of results to return (max 1000)"
// @Param offset query int false "Number of results to skip"
// @Success 200 {object} models.ListGamesResponse
// @Security BearerAuth
// @Router /v1/games [get]
func (h *GamesHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters models.ListGamesFilters
	if err := validation.ValidateAndDecodeQueryParams(r, &filters); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	resp, err := h.service.ListGames(r.Context(), &filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /v1/games/{console}/{slug}
// @Summary Update a game ad
// @Description Partially updates the caller's own game ad; the identifier is kept unless rederive_id is set
// @Tags Games
// @Accept json
// @Produce json
// @Param console path string true "Console code"
// @Param slug path string true "Title slug"
// @Param request body models.UpdateGameRequest true "Fields to update"
// @Success 200 {object} models.Game
// @Failure 403 {object} response.ProblemDetails "Ad belongs to another user"
// @Failure 404 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/games/{console}/{slug} [patch]
func (h *GamesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	owner := middleware.OwnerFromContext(r.Context())

	game, err := h.service.UpdateGame(r.Context(), owner, resourceIDFromPath(r), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, game)
}

// Delete handles DELETE /v1/games/{console}/{slug}
// @Summary Delete a game ad
// @Description Deletes the caller's own game ad
// @Tags Games
// @Param console path string true "Console code"
// @Param slug path string true "Title slug"
// @Success 204 "No Content"
// @Failure 403 {object} response.ProblemDetails "Ad belongs to another user"
// @Failure 404 {object} response.ProblemDetails
// @Security BearerAuth
// @Router /v1/games/{console}/{slug} [delete]
func (h *GamesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := middleware.OwnerFromContext(r.Context())

	if err := h.service.DeleteGame(r.Context(), owner, resourceIDFromPath(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
