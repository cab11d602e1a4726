// Package models defines the API and storage types for games and webhook
// registrations.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Game represents a posted game ad. ResourceID is the human-readable
// identifier "console/title-slug[(n)]"; it is assigned once at creation and
// never changes unless the owner explicitly requests re-derivation.
type Game struct {
	ID          uuid.UUID `json:"id"`
	ResourceID  string    `json:"resource_id"`
	Title       string    `json:"title"`
	Console     string    `json:"console"`
	Condition   int       `json:"condition"`
	ImageURL    string    `json:"image_url,omitempty"`
	City        string    `json:"city,omitempty"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateGameRequest represents the request to post a new game ad.
// Console accepts any known code or alias ("Nintendo 64", "n64", ...);
// the service canonicalizes it before persisting.
type CreateGameRequest struct {
	Title       string  `json:"title" validate:"required,no_null_bytes,min=1,max=1000"`
	Console     string  `json:"console" validate:"required,no_null_bytes,min=1,max=1000"`
	Condition   int     `json:"condition" validate:"required,min=1,max=5"`
	ImageURL    string  `json:"image_url,omitempty" validate:"omitempty,no_null_bytes,min=4,max=1000"`
	City        string  `json:"city,omitempty" validate:"omitempty,no_null_bytes,min=4,max=1000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description,omitempty" validate:"omitempty,no_null_bytes,min=4,max=1000"`
}

// UpdateGameRequest represents a partial update of a game ad. The resource
// identifier is kept unless RederiveID is set, in which case a new identifier
// is allocated from the updated title and console.
type UpdateGameRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,no_null_bytes,min=1,max=1000"`
	Console     *string  `json:"console,omitempty" validate:"omitempty,no_null_bytes,min=1,max=1000"`
	Condition   *int     `json:"condition,omitempty" validate:"omitempty,min=1,max=5"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,no_null_bytes,min=4,max=1000"`
	City        *string  `json:"city,omitempty" validate:"omitempty,no_null_bytes,min=4,max=1000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,no_null_bytes,min=4,max=1000"`
	RederiveID  bool     `json:"rederive_id,omitempty"`
}

// ListGamesFilters represents filters for listing game ads.
type ListGamesFilters struct {
	Console *string `form:"console" validate:"omitempty,console"`
	Owner   *string `form:"owner" validate:"omitempty,no_null_bytes,max=255"`
	Limit   int     `form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset  int     `form:"offset" validate:"omitempty,min=0"`
}

// ListGamesResponse represents the response for listing game ads.
type ListGamesResponse struct {
	Data   []Game `json:"data"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
