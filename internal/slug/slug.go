// Package slug derives unique, URL-safe resource identifiers from
// human-entered titles. An identifier has the form
// "<console>/<normalized-title>" with a "(n)" suffix appended when the base
// form is already taken.
package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/retrolist/games-service/internal/apperrors"
)

// ExistsFunc reports whether a candidate identifier is already stored.
// It must observe identifiers committed by concurrent calls; errors are
// propagated unmasked to the caller of Allocate.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Normalize converts free text into a lowercase, dash-separated slug.
// ASCII letters and digits are kept (lowercased); every run of other
// characters collapses into a single dash; leading and trailing dashes are
// trimmed. Only ASCII survives so the result is always safe as a URL path
// segment. Normalizing an already-normalized string returns it unchanged.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingDash := false

	for _, r := range s {
		if r > unicode.MaxASCII {
			pendingDash = true

			continue
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}

			pendingDash = false

			b.WriteRune(r)

			continue
		}

		if r >= 'A' && r <= 'Z' {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}

			pendingDash = false

			b.WriteRune(r + ('a' - 'A'))

			continue
		}

		pendingDash = true
	}

	return b.String()
}

// Allocate derives a collision-free resource identifier from a category and
// a title. Both parts are normalized independently; an input that normalizes
// to an empty string is rejected with an InvalidInputError, since an empty
// segment would produce an ambiguous identifier.
//
// When the base identifier is taken, candidates "base(1)", "base(2)", ... are
// probed in order and the smallest free integer wins. No lock is held across
// probes; the storage layer's uniqueness constraint is the backstop when two
// concurrent allocations race past exists for the same candidate.
func Allocate(ctx context.Context, category, title string, exists ExistsFunc) (string, error) {
	cat := Normalize(category)
	if cat == "" {
		return "", apperrors.NewInvalidInputError("console", "console must contain at least one letter or digit")
	}

	t := Normalize(title)
	if t == "" {
		return "", apperrors.NewInvalidInputError("gameTitle", "title must contain at least one letter or digit")
	}

	base := cat + "/" + t

	taken, err := exists(ctx, base)
	if err != nil {
		return "", fmt.Errorf("check identifier %q: %w", base, err)
	}

	if !taken {
		return base, nil
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s(%d)", base, n)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check identifier %q: %w", candidate, err)
		}

		if !taken {
			return candidate, nil
		}
	}
}
