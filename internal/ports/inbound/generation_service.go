// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// SearchOption tunes a single recipe search
type SearchOption func(*SearchOptions)

// SearchOptions are the resolved search options
type SearchOptions struct {
	// AcceptShortfall returns in-band survivors when some records miss the calorie band
	AcceptShortfall bool
}

// WithShortfallAccepted lets a search succeed with fewer records than the quota
// when the missing records were dropped for missing the calorie band
func WithShortfallAccepted() SearchOption {
	return func(o *SearchOptions) {
		o.AcceptShortfall = true
	}
}

// ResolveSearchOptions applies opts in order
func ResolveSearchOptions(opts ...SearchOption) SearchOptions {
	var o SearchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// GenerationService is the client-facing surface of the generation pipeline.
// Every method returns a *generation.Failure on error.
type GenerationService interface {
	SearchByIngredients(ctx context.Context, items []string, prefs preference.Context, opts ...SearchOption) (*generation.SearchResult, error)
	SearchByBudget(ctx context.Context, amount float64, currency string, style generation.FoodStyle, prefs preference.Context, opts ...SearchOption) (*generation.SearchResult, error)
	LookupHarm(ctx context.Context, itemName string, loc preference.Locale) (*generation.Report, error)
	PlanDailyNutrition(ctx context.Context, calorieGoal int, prefs preference.Context) (*generation.Report, error)
	PlanGroceries(ctx context.Context, budget float64, currency string, prefs preference.Context) (*recipe.GroceryList, error)
}

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionService owns user sessions and their preference state
type SessionService interface {
	Create(ctx context.Context, opts preference.Options) (uuid.UUID, preference.Context, error)
	Get(ctx context.Context, id uuid.UUID) (preference.Context, error)
	Update(ctx context.Context, id uuid.UUID, edit func(*preference.SessionState) error) (preference.Context, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
