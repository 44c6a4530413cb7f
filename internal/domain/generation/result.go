package generation

import (
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// SearchResult is the validated outcome of a recipe search
type SearchResult struct {
	Recipes []recipe.Recipe `json:"recipes"`
	Quota   int             `json:"quota"`
	// Shortfall is set when out-of-band records were dropped and the caller
	// accepted a short batch
	Shortfall bool `json:"shortfall"`
	Attempts  int  `json:"attempts"`
}

// Report is display-only advisory text such as a harm analysis or a daily plan
type Report struct {
	Kind    Kind              `json:"kind"`
	Subject string            `json:"subject"`
	Locale  preference.Locale `json:"locale"`
	Text    string            `json:"text"`
	Cached  bool              `json:"cached"`
}
