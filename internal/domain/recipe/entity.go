package recipe

import (
	"strings"
)

// Recipe is one generated recipe record. Recipes are ephemeral: created per
// call and discarded after display unless a caller persists them.
type Recipe struct {
	Name        string      `json:"name"`
	Summary     string      `json:"summary"`
	PrepTime    string      `json:"prepTime"`
	Ingredients []string    `json:"ingredients"`
	Steps       []string    `json:"steps"`
	Warnings    []string    `json:"warnings"`
	Health      HealthStats `json:"health"`

	// Cost and CostReason are only populated for budget requests
	Cost       string `json:"cost,omitempty"`
	CostReason string `json:"costReason,omitempty"`
}

// HealthStats carries the nutrition facts of a recipe. Quantities stay
// textual because generators attach units ("520 kcal", "12 g").
type HealthStats struct {
	Calories      string        `json:"calories"`
	Protein       string        `json:"protein"`
	Carbs         string        `json:"carbs"`
	Fat           string        `json:"fat"`
	Fiber         string        `json:"fiber"`
	Sugar         string        `json:"sugar"`
	Sodium        string        `json:"sodium"`
	Vitamins      []string      `json:"vitamins"`
	HealthScore   int           `json:"healthScore"`
	GlycemicIndex GlycemicIndex `json:"glycemicIndex"`
	Comment       string        `json:"comment"`
}

// Validate checks the structural rules of a recipe record
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	if len(r.Steps) == 0 {
		return ErrNoSteps
	}
	return r.Health.Validate()
}

// Validate checks the enum and range rules of the nutrition facts
func (h HealthStats) Validate() error {
	if h.HealthScore < MinHealthScore || h.HealthScore > MaxHealthScore {
		return ErrHealthScoreRange
	}
	if !h.GlycemicIndex.Valid() {
		return ErrInvalidGlycemicIndex
	}
	return nil
}

// CalorieValue parses the leading numeric value of the calories field
func (h HealthStats) CalorieValue() (float64, error) {
	return ParseQuantity(h.Calories)
}

// CalorieValueIn parses the calories field written in a locale's number format
func (h HealthStats) CalorieValueIn(nf NumberFormat) (float64, error) {
	return ParseQuantityIn(h.Calories, nf)
}

// HasBudgetDetails reports whether cost information is present
func (r Recipe) HasBudgetDetails() bool {
	return strings.TrimSpace(r.Cost) != "" && strings.TrimSpace(r.CostReason) != ""
}
