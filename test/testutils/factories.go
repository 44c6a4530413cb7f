// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// RecipeFactory provides methods to create generated recipe records
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Faker exposes the seeded faker for property tests
func (f *RecipeFactory) Faker() *gofakeit.Faker {
	return f.faker
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	r recipe.Recipe
}

// NewRecipe creates a builder pre-filled with a valid recipe
func (f *RecipeFactory) NewRecipe() *RecipeBuilder {
	return &RecipeBuilder{r: recipe.Recipe{
		Name:        f.faker.Dinner(),
		Summary:     f.faker.Sentence(8),
		PrepTime:    fmt.Sprintf("%d min", f.faker.IntRange(10, 90)),
		Ingredients: []string{f.faker.Vegetable(), f.faker.Vegetable(), "olive oil"},
		Steps:       []string{"Prepare the ingredients", "Cook", "Serve"},
		Warnings:    []string{},
		Health: recipe.HealthStats{
			Calories:      fmt.Sprintf("%d kcal", f.faker.IntRange(300, 700)),
			Protein:       fmt.Sprintf("%d g", f.faker.IntRange(5, 40)),
			Carbs:         fmt.Sprintf("%d g", f.faker.IntRange(10, 80)),
			Fat:           fmt.Sprintf("%d g", f.faker.IntRange(2, 30)),
			Fiber:         fmt.Sprintf("%d g", f.faker.IntRange(1, 15)),
			Sugar:         fmt.Sprintf("%d g", f.faker.IntRange(1, 20)),
			Sodium:        fmt.Sprintf("%d mg", f.faker.IntRange(50, 900)),
			Vitamins:      []string{"A", "C"},
			HealthScore:   f.faker.IntRange(recipe.MinHealthScore, recipe.MaxHealthScore),
			GlycemicIndex: recipe.GlycemicMedium,
			Comment:       f.faker.Sentence(5),
		},
	}}
}

// WithName sets the recipe name
func (rb *RecipeBuilder) WithName(name string) *RecipeBuilder {
	rb.r.Name = name
	return rb
}

// WithIngredients replaces the ingredient list
func (rb *RecipeBuilder) WithIngredients(items ...string) *RecipeBuilder {
	rb.r.Ingredients = items
	return rb
}

// WithSteps replaces the step list
func (rb *RecipeBuilder) WithSteps(steps ...string) *RecipeBuilder {
	rb.r.Steps = steps
	return rb
}

// WithCalories sets the textual calories value
func (rb *RecipeBuilder) WithCalories(calories string) *RecipeBuilder {
	rb.r.Health.Calories = calories
	return rb
}

// WithHealthScore sets the health score
func (rb *RecipeBuilder) WithHealthScore(score int) *RecipeBuilder {
	rb.r.Health.HealthScore = score
	return rb
}

// WithGlycemicIndex sets the glycemic index
func (rb *RecipeBuilder) WithGlycemicIndex(gi recipe.GlycemicIndex) *RecipeBuilder {
	rb.r.Health.GlycemicIndex = gi
	return rb
}

// WithCost sets the budget details
func (rb *RecipeBuilder) WithCost(cost, reason string) *RecipeBuilder {
	rb.r.Cost = cost
	rb.r.CostReason = reason
	return rb
}

// Build returns the recipe
func (rb *RecipeBuilder) Build() recipe.Recipe {
	return rb.r
}

// Batch creates n valid recipes with the given calories value
func (f *RecipeFactory) Batch(n int, calories string) []recipe.Recipe {
	out := make([]recipe.Recipe, n)
	for i := range out {
		out[i] = f.NewRecipe().WithCalories(calories).Build()
	}
	return out
}

// BudgetBatch creates n valid recipes carrying cost details
func (f *RecipeFactory) BudgetBatch(n int, calories string) []recipe.Recipe {
	out := make([]recipe.Recipe, n)
	for i := range out {
		out[i] = f.NewRecipe().
			WithCalories(calories).
			WithCost(fmt.Sprintf("%d TRY", f.faker.IntRange(20, 140)), "market prices").
			Build()
	}
	return out
}

// SafeIngredients produces ingredient names that do not overlap any allergy
// in either direction
func (f *RecipeFactory) SafeIngredients(n int, allergies []string) []string {
	out := make([]string, 0, n)
	for len(out) < n {
		candidate := strings.ToLower(f.faker.Vegetable())
		if overlaps(candidate, allergies) {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// PreferenceBuilder builds preference contexts for tests
type PreferenceBuilder struct {
	opts preference.Options
}

// NewPreferences creates a builder with no constraints
func NewPreferences() *PreferenceBuilder {
	return &PreferenceBuilder{}
}

// WithAllergies sets the allergies
func (pb *PreferenceBuilder) WithAllergies(allergies ...string) *PreferenceBuilder {
	pb.opts.Allergies = allergies
	return pb
}

// WithConditions sets the conditions
func (pb *PreferenceBuilder) WithConditions(conditions ...string) *PreferenceBuilder {
	pb.opts.Conditions = conditions
	return pb
}

// WithCalorieGoal sets the daily calorie goal
func (pb *PreferenceBuilder) WithCalorieGoal(goal int) *PreferenceBuilder {
	pb.opts.DailyCalorieGoal = goal
	return pb
}

// WithPlan sets the plan tier
func (pb *PreferenceBuilder) WithPlan(plan preference.PlanTier) *PreferenceBuilder {
	pb.opts.Plan = plan
	return pb
}

// WithLocale sets the locale
func (pb *PreferenceBuilder) WithLocale(locale preference.Locale) *PreferenceBuilder {
	pb.opts.Locale = locale
	return pb
}

// Build returns the context and panics on invalid fixtures
func (pb *PreferenceBuilder) Build() preference.Context {
	return preference.MustNew(pb.opts)
}

// BatchJSON renders recipes the way a generator would return them
func BatchJSON(t testing.TB, recipes []recipe.Recipe) string {
	t.Helper()
	data, err := json.Marshal(recipes)
	require.NoError(t, err)
	return string(data)
}

// GroceryJSON renders a grocery list the way a generator would return it
func GroceryJSON(t testing.TB, list recipe.GroceryList) string {
	t.Helper()
	data, err := json.Marshal(list)
	require.NoError(t, err)
	return string(data)
}

func overlaps(candidate string, allergies []string) bool {
	for _, a := range allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.Contains(candidate, a) || strings.Contains(a, candidate) {
			return true
		}
	}
	return false
}
