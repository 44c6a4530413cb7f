package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/alchemorsel/mealguard/internal/application/locale"
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

func newComposer() *Composer {
	return NewComposer(locale.NewRouter())
}

func prefs(opts preference.Options) preference.Context {
	return preference.MustNew(opts)
}

func TestComposeStatesConstraints(t *testing.T) {
	c := newComposer()
	req := generation.ByIngredients([]string{"tomato", " rice "}, prefs(preference.Options{
		Allergies:  []string{"Milk", "egg"},
		Conditions: []string{"diabetes"},
	}))

	p, err := c.Compose(req, 4)

	require.NoError(t, err)
	assert.Equal(t, generation.FormatJSON, p.Format)
	assert.Equal(t, language.English, p.Language)
	assert.Equal(t, 4, p.ExpectedCount)
	assert.Contains(t, p.User, "tomato, rice")
	assert.Contains(t, p.User, "Declared allergies: milk, egg")
	assert.Contains(t, p.User, "Declared conditions: diabetes")
	assert.Contains(t, p.User, "Return exactly 4 recipes")
	assert.NotContains(t, p.User, "kcal (inclusive)", "no band without a calorie goal")
}

func TestComposeStatesNoneDeclared(t *testing.T) {
	c := newComposer()

	p, err := c.Compose(generation.ByIngredients([]string{"rice"}, prefs(preference.Options{})), 2)

	require.NoError(t, err)
	assert.Contains(t, p.User, "Declared allergies: none declared")
	assert.Contains(t, p.User, "Declared conditions: none declared")
}

func TestComposeEmbedsCalorieBand(t *testing.T) {
	c := newComposer()

	p, err := c.Compose(generation.ByIngredients([]string{"rice"},
		prefs(preference.Options{DailyCalorieGoal: 2000})), 4)
	require.NoError(t, err)
	assert.Contains(t, p.User, "between 400 and 700 kcal")

	p, err = c.Compose(generation.ByIngredients([]string{"rice"},
		prefs(preference.Options{DailyCalorieGoal: 1999, Locale: preference.LocaleGerman})), 4)
	require.NoError(t, err)
	assert.Contains(t, p.User, "zwischen 399,8 und 699,65 kcal")

	p, err = c.Compose(generation.ByIngredients([]string{"rice"},
		prefs(preference.Options{DailyCalorieGoal: 5000})), 4)
	require.NoError(t, err)
	assert.Contains(t, p.User, "between 1000 and 1750 kcal", "band is written without grouping")
}

func TestComposeBudgetDeclaresCost(t *testing.T) {
	c := newComposer()
	req := generation.ByBudget(150, "TRY", generation.StyleHome, prefs(preference.Options{Plan: preference.PlanFamily}))

	p, err := c.Compose(req, 6)

	require.NoError(t, err)
	require.NotNil(t, p.Schema)
	assert.Equal(t, generation.TypeArray, p.Schema.Type)
	assert.Equal(t, 6, p.Schema.MinItems)
	assert.Equal(t, 6, p.Schema.MaxItems)
	assert.Contains(t, p.Schema.Items.Required, "cost")
	assert.Contains(t, p.Schema.Items.Required, "costReason")
	assert.Contains(t, p.User, "home-style")
	assert.Contains(t, p.User, "costReason")
}

func TestComposeRecipeSchemaRequiresHealthFields(t *testing.T) {
	s := RecipeBatchSchema(2, false)

	health := s.Items.Properties["health"]
	require.NotNil(t, health)
	for _, f := range []string{"calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium", "vitamins", "healthScore", "glycemicIndex", "comment"} {
		assert.Contains(t, health.Required, f)
	}
	assert.Equal(t, []string{"Low", "Medium", "High"}, health.Properties["glycemicIndex"].Enum)
	assert.NotContains(t, s.Items.Required, "cost")
	_, hasCost := s.Items.Properties["cost"]
	assert.False(t, hasCost)
}

func TestComposeReports(t *testing.T) {
	c := newComposer()

	harm, err := c.Compose(generation.ByItemName("instant noodles", prefs(preference.Options{})), 0)
	require.NoError(t, err)
	assert.Equal(t, generation.FormatText, harm.Format)
	assert.Nil(t, harm.Schema)
	assert.Zero(t, harm.ExpectedCount)
	assert.Contains(t, harm.User, "instant noodles")
	assert.Contains(t, harm.User, "PRODUCT: <name>")
	assert.Contains(t, harm.User, "Declared allergies: none declared")

	plan, err := c.Compose(generation.DailyPlan(2200, prefs(preference.Options{Allergies: []string{"peanut"}})), 0)
	require.NoError(t, err)
	assert.Equal(t, generation.FormatText, plan.Format)
	assert.Contains(t, plan.User, "2,200 kcal")
	assert.Contains(t, plan.User, "DAILY PLAN")
	assert.Contains(t, plan.User, "peanut")
}

func TestComposeGroceries(t *testing.T) {
	c := newComposer()

	p, err := c.Compose(generation.GroceryList(500, "TRY", prefs(preference.Options{Locale: preference.LocaleTurkish})), 0)

	require.NoError(t, err)
	assert.Equal(t, generation.FormatJSON, p.Format)
	assert.Equal(t, generation.TypeObject, p.Schema.Type)
	assert.Contains(t, p.User, "remaining toplamı bütçeye tam olarak eşit")
	assert.Contains(t, p.User, "%5-10")
	assert.NotContains(t, p.User, "%!")
	assert.NotContains(t, p.User, "dizisi", "grocery lists are objects")
	assert.NotContains(t, p.User, "tarif", "grocery rules do not talk about recipes")

	for _, loc := range preference.Locales {
		p, err := c.Compose(generation.GroceryList(80, "EUR", prefs(preference.Options{Locale: loc})), 0)
		require.NoError(t, err)
		lower := strings.ToLower(p.User)
		assert.NotContains(t, lower, "array", loc)
		assert.NotContains(t, lower, "cooking order", loc)
		assert.NotContains(t, lower, "every recipe", loc)
		assert.NotContains(t, lower, "rezept", loc)
	}
}

func TestComposeRejectsInvalidInput(t *testing.T) {
	c := newComposer()

	_, err := c.Compose(generation.ByIngredients(nil, prefs(preference.Options{})), 4)
	assert.ErrorIs(t, err, generation.ErrInvalidRequest)

	_, err = c.Compose(generation.ByIngredients([]string{"rice"}, prefs(preference.Options{})), 0)
	assert.ErrorIs(t, err, generation.ErrInvalidRequest)
}

func TestComposeLocaleIsolation(t *testing.T) {
	c := newComposer()
	base := preference.Options{
		Allergies:        []string{"sesame"},
		Conditions:       []string{"celiac"},
		DailyCalorieGoal: 1800,
		Plan:             preference.PlanBasic,
	}

	for _, loc := range preference.Locales {
		opts := base
		opts.Locale = loc
		ctx := prefs(opts)

		requests := []generation.Request{
			generation.ByIngredients([]string{"rice", "spinach"}, ctx),
			generation.ByBudget(80, "EUR", generation.StyleStreet, ctx),
			generation.ByItemName("cola", ctx),
			generation.DailyPlan(1800, ctx),
			generation.GroceryList(300, "EUR", ctx),
		}

		for _, req := range requests {
			p, err := c.Compose(req, 2)
			require.NoError(t, err, "%s %s", loc, req.Kind)

			text := p.System + "\n" + p.User
			assert.Contains(t, text, templates[loc].languageRule)
			assert.NotContains(t, text, "%!", "format verb leaked")

			for other, tmpl := range templates {
				if other == loc {
					continue
				}
				for _, marker := range tmpl.markers() {
					assert.False(t, strings.Contains(text, marker),
						"locale %s payload for %s contains %s phrase %q", loc, req.Kind, other, marker)
				}
			}
		}
	}
}
