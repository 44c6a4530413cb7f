package generation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

func TestRequestKindGroups(t *testing.T) {
	prefs := preference.MustNew(preference.Options{})

	assert.True(t, ByIngredients([]string{"rice"}, prefs).ProducesRecipes())
	assert.True(t, ByBudget(10, "USD", StyleHome, prefs).ProducesRecipes())
	assert.True(t, ByItemName("cola", prefs).IsReport())
	assert.True(t, DailyPlan(2000, prefs).IsReport())

	groceries := GroceryList(50, "EUR", prefs)
	assert.False(t, groceries.ProducesRecipes())
	assert.False(t, groceries.IsReport())
}

func TestRequestValidate(t *testing.T) {
	prefs := preference.MustNew(preference.Options{})

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"ingredients ok", ByIngredients([]string{"tomato"}, prefs), false},
		{"ingredients blank", ByIngredients([]string{" ", ""}, prefs), true},
		{"budget ok", ByBudget(150, "TRY", StyleHome, prefs), false},
		{"budget zero", ByBudget(0, "TRY", StyleHome, prefs), true},
		{"budget no currency", ByBudget(10, "", StyleHome, prefs), true},
		{"budget unknown style", ByBudget(10, "USD", "molecular", prefs), true},
		{"item ok", ByItemName("cola", prefs), false},
		{"item blank", ByItemName("  ", prefs), true},
		{"daily plan ok", DailyPlan(2000, prefs), false},
		{"daily plan zero", DailyPlan(0, prefs), true},
		{"groceries ok", GroceryList(500, "EUR", prefs), false},
		{"groceries negative", GroceryList(-1, "EUR", prefs), true},
		{"unknown kind", Request{Kind: "lucky_wheel"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestParseFoodStyle(t *testing.T) {
	st, err := ParseFoodStyle("Fast-Food")
	require.NoError(t, err)
	assert.Equal(t, StyleFastFood, st)

	st, err = ParseFoodStyle("")
	require.NoError(t, err)
	assert.Equal(t, StyleHome, st)

	_, err = ParseFoodStyle("buffet")
	assert.Error(t, err)
}

func TestEffectiveCalorieGoal(t *testing.T) {
	prefs := preference.MustNew(preference.Options{DailyCalorieGoal: 1800})

	assert.Equal(t, 1800, ByIngredients([]string{"rice"}, prefs).EffectiveCalorieGoal())
	assert.Equal(t, 2500, DailyPlan(2500, prefs).EffectiveCalorieGoal())
}

func TestReasonClasses(t *testing.T) {
	assert.Equal(t, ClassSafety, ReasonBlocked.Class())
	for _, r := range []Reason{ReasonNetwork, ReasonTimeout, ReasonCanceled, ReasonEmpty, ReasonServiceError} {
		assert.Equal(t, ClassTransport, r.Class(), r)
	}
	for _, r := range []Reason{ReasonMalformedJSON, ReasonMissingField, ReasonWrongCount, ReasonInvalidEnumOrRange} {
		assert.Equal(t, ClassSchema, r.Class(), r)
	}
	for _, r := range []Reason{ReasonAllergenLeak, ReasonCalorieOutOfBand, ReasonInvalidRequest} {
		assert.Equal(t, ClassDomain, r.Class(), r)
	}
}

func TestFailureMatchingAndRetry(t *testing.T) {
	cause := errors.New("connection reset")
	f := NewFailure(ReasonNetwork, "dial").WithCause(cause)
	wrapped := fmt.Errorf("search: %w", f)

	assert.ErrorIs(t, wrapped, ErrNetwork)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, ErrTimeout)

	got, ok := AsFailure(wrapped)
	require.True(t, ok)
	assert.Equal(t, -1, got.Record)
	assert.True(t, got.Retryable())
	assert.Contains(t, got.Error(), "transport/network")

	assert.True(t, NewFailure(ReasonWrongCount, "").Retryable())
	assert.False(t, NewFailure(ReasonCanceled, "").Retryable())
	assert.False(t, NewFailure(ReasonAllergenLeak, "").Retryable())
	assert.False(t, Blocked("milk", "milk").Retryable())
}

func TestSchemaJSONSchema(t *testing.T) {
	lo := 1.0
	s := &Schema{
		Type:     TypeArray,
		MinItems: 4,
		MaxItems: 4,
		Items: &Schema{
			Type:     TypeObject,
			Required: []string{"score"},
			Properties: map[string]*Schema{
				"score": {Type: TypeInteger, Minimum: &lo},
				"gi":    {Type: TypeString, Enum: []string{"Low", "High"}},
			},
		},
	}

	doc := s.JSONSchema()

	assert.Equal(t, "array", doc["type"])
	assert.Equal(t, 4, doc["minItems"])
	items := doc["items"].(map[string]any)
	assert.Equal(t, []string{"score"}, items["required"])
	props := items["properties"].(map[string]any)
	assert.Equal(t, 1.0, props["score"].(map[string]any)["minimum"])
	assert.Equal(t, []string{"Low", "High"}, props["gi"].(map[string]any)["enum"])
}
