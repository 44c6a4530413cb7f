// Package testutils provides custom assertions for testing
package testutils

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/mealguard/internal/domain/recipe"
	apperrors "github.com/alchemorsel/mealguard/pkg/errors"
)

// RecipeAssertions provides recipe-specific assertion methods
type RecipeAssertions struct {
	t *testing.T
}

// NewRecipeAssertions creates a new recipe assertions helper
func NewRecipeAssertions(t *testing.T) *RecipeAssertions {
	return &RecipeAssertions{t: t}
}

// ValidRecipe asserts that a generated recipe is structurally complete
func (ra *RecipeAssertions) ValidRecipe(r recipe.Recipe, msgAndArgs ...interface{}) {
	assert.NoError(ra.t, r.Validate(), msgAndArgs...)
	assert.NotEmpty(ra.t, r.Name, "recipe name should not be empty")
	assert.NotEmpty(ra.t, r.Ingredients, "recipe should list ingredients")
	assert.NotEmpty(ra.t, r.Steps, "recipe should list steps")
}

// FreeOf asserts that no ingredient mentions any of the allergens
func (ra *RecipeAssertions) FreeOf(r recipe.Recipe, allergens ...string) {
	for _, ingredient := range r.Ingredients {
		lower := strings.ToLower(ingredient)
		for _, a := range allergens {
			assert.NotContains(ra.t, lower, strings.ToLower(a),
				"recipe %q lists allergen %q", r.Name, a)
		}
	}
}

// CaloriesWithin asserts the recipe's calories fall inside the band
func (ra *RecipeAssertions) CaloriesWithin(r recipe.Recipe, band recipe.CalorieBand) {
	kcal, err := r.Health.CalorieValue()
	require.NoError(ra.t, err, "recipe %q has unparseable calories", r.Name)
	assert.True(ra.t, band.Contains(kcal), "recipe %q has %.0f kcal outside %v", r.Name, kcal, band)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(resp *http.Response, target interface{}, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.NewDecoder(resp.Body).Decode(target), msgAndArgs...)
}

// ErrorCode asserts that the response carries an error envelope with the code
func (ha *HTTPAssertions) ErrorCode(resp *http.Response, expected apperrors.ErrorCode) apperrors.ErrorDetails {
	var body apperrors.ErrorResponse
	ha.JSONResponse(resp, &body)
	assert.Equal(ha.t, expected, body.Error.Code)
	assert.NotEmpty(ha.t, body.Error.Timestamp)
	return body.Error
}

// SecurityHeaders asserts the hardening headers every response carries
func (ha *HTTPAssertions) SecurityHeaders(resp *http.Response) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		assert.Equal(ha.t, want, resp.Header.Get(header), "header %s", header)
	}
	assert.NotEmpty(ha.t, resp.Header.Get("X-Request-ID"))
}

// ResponseTime asserts that an operation finished within the limit
func ResponseTime(t *testing.T, duration, max time.Duration) {
	assert.LessOrEqual(t, duration, max, "took %v, expected at most %v", duration, max)
}

// MeasureTime measures the execution time of a function
func MeasureTime(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}
