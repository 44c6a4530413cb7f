package recipe

import "errors"

// Domain errors for generated records

var (
	// Recipe structure errors
	ErrMissingName   = errors.New("recipe name is required")
	ErrNoIngredients = errors.New("recipe must have at least one ingredient")
	ErrNoSteps       = errors.New("recipe must have at least one step")

	// Nutrition errors
	ErrHealthScoreRange     = errors.New("health score must be between 1 and 10")
	ErrInvalidGlycemicIndex = errors.New("glycemic index must be Low, Medium or High")
	ErrNotNumeric           = errors.New("value does not contain a number")

	// Grocery list errors
	ErrNoGroceryItems   = errors.New("grocery list must have at least one item")
	ErrNegativePrice    = errors.New("grocery item price must not be negative")
	ErrBudgetMismatch   = errors.New("total spent plus remaining must equal the budget")
	ErrNonPositiveTotal = errors.New("budget must be greater than 0")
)
