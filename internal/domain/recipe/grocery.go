package recipe

import "math"

// BudgetTolerance absorbs rounding in generated currency amounts
const BudgetTolerance = 0.01

// GroceryItem is one line of a grocery list
type GroceryItem struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Amount string  `json:"amount"`
}

// GroceryList is a budget-bounded shopping list
type GroceryList struct {
	Items      []GroceryItem `json:"items"`
	TotalSpent float64       `json:"totalSpent"`
	Remaining  float64       `json:"remaining"`
	Strategy   string        `json:"strategy"`
}

// Validate enforces TotalSpent + Remaining == budget and non-negative prices.
// The 5-10% remainder target is an instruction to the generator only.
func (g GroceryList) Validate(budget float64) error {
	if budget <= 0 {
		return ErrNonPositiveTotal
	}
	if len(g.Items) == 0 {
		return ErrNoGroceryItems
	}
	for _, item := range g.Items {
		if item.Price < 0 {
			return ErrNegativePrice
		}
	}
	if g.TotalSpent < 0 || g.Remaining < 0 {
		return ErrNegativePrice
	}
	if math.Abs(g.TotalSpent+g.Remaining-budget) > BudgetTolerance {
		return ErrBudgetMismatch
	}
	return nil
}

// ItemNames returns the item names in list order
func (g GroceryList) ItemNames() []string {
	names := make([]string, len(g.Items))
	for i, item := range g.Items {
		names[i] = item.Name
	}
	return names
}
