// Package generation holds the request, payload and failure types that flow
// through the constrained generation pipeline.
package generation

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

// Kind discriminates request variants
type Kind string

const (
	KindByIngredients Kind = "by_ingredients"
	KindByBudget      Kind = "by_budget"
	KindByItemName    Kind = "by_item_name"
	KindDailyPlan     Kind = "daily_plan"
	KindGroceryList   Kind = "grocery_list"
)

// FoodStyle narrows budget searches to a cooking style
type FoodStyle string

const (
	StyleHome     FoodStyle = "home"
	StyleFastFood FoodStyle = "fast_food"
	StyleHealthy  FoodStyle = "healthy"
	StyleGourmet  FoodStyle = "gourmet"
	StyleStreet   FoodStyle = "street"
)

// FoodStyles lists every supported style
var FoodStyles = []FoodStyle{StyleHome, StyleFastFood, StyleHealthy, StyleGourmet, StyleStreet}

// ParseFoodStyle converts user input into a FoodStyle. Empty input yields home.
func ParseFoodStyle(s string) (FoodStyle, error) {
	n := strings.ReplaceAll(preference.Normalize(s), "-", "_")
	if n == "" {
		return StyleHome, nil
	}
	for _, st := range FoodStyles {
		if string(st) == n {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown food style %q", s)
}

// Request is one generation request. Only the fields of its Kind are meaningful.
type Request struct {
	Kind  Kind
	Prefs preference.Context

	// KindByIngredients
	Items []string

	// KindByBudget and KindGroceryList
	Amount   float64
	Currency string
	Style    FoodStyle

	// KindByItemName
	Name string

	// KindDailyPlan
	CalorieGoal int
}

// ByIngredients builds an ingredient search request
func ByIngredients(items []string, prefs preference.Context) Request {
	return Request{Kind: KindByIngredients, Items: append([]string(nil), items...), Prefs: prefs}
}

// ByBudget builds a budget search request
func ByBudget(amount float64, currency string, style FoodStyle, prefs preference.Context) Request {
	return Request{Kind: KindByBudget, Amount: amount, Currency: currency, Style: style, Prefs: prefs}
}

// ByItemName builds a harm lookup request for a food item
func ByItemName(name string, prefs preference.Context) Request {
	return Request{Kind: KindByItemName, Name: name, Prefs: prefs}
}

// DailyPlan builds a daily nutrition plan request
func DailyPlan(calorieGoal int, prefs preference.Context) Request {
	return Request{Kind: KindDailyPlan, CalorieGoal: calorieGoal, Prefs: prefs}
}

// GroceryList builds a budget grocery list request
func GroceryList(budget float64, currency string, prefs preference.Context) Request {
	return Request{Kind: KindGroceryList, Amount: budget, Currency: currency, Prefs: prefs}
}

// ProducesRecipes reports whether the response is a quota-bound recipe batch
func (r Request) ProducesRecipes() bool {
	return r.Kind == KindByIngredients || r.Kind == KindByBudget
}

// IsReport reports whether the response is display-only text
func (r Request) IsReport() bool {
	return r.Kind == KindByItemName || r.Kind == KindDailyPlan
}

// EffectiveCalorieGoal is the goal used for calorie band derivation
func (r Request) EffectiveCalorieGoal() int {
	if r.Kind == KindDailyPlan {
		return r.CalorieGoal
	}
	return r.Prefs.DailyCalorieGoal()
}

// Validate checks per-kind invariants
func (r Request) Validate() error {
	switch r.Kind {
	case KindByIngredients:
		for _, item := range r.Items {
			if strings.TrimSpace(item) != "" {
				return nil
			}
		}
		return invalid("at least one ingredient is required")
	case KindByBudget:
		if r.Amount <= 0 {
			return invalid("budget amount must be greater than 0")
		}
		if strings.TrimSpace(r.Currency) == "" {
			return invalid("currency is required")
		}
		if _, err := ParseFoodStyle(string(r.Style)); err != nil {
			return invalid(err.Error())
		}
		return nil
	case KindByItemName:
		if strings.TrimSpace(r.Name) == "" {
			return invalid("item name is required")
		}
		return nil
	case KindDailyPlan:
		if r.CalorieGoal <= 0 {
			return invalid("calorie goal must be greater than 0")
		}
		return nil
	case KindGroceryList:
		if r.Amount <= 0 {
			return invalid("budget must be greater than 0")
		}
		if strings.TrimSpace(r.Currency) == "" {
			return invalid("currency is required")
		}
		return nil
	}
	return invalid(fmt.Sprintf("unknown request kind %q", r.Kind))
}

func invalid(detail string) *Failure {
	return NewFailure(ReasonInvalidRequest, detail)
}
