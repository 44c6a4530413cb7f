package prompt

import (
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// RecipeBatchSchema declares an array of exactly quota recipe objects.
// Cost fields are declared and required only for budget requests.
func RecipeBatchSchema(quota int, withCost bool) *generation.Schema {
	minScore, maxScore := float64(recipe.MinHealthScore), float64(recipe.MaxHealthScore)

	health := &generation.Schema{
		Type: generation.TypeObject,
		Properties: map[string]*generation.Schema{
			"calories":      {Type: generation.TypeString, Description: "kcal per serving as a number"},
			"protein":       {Type: generation.TypeString},
			"carbs":         {Type: generation.TypeString},
			"fat":           {Type: generation.TypeString},
			"fiber":         {Type: generation.TypeString},
			"sugar":         {Type: generation.TypeString},
			"sodium":        {Type: generation.TypeString},
			"vitamins":      {Type: generation.TypeArray, Items: &generation.Schema{Type: generation.TypeString}},
			"healthScore":   {Type: generation.TypeInteger, Minimum: &minScore, Maximum: &maxScore},
			"glycemicIndex": {Type: generation.TypeString, Enum: glycemicEnum()},
			"comment":       {Type: generation.TypeString},
		},
		PropertyOrder: []string{"calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium",
			"vitamins", "healthScore", "glycemicIndex", "comment"},
		Required: []string{"calories", "protein", "carbs", "fat", "fiber", "sugar", "sodium",
			"vitamins", "healthScore", "glycemicIndex", "comment"},
	}

	strList := func() *generation.Schema {
		return &generation.Schema{Type: generation.TypeArray, Items: &generation.Schema{Type: generation.TypeString}}
	}

	item := &generation.Schema{
		Type: generation.TypeObject,
		Properties: map[string]*generation.Schema{
			"name":        {Type: generation.TypeString},
			"summary":     {Type: generation.TypeString},
			"prepTime":    {Type: generation.TypeString},
			"ingredients": strList(),
			"steps":       strList(),
			"warnings":    strList(),
			"health":      health,
		},
		PropertyOrder: []string{"name", "summary", "prepTime", "ingredients", "steps", "warnings", "health"},
		Required:      []string{"name", "summary", "prepTime", "ingredients", "steps", "health"},
	}
	if withCost {
		item.Properties["cost"] = &generation.Schema{Type: generation.TypeString}
		item.Properties["costReason"] = &generation.Schema{Type: generation.TypeString}
		item.PropertyOrder = append(item.PropertyOrder, "cost", "costReason")
		item.Required = append(item.Required, "cost", "costReason")
	}

	return &generation.Schema{
		Type:     generation.TypeArray,
		Items:    item,
		MinItems: quota,
		MaxItems: quota,
	}
}

// GroceryListSchema declares the grocery list object
func GroceryListSchema() *generation.Schema {
	return &generation.Schema{
		Type: generation.TypeObject,
		Properties: map[string]*generation.Schema{
			"items": {
				Type: generation.TypeArray,
				Items: &generation.Schema{
					Type: generation.TypeObject,
					Properties: map[string]*generation.Schema{
						"name":   {Type: generation.TypeString},
						"price":  {Type: generation.TypeNumber},
						"amount": {Type: generation.TypeString},
					},
					PropertyOrder: []string{"name", "price", "amount"},
					Required:      []string{"name", "price", "amount"},
				},
			},
			"totalSpent": {Type: generation.TypeNumber},
			"remaining":  {Type: generation.TypeNumber},
			"strategy":   {Type: generation.TypeString},
		},
		PropertyOrder: []string{"items", "totalSpent", "remaining", "strategy"},
		Required:      []string{"items", "totalSpent", "remaining", "strategy"},
	}
}

func glycemicEnum() []string {
	out := make([]string, len(recipe.GlycemicIndexValues))
	for i, v := range recipe.GlycemicIndexValues {
		out[i] = string(v)
	}
	return out
}
