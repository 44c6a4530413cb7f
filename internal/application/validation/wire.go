package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// flexString accepts a JSON string or a JSON number. Generators often emit
// 520 where "520" was declared.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// wireRecipe mirrors the declared schema with pointers so that absent
// fields can be told apart from zero values
type wireRecipe struct {
	Name        *string     `json:"name"`
	Summary     *string     `json:"summary"`
	PrepTime    *flexString `json:"prepTime"`
	Ingredients []string    `json:"ingredients"`
	Steps       []string    `json:"steps"`
	Warnings    []string    `json:"warnings"`
	Health      *wireHealth `json:"health"`
	Cost        *flexString `json:"cost"`
	CostReason  *string     `json:"costReason"`
}

type wireHealth struct {
	Calories      *flexString `json:"calories"`
	Protein       *flexString `json:"protein"`
	Carbs         *flexString `json:"carbs"`
	Fat           *flexString `json:"fat"`
	Fiber         *flexString `json:"fiber"`
	Sugar         *flexString `json:"sugar"`
	Sodium        *flexString `json:"sodium"`
	Vitamins      []string    `json:"vitamins"`
	HealthScore   *float64    `json:"healthScore"`
	GlycemicIndex *string     `json:"glycemicIndex"`
	Comment       *string     `json:"comment"`
}

// missingField returns the dotted path of the first absent or blank
// required field, or "" when complete
func (w wireRecipe) missingField(withCost bool) string {
	switch {
	case blank(w.Name):
		return "name"
	case w.Summary == nil:
		return "summary"
	case blankFlex(w.PrepTime):
		return "prepTime"
	case len(w.Ingredients) == 0:
		return "ingredients"
	case len(w.Steps) == 0:
		return "steps"
	case w.Health == nil:
		return "health"
	}
	h := w.Health
	required := []struct {
		name  string
		value *flexString
	}{
		{"calories", h.Calories},
		{"protein", h.Protein},
		{"carbs", h.Carbs},
		{"fat", h.Fat},
		{"fiber", h.Fiber},
		{"sugar", h.Sugar},
		{"sodium", h.Sodium},
	}
	for _, r := range required {
		if blankFlex(r.value) {
			return "health." + r.name
		}
	}
	if h.HealthScore == nil {
		return "health.healthScore"
	}
	if blank(h.GlycemicIndex) {
		return "health.glycemicIndex"
	}
	// an empty list or comment is a valid answer, an absent key is not
	if h.Vitamins == nil {
		return "health.vitamins"
	}
	if h.Comment == nil {
		return "health.comment"
	}
	if withCost {
		if blankFlex(w.Cost) {
			return "cost"
		}
		if blank(w.CostReason) {
			return "costReason"
		}
	}
	return ""
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func blankFlex(s *flexString) bool {
	return s == nil || strings.TrimSpace(string(*s)) == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFlex(s *flexString) string {
	if s == nil {
		return ""
	}
	return string(*s)
}

type wireGroceryList struct {
	Items      []wireGroceryItem `json:"items"`
	TotalSpent *float64          `json:"totalSpent"`
	Remaining  *float64          `json:"remaining"`
	Strategy   *string           `json:"strategy"`
}

type wireGroceryItem struct {
	Name   *string     `json:"name"`
	Price  *float64    `json:"price"`
	Amount *flexString `json:"amount"`
}

func (w wireGroceryList) missingField() string {
	switch {
	case len(w.Items) == 0:
		return "items"
	case w.TotalSpent == nil:
		return "totalSpent"
	case w.Remaining == nil:
		return "remaining"
	case w.Strategy == nil:
		return "strategy"
	}
	for i, item := range w.Items {
		switch {
		case blank(item.Name):
			return "items[" + strconv.Itoa(i) + "].name"
		case item.Price == nil:
			return "items[" + strconv.Itoa(i) + "].price"
		case blankFlex(item.Amount):
			return "items[" + strconv.Itoa(i) + "].amount"
		}
	}
	return ""
}
