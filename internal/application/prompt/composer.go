// Package prompt turns generation requests into locale-consistent instruction
// payloads with hard safety rules and a declared output schema.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/mealguard/internal/application/locale"
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// Composer builds payloads. It is pure and safe for concurrent use.
type Composer struct {
	router *locale.Router
}

// NewComposer creates a composer
func NewComposer(router *locale.Router) *Composer {
	return &Composer{router: router}
}

// NumberFormat returns the number format replies to a loc payload are read with
func (c *Composer) NumberFormat(loc preference.Locale) recipe.NumberFormat {
	return c.router.NumberFormat(loc)
}

// Compose builds the payload for req. quota is the exact record count for
// recipe requests and is ignored for every other kind.
func (c *Composer) Compose(req generation.Request, quota int) (generation.Payload, error) {
	if err := req.Validate(); err != nil {
		return generation.Payload{}, err
	}

	loc := req.Prefs.Locale()
	t := templateFor(loc)
	p := generation.Payload{
		Kind:     req.Kind,
		Locale:   loc,
		Language: c.router.InstructionLanguageFor(loc),
	}

	var b strings.Builder
	switch {
	case req.ProducesRecipes():
		if quota <= 0 {
			return generation.Payload{}, generation.NewFailure(generation.ReasonInvalidRequest,
				fmt.Sprintf("quota must be positive, got %d", quota))
		}
		withCost := req.Kind == generation.KindByBudget
		p.System = t.roleRecipes
		p.Format = generation.FormatJSON
		p.Schema = RecipeBatchSchema(quota, withCost)
		p.ExpectedCount = quota

		heading(&b, t.headingTask)
		if withCost {
			line(&b, fmt.Sprintf(t.budgetTask, styleName(t, req.Style), c.router.FormatAmount(loc, req.Amount, req.Currency)))
		} else {
			line(&b, fmt.Sprintf(t.ingredientsTask, strings.Join(cleanItems(req.Items), ", ")))
		}

		heading(&b, t.headingConstraints)
		c.writeConstraints(&b, t, req.Prefs, t.conditionRule)
		if band, ok := recipe.BandFor(req.EffectiveCalorieGoal()); ok {
			bullet(&b, fmt.Sprintf(t.calorieRule, c.router.FormatQuantity(loc, band.Min), c.router.FormatQuantity(loc, band.Max)))
		}
		bullet(&b, fmt.Sprintf(t.quotaRule, quota))

		heading(&b, t.headingOutput)
		bullet(&b, t.jsonRule)
		if withCost {
			bullet(&b, t.costRule)
		}

	case req.IsReport():
		p.System = t.roleReport
		p.Format = generation.FormatText

		heading(&b, t.headingTask)
		layout := t.harmLayout
		if req.Kind == generation.KindByItemName {
			line(&b, fmt.Sprintf(t.harmTask, strings.TrimSpace(req.Name)))
		} else {
			line(&b, fmt.Sprintf(t.dailyTask, c.router.FormatNumber(loc, float64(req.CalorieGoal))))
			layout = t.dailyLayout
		}

		heading(&b, t.headingConstraints)
		c.writeConstraints(&b, t, req.Prefs, t.conditionRule)

		heading(&b, t.headingOutput)
		line(&b, t.reportNoJSON)
		line(&b, layout)

	case req.Kind == generation.KindGroceryList:
		p.System = t.roleGrocery
		p.Format = generation.FormatJSON
		p.Schema = GroceryListSchema()

		heading(&b, t.headingTask)
		line(&b, fmt.Sprintf(t.groceryTask, c.router.FormatAmount(loc, req.Amount, req.Currency)))

		heading(&b, t.headingConstraints)
		c.writeConstraints(&b, t, req.Prefs, t.groceryConditionRule)
		bullet(&b, t.grocerySumRule)
		bullet(&b, t.groceryRemainder)

		heading(&b, t.headingOutput)
		bullet(&b, t.groceryJSONRule)
	}

	bullet(&b, t.languageRule)
	p.User = strings.TrimSpace(b.String())
	return p, nil
}

// writeConstraints states allergies and conditions even when both are empty
func (c *Composer) writeConstraints(b *strings.Builder, t template, prefs preference.Context, conditionRule string) {
	bullet(b, t.allergiesLabel+": "+listOrNone(prefs.Allergies(), t.noneDeclared))
	bullet(b, t.conditionsLabel+": "+listOrNone(prefs.Conditions(), t.noneDeclared))
	bullet(b, t.allergyRule)
	bullet(b, conditionRule)
}

func heading(b *strings.Builder, h string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(h)
	b.WriteString("\n")
}

func line(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteString("\n")
}

// bullet writes s verbatim; rule text may contain literal percent signs
func bullet(b *strings.Builder, s string) {
	b.WriteString("- ")
	b.WriteString(s)
	b.WriteString("\n")
}

func listOrNone(list []string, none string) string {
	if len(list) == 0 {
		return none
	}
	return strings.Join(list, ", ")
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func styleName(t template, style generation.FoodStyle) string {
	if style == "" {
		style = generation.StyleHome
	}
	if name, ok := t.styles[style]; ok {
		return name
	}
	return string(style)
}
