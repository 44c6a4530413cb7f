// Package validation checks raw generator output against the declared schema
// and the domain invariants before anything reaches a user.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/application/allergen"
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// Config tunes validator leniency
type Config struct {
	// AllowTruncate drops records beyond the quota instead of failing the batch
	AllowTruncate bool
}

// Expected describes what a recipe batch must satisfy
type Expected struct {
	Quota     int
	Band      *recipe.CalorieBand
	Allergies []string
	WithCost  bool
	// Numbers is the locale format calories are written in; zero means English
	Numbers   recipe.NumberFormat
}

// Validator is stateless apart from its configuration
type Validator struct {
	cfg    Config
	logger *zap.Logger
}

// NewValidator creates a validator
func NewValidator(cfg Config, logger *zap.Logger) *Validator {
	return &Validator{cfg: cfg, logger: logger.Named("validator")}
}

// Validate runs the gates in order and stops at the first failing one:
// malformedJson, wrongCount, missingField, allergenLeak, calorieOutOfBand,
// invalidEnumOrRange. Record and step order are preserved.
func (v *Validator) Validate(raw generation.RawOutput, exp Expected) ([]recipe.Recipe, error) {
	var batch []wireRecipe
	if err := decode(raw.Text, &batch); err != nil {
		return nil, err
	}

	if v.cfg.AllowTruncate && exp.Quota > 0 && len(batch) > exp.Quota {
		v.logger.Debug("Truncating over-generated batch",
			zap.Int("quota", exp.Quota),
			zap.Int("received", len(batch)))
		batch = batch[:exp.Quota]
	}

	if len(batch) != exp.Quota {
		f := generation.NewFailure(generation.ReasonWrongCount,
			fmt.Sprintf("expected exactly %d records, got %d", exp.Quota, len(batch)))
		f.Expected = exp.Quota
		f.Got = len(batch)
		return nil, f
	}

	for i, w := range batch {
		if field := w.missingField(exp.WithCost); field != "" {
			f := generation.NewFailure(generation.ReasonMissingField,
				fmt.Sprintf("record %d is missing %s", i, field))
			f.Field = field
			f.Record = i
			return nil, f
		}
	}

	for i, w := range batch {
		if hit, ok := allergen.ScanEntries(w.Ingredients, exp.Allergies); ok {
			f := generation.NewFailure(generation.ReasonAllergenLeak,
				fmt.Sprintf("record %d ingredient matches declared allergy %q", i, hit.Allergen))
			f.Allergen = hit.Allergen
			f.Token = hit.Entry
			f.Field = fmt.Sprintf("ingredients[%d]", hit.Index)
			f.Record = i
			return nil, f
		}
	}

	recipes := make([]recipe.Recipe, len(batch))
	for i, w := range batch {
		recipes[i] = toRecipe(w, exp.WithCost)
	}

	if exp.Band != nil {
		var (
			survivors []recipe.Recipe
			rejected  []int
		)
		for i, r := range recipes {
			kcal, err := r.Health.CalorieValueIn(exp.Numbers)
			if err != nil || !exp.Band.Contains(kcal) {
				rejected = append(rejected, i)
				continue
			}
			survivors = append(survivors, r)
		}
		if len(rejected) > 0 {
			f := generation.NewFailure(generation.ReasonCalorieOutOfBand,
				fmt.Sprintf("%d of %d records outside %.2f-%.2f kcal", len(rejected), len(recipes), exp.Band.Min, exp.Band.Max))
			f.Rejected = rejected
			f.Record = rejected[0]
			f.Expected = exp.Quota
			// survivors are only handed back if they also pass the enum and range gate
			for _, r := range survivors {
				if checkEnumAndRange(r) == nil {
					f.Partial = append(f.Partial, r)
				}
			}
			f.Got = len(f.Partial)
			return nil, f
		}
	}

	for i, r := range recipes {
		if err := checkEnumAndRange(r); err != nil {
			err.Record = i
			return nil, err
		}
	}

	return recipes, nil
}

// ValidateGroceries checks a grocery list: malformedJson, missingField,
// allergenLeak on item names, then price and budget sum rules.
func (v *Validator) ValidateGroceries(raw generation.RawOutput, budget float64, allergies []string) (*recipe.GroceryList, error) {
	var w wireGroceryList
	if err := decode(raw.Text, &w); err != nil {
		return nil, err
	}

	if field := w.missingField(); field != "" {
		f := generation.NewFailure(generation.ReasonMissingField, "grocery list is missing "+field)
		f.Field = field
		return nil, f
	}

	list := &recipe.GroceryList{
		Items:      make([]recipe.GroceryItem, len(w.Items)),
		TotalSpent: *w.TotalSpent,
		Remaining:  *w.Remaining,
		Strategy:   *w.Strategy,
	}
	for i, item := range w.Items {
		list.Items[i] = recipe.GroceryItem{Name: *item.Name, Price: *item.Price, Amount: derefFlex(item.Amount)}
	}

	if hit, ok := allergen.ScanEntries(list.ItemNames(), allergies); ok {
		f := generation.NewFailure(generation.ReasonAllergenLeak,
			fmt.Sprintf("grocery item matches declared allergy %q", hit.Allergen))
		f.Allergen = hit.Allergen
		f.Token = hit.Entry
		f.Record = hit.Index
		return nil, f
	}

	if err := list.Validate(budget); err != nil {
		f := generation.NewFailure(generation.ReasonInvalidEnumOrRange,
			fmt.Sprintf("%s (spent %.2f + remaining %.2f, budget %.2f)", err, list.TotalSpent, list.Remaining, budget))
		return nil, f.WithCause(err)
	}

	return list, nil
}

// decode strips one surrounding markdown code fence and unmarshals strictly
func decode(text string, into any) error {
	body := stripFence(text)
	if body == "" {
		return generation.NewFailure(generation.ReasonMalformedJSON, "response body is empty")
	}
	if err := json.Unmarshal([]byte(body), into); err != nil {
		return generation.NewFailure(generation.ReasonMalformedJSON, "response is not valid JSON for the declared schema").WithCause(err)
	}
	return nil
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(s, "```")
	// drop the opening fence line including any language tag
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	return strings.TrimSpace(s)
}

func toRecipe(w wireRecipe, withCost bool) recipe.Recipe {
	h := w.Health
	r := recipe.Recipe{
		Name:        strings.TrimSpace(*w.Name),
		Summary:     deref(w.Summary),
		PrepTime:    derefFlex(w.PrepTime),
		Ingredients: append([]string(nil), w.Ingredients...),
		Steps:       append([]string(nil), w.Steps...),
		Warnings:    append([]string{}, w.Warnings...),
		Health: recipe.HealthStats{
			Calories:      derefFlex(h.Calories),
			Protein:       derefFlex(h.Protein),
			Carbs:         derefFlex(h.Carbs),
			Fat:           derefFlex(h.Fat),
			Fiber:         derefFlex(h.Fiber),
			Sugar:         derefFlex(h.Sugar),
			Sodium:        derefFlex(h.Sodium),
			Vitamins:      append([]string{}, h.Vitamins...),
			GlycemicIndex: recipe.GlycemicIndex(strings.TrimSpace(deref(h.GlycemicIndex))),
			Comment:       deref(h.Comment),
		},
	}
	if gi, ok := recipe.ParseGlycemicIndex(deref(h.GlycemicIndex)); ok {
		r.Health.GlycemicIndex = gi
	}
	// a fractional score is kept out of range so the enum gate rejects it
	score := *h.HealthScore
	if score == math.Trunc(score) && score >= math.MinInt32 && score <= math.MaxInt32 {
		r.Health.HealthScore = int(score)
	} else {
		r.Health.HealthScore = -1
	}
	if withCost {
		r.Cost = derefFlex(w.Cost)
		r.CostReason = deref(w.CostReason)
	}
	return r
}

func checkEnumAndRange(r recipe.Recipe) *generation.Failure {
	if r.Health.HealthScore < recipe.MinHealthScore || r.Health.HealthScore > recipe.MaxHealthScore {
		f := generation.NewFailure(generation.ReasonInvalidEnumOrRange,
			fmt.Sprintf("healthScore %d outside %d-%d", r.Health.HealthScore, recipe.MinHealthScore, recipe.MaxHealthScore))
		f.Field = "health.healthScore"
		return f
	}
	if !r.Health.GlycemicIndex.Valid() {
		f := generation.NewFailure(generation.ReasonInvalidEnumOrRange,
			fmt.Sprintf("glycemicIndex %q is not one of Low, Medium, High", r.Health.GlycemicIndex))
		f.Field = "health.glycemicIndex"
		return f
	}
	return nil
}
