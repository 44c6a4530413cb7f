package recipe

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Value Objects - Immutable values shared by the generation pipeline

const (
	MinHealthScore = 1
	MaxHealthScore = 10
)

// GlycemicIndex classifies how quickly a recipe raises blood sugar
type GlycemicIndex string

const (
	GlycemicLow    GlycemicIndex = "Low"
	GlycemicMedium GlycemicIndex = "Medium"
	GlycemicHigh   GlycemicIndex = "High"
)

// GlycemicIndexValues lists the enum members in schema order
var GlycemicIndexValues = []GlycemicIndex{GlycemicLow, GlycemicMedium, GlycemicHigh}

// Valid reports whether the value is one of the canonical members
func (g GlycemicIndex) Valid() bool {
	for _, v := range GlycemicIndexValues {
		if g == v {
			return true
		}
	}
	return false
}

// ParseGlycemicIndex matches s case-insensitively and returns the canonical member
func ParseGlycemicIndex(s string) (GlycemicIndex, bool) {
	s = strings.TrimSpace(s)
	for _, v := range GlycemicIndexValues {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// CalorieBand is the inclusive per-recipe calorie range derived from a daily goal
type CalorieBand struct {
	Min float64
	Max float64
}

// BandFor derives [20%, 35%] of the daily goal. A goal of 0 has no band.
func BandFor(dailyGoal int) (CalorieBand, bool) {
	if dailyGoal <= 0 {
		return CalorieBand{}, false
	}
	return CalorieBand{
		Min: float64(dailyGoal*20) / 100,
		Max: float64(dailyGoal*35) / 100,
	}, true
}

// Contains reports whether kcal lies inside the band, bounds included
func (b CalorieBand) Contains(kcal float64) bool {
	return kcal >= b.Min && kcal <= b.Max
}

var quantityPattern = regexp.MustCompile(`[-+]?\d+(?:[.,]\d+)*`)

// NumberFormat names the separators a locale writes numbers with
type NumberFormat struct {
	Decimal string
	Group   string
}

// DefaultNumberFormat is the English convention: "1,200.5"
var DefaultNumberFormat = NumberFormat{Decimal: ".", Group: ","}

// ParseQuantity extracts the first number from a textual quantity such as
// "520 kcal", "1,200 kcal" or "12,5 g" using DefaultNumberFormat.
func ParseQuantity(s string) (float64, error) {
	return ParseQuantityIn(s, DefaultNumberFormat)
}

// ParseQuantityIn extracts the first number from s written in format nf.
// Group separators are only honored between full three-digit groups, so a
// lone separator that does not group ("12,5" in English) is read as decimal.
func ParseQuantityIn(s string, nf NumberFormat) (float64, error) {
	if nf.Decimal == "" {
		nf = DefaultNumberFormat
	}
	m := quantityPattern.FindString(s)
	if m == "" {
		return 0, ErrNotNumeric
	}

	if nf.Group != "" && isGrouped(m, nf) {
		m = strings.ReplaceAll(m, nf.Group, "")
	}
	m = strings.Replace(m, nf.Decimal, ".", 1)
	if nf.Group != "" && strings.Count(m, nf.Group) == 1 && !strings.Contains(m, ".") {
		m = strings.Replace(m, nf.Group, ".", 1)
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotNumeric
	}
	return v, nil
}

// isGrouped reports whether the integer part of m is written as 1-3 digits
// followed by one or more group-separated runs of exactly three digits
func isGrouped(m string, nf NumberFormat) bool {
	intPart := strings.TrimLeft(m, "+-")
	if i := strings.Index(intPart, nf.Decimal); i >= 0 {
		intPart = intPart[:i]
	}
	groups := strings.Split(intPart, nf.Group)
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
