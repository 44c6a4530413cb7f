// Package allergen implements the allergy matching rules shared by the
// pre-generation guard and the response validator.
package allergen

import (
	"strings"
	"unicode"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

// Decision is the outcome of a guard check
type Decision struct {
	Blocked         bool
	MatchedAllergen string
	Token           string
}

// Err converts a blocked decision into a safety failure, nil otherwise
func (d Decision) Err() error {
	if !d.Blocked {
		return nil
	}
	return generation.Blocked(d.MatchedAllergen, d.Token)
}

// Guard rejects user-typed input that matches a declared allergy before any
// generation call is made. It has no state and performs no I/O.
type Guard struct{}

// NewGuard creates a guard
func NewGuard() *Guard {
	return &Guard{}
}

// Check tokenizes free text on commas and whitespace and returns the first
// match, scanning tokens in input order with allergy order as tiebreak.
func (g *Guard) Check(input string, allergies []string) Decision {
	normalized := normalizeAll(allergies)
	if len(normalized) == 0 {
		return Decision{}
	}
	for _, token := range Tokenize(input) {
		for _, a := range normalized {
			if Matches(token, a) {
				return Decision{Blocked: true, MatchedAllergen: a, Token: token}
			}
		}
	}
	return Decision{}
}

// CheckItems checks an ordered item list as if typed as one comma-separated line
func (g *Guard) CheckItems(items []string, allergies []string) Decision {
	return g.Check(strings.Join(items, ","), allergies)
}

// Tokenize splits free text on commas and whitespace and normalizes each token
func Tokenize(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if n := preference.Normalize(f); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Matches applies bidirectional case-insensitive substring containment.
// Empty strings never match.
func Matches(a, b string) bool {
	a, b = preference.Normalize(a), preference.Normalize(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Hit locates an allergen match within a list of entries
type Hit struct {
	Index    int
	Entry    string
	Allergen string
}

// ScanEntries matches whole entries (not tokens) against the allergies and
// returns the first hit in entry order.
func ScanEntries(entries []string, allergies []string) (Hit, bool) {
	normalized := normalizeAll(allergies)
	for i, e := range entries {
		for _, a := range normalized {
			if Matches(e, a) {
				return Hit{Index: i, Entry: e, Allergen: a}, true
			}
		}
	}
	return Hit{}, false
}

func normalizeAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if n := preference.Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
