// Package preference defines the user constraint context consumed by the generation pipeline
package preference

import (
	"errors"
	"strings"
)

// Domain errors for preference construction and edits
var (
	ErrNegativeCalorieGoal = errors.New("daily calorie goal must not be negative")
	ErrUnknownPlan         = errors.New("unknown plan tier")
	ErrUnknownLocale       = errors.New("unknown locale")
	ErrEmptyValue          = errors.New("value must not be empty")
)

// PlanTier is the subscription level of a user
type PlanTier string

const (
	PlanUnspecified PlanTier = ""
	PlanBasic       PlanTier = "basic"
	PlanStandard    PlanTier = "standard"
	PlanFamily      PlanTier = "family"
)

// ParsePlanTier converts user input into a PlanTier
func ParsePlanTier(s string) (PlanTier, error) {
	switch PlanTier(Normalize(s)) {
	case PlanUnspecified:
		return PlanUnspecified, nil
	case PlanBasic:
		return PlanBasic, nil
	case PlanStandard:
		return PlanStandard, nil
	case PlanFamily:
		return PlanFamily, nil
	}
	return PlanUnspecified, ErrUnknownPlan
}

// Locale selects instruction language and formatting conventions
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleTurkish Locale = "tr"
	LocaleGerman  Locale = "de"
)

// Locales lists every supported locale
var Locales = []Locale{LocaleEnglish, LocaleTurkish, LocaleGerman}

// ParseLocale converts user input into a Locale. Empty input yields English.
func ParseLocale(s string) (Locale, error) {
	n := Normalize(s)
	if n == "" {
		return LocaleEnglish, nil
	}
	// accept region-qualified tags such as "tr-TR" or "en_US"
	if i := strings.IndexAny(n, "-_"); i > 0 {
		n = n[:i]
	}
	for _, l := range Locales {
		if string(l) == n {
			return l, nil
		}
	}
	return "", ErrUnknownLocale
}

// Normalize trims and lower-cases a constraint token
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Options carries raw user input for building a Context
type Options struct {
	Allergies        []string
	Conditions       []string
	DailyCalorieGoal int
	Plan             PlanTier
	Locale           Locale
}

// Context is an immutable, normalized snapshot of a user's constraints.
// It is safe for concurrent reads.
type Context struct {
	allergies        []string
	conditions       []string
	dailyCalorieGoal int
	plan             PlanTier
	locale           Locale
}

// New validates and normalizes options into a Context
func New(opts Options) (Context, error) {
	if opts.DailyCalorieGoal < 0 {
		return Context{}, ErrNegativeCalorieGoal
	}
	plan, err := ParsePlanTier(string(opts.Plan))
	if err != nil {
		return Context{}, err
	}
	loc, err := ParseLocale(string(opts.Locale))
	if err != nil {
		return Context{}, err
	}

	return Context{
		allergies:        normalizeList(opts.Allergies),
		conditions:       normalizeList(opts.Conditions),
		dailyCalorieGoal: opts.DailyCalorieGoal,
		plan:             plan,
		locale:           loc,
	}, nil
}

// MustNew is New for fixed inputs known to be valid
func MustNew(opts Options) Context {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Allergies returns the declared allergies in declaration order
func (c Context) Allergies() []string {
	return append([]string(nil), c.allergies...)
}

// Conditions returns the declared medical or dietary conditions
func (c Context) Conditions() []string {
	return append([]string(nil), c.conditions...)
}

// DailyCalorieGoal returns the goal in kcal; 0 means unconstrained
func (c Context) DailyCalorieGoal() int {
	return c.dailyCalorieGoal
}

// Plan returns the plan tier
func (c Context) Plan() PlanTier {
	return c.plan
}

// Locale returns the locale, defaulting to English
func (c Context) Locale() Locale {
	if c.locale == "" {
		return LocaleEnglish
	}
	return c.locale
}

// HasAllergy reports whether the normalized allergy is declared
func (c Context) HasAllergy(allergy string) bool {
	return indexOf(c.allergies, Normalize(allergy)) >= 0
}

// Options returns the context as editable options
func (c Context) Options() Options {
	return Options{
		Allergies:        c.Allergies(),
		Conditions:       c.Conditions(),
		DailyCalorieGoal: c.dailyCalorieGoal,
		Plan:             c.plan,
		Locale:           c.Locale(),
	}
}

// WithLocale returns a copy using a different locale
func (c Context) WithLocale(l Locale) Context {
	c.locale = l
	return c
}

// WithCalorieGoal returns a copy using a different calorie goal
func (c Context) WithCalorieGoal(goal int) (Context, error) {
	if goal < 0 {
		return Context{}, ErrNegativeCalorieGoal
	}
	c.dailyCalorieGoal = goal
	return c, nil
}

// Fingerprint is a stable textual key for caching derived content
func (c Context) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strings.Join(c.allergies, ","))
	b.WriteByte('|')
	b.WriteString(strings.Join(c.conditions, ","))
	b.WriteByte('|')
	b.WriteString(string(c.plan))
	b.WriteByte('|')
	b.WriteString(string(c.Locale()))
	return b.String()
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		n := Normalize(v)
		if n == "" || indexOf(out, n) >= 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}
