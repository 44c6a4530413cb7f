// Package locale selects instruction language and formatting conventions
package locale

import (
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// Convention describes how numbers, dates and money are written in a locale
type Convention struct {
	Tag              language.Tag
	DecimalSeparator string
	GroupSeparator   string
	DateLayout       string
	DefaultCurrency  currency.Unit
}

var conventions = map[preference.Locale]Convention{
	preference.LocaleEnglish: {
		Tag:              language.English,
		DecimalSeparator: ".",
		GroupSeparator:   ",",
		DateLayout:       "01/02/2006",
		DefaultCurrency:  currency.USD,
	},
	preference.LocaleTurkish: {
		Tag:              language.Turkish,
		DecimalSeparator: ",",
		GroupSeparator:   ".",
		DateLayout:       "02.01.2006",
		DefaultCurrency:  currency.TRY,
	},
	preference.LocaleGerman: {
		Tag:              language.German,
		DecimalSeparator: ",",
		GroupSeparator:   ".",
		DateLayout:       "02.01.2006",
		DefaultCurrency:  currency.EUR,
	},
}

// Router is a pure lookup over the supported locales
type Router struct {
	printers map[preference.Locale]*message.Printer
}

// NewRouter creates a router with one printer per supported locale
func NewRouter() *Router {
	printers := make(map[preference.Locale]*message.Printer, len(conventions))
	for loc, c := range conventions {
		printers[loc] = message.NewPrinter(c.Tag)
	}
	return &Router{printers: printers}
}

// InstructionLanguageFor returns the language instructions are written in
func (r *Router) InstructionLanguageFor(loc preference.Locale) language.Tag {
	return r.Convention(loc).Tag
}

// Convention returns the formatting convention, falling back to English
func (r *Router) Convention(loc preference.Locale) Convention {
	if c, ok := conventions[loc]; ok {
		return c
	}
	return conventions[preference.LocaleEnglish]
}

// FormatNumber writes v with the locale's separators and at most two decimals
func (r *Router) FormatNumber(loc preference.Locale, v float64) string {
	return r.printer(loc).Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// FormatQuantity writes v with the locale's decimal separator and no grouping,
// so generated values can be read back unambiguously
func (r *Router) FormatQuantity(loc preference.Locale, v float64) string {
	return r.printer(loc).Sprint(number.Decimal(v, number.MaxFractionDigits(2), number.NoSeparator()))
}

// NumberFormat returns the separators generated numbers are parsed with
func (r *Router) NumberFormat(loc preference.Locale) recipe.NumberFormat {
	c := r.Convention(loc)
	return recipe.NumberFormat{Decimal: c.DecimalSeparator, Group: c.GroupSeparator}
}

// FormatAmount writes a money amount. An unknown or empty ISO code uses the
// locale's default currency.
func (r *Router) FormatAmount(loc preference.Locale, amount float64, code string) string {
	unit := r.Convention(loc).DefaultCurrency
	if parsed, err := currency.ParseISO(strings.TrimSpace(code)); err == nil {
		unit = parsed
	}
	return r.printer(loc).Sprint(currency.Symbol(unit.Amount(amount)))
}

// FormatDate writes t using the locale's date layout
func (r *Router) FormatDate(loc preference.Locale, t time.Time) string {
	return t.Format(r.Convention(loc).DateLayout)
}

func (r *Router) printer(loc preference.Locale) *message.Printer {
	if p, ok := r.printers[loc]; ok {
		return p
	}
	return r.printers[preference.LocaleEnglish]
}
