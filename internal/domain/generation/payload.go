package generation

import (
	"time"

	"golang.org/x/text/language"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

// Format is the response shape requested from the generative service
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Payload is the fully composed, locale-selected instruction for one call
type Payload struct {
	Kind     Kind
	Locale   preference.Locale
	Language language.Tag

	System string
	User   string

	Format Format
	// Schema is set for FormatJSON only
	Schema *Schema
	// ExpectedCount is the exact record count for recipe batches, 0 otherwise
	ExpectedCount int
}

// RawOutput is the unvalidated response of one gateway invocation
type RawOutput struct {
	Text     string
	Provider string
	Latency  time.Duration
}
