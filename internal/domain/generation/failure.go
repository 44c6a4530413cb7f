package generation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alchemorsel/mealguard/internal/domain/recipe"
)

// Class groups failure reasons by who is at fault and how to recover
type Class string

const (
	ClassSafety    Class = "safety"
	ClassTransport Class = "transport"
	ClassSchema    Class = "schema"
	ClassDomain    Class = "domain"
)

// Reason is the precise failure tag
type Reason string

const (
	ReasonBlocked            Reason = "blocked"
	ReasonNetwork            Reason = "network"
	ReasonTimeout            Reason = "timeout"
	ReasonCanceled           Reason = "canceled"
	ReasonEmpty              Reason = "empty"
	ReasonServiceError       Reason = "serviceError"
	ReasonMalformedJSON      Reason = "malformedJson"
	ReasonMissingField       Reason = "missingField"
	ReasonWrongCount         Reason = "wrongCount"
	ReasonInvalidEnumOrRange Reason = "invalidEnumOrRange"
	ReasonAllergenLeak       Reason = "allergenLeak"
	ReasonCalorieOutOfBand   Reason = "calorieOutOfBand"
	ReasonInvalidRequest     Reason = "invalidRequest"
)

// Class returns the class a reason belongs to. invalidRequest is filed under domain.
func (r Reason) Class() Class {
	switch r {
	case ReasonBlocked:
		return ClassSafety
	case ReasonNetwork, ReasonTimeout, ReasonCanceled, ReasonEmpty, ReasonServiceError:
		return ClassTransport
	case ReasonMalformedJSON, ReasonMissingField, ReasonWrongCount, ReasonInvalidEnumOrRange:
		return ClassSchema
	default:
		return ClassDomain
	}
}

// Failure is the typed error returned across every pipeline boundary
type Failure struct {
	Class  Class
	Reason Reason
	Detail string

	// Allergen is the matched allergy for blocked and allergenLeak
	Allergen string
	// Token is the offending input token or ingredient entry
	Token string
	// Field is the dotted path of a missing or invalid field
	Field string
	// Record is the zero-based index of the offending record, -1 when not applicable
	Record int

	// Expected and Got carry counts for wrongCount
	Expected int
	Got      int

	// Partial holds the in-band survivors of a calorieOutOfBand batch.
	// It is never populated for allergenLeak.
	Partial []recipe.Recipe
	// Rejected holds the indexes of out-of-band records
	Rejected []int

	Cause error
}

// NewFailure creates a failure for the given reason
func NewFailure(reason Reason, detail string) *Failure {
	return &Failure{Class: reason.Class(), Reason: reason, Detail: detail, Record: -1}
}

// Blocked creates the safety rejection raised by the allergen guard
func Blocked(allergen, token string) *Failure {
	f := NewFailure(ReasonBlocked, fmt.Sprintf("input %q matches declared allergy %q", token, allergen))
	f.Allergen = allergen
	f.Token = token
	return f
}

// WithCause attaches an underlying error
func (f *Failure) WithCause(err error) *Failure {
	f.Cause = err
	return f
}

// Error implements the error interface
func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString(string(f.Class))
	b.WriteByte('/')
	b.WriteString(string(f.Reason))
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}
	if f.Cause != nil {
		b.WriteString(": ")
		b.WriteString(f.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the cause to errors.Is and errors.As
func (f *Failure) Unwrap() error {
	return f.Cause
}

// Is matches another failure with the same reason
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Reason == f.Reason
}

// Retryable reports whether one more attempt with the same payload is permitted
func (f *Failure) Retryable() bool {
	if f.Reason == ReasonCanceled {
		return false
	}
	return f.Class == ClassTransport || f.Class == ClassSchema
}

// Sentinels for errors.Is comparisons
var (
	ErrBlocked            = &Failure{Class: ClassSafety, Reason: ReasonBlocked}
	ErrNetwork            = &Failure{Class: ClassTransport, Reason: ReasonNetwork}
	ErrTimeout            = &Failure{Class: ClassTransport, Reason: ReasonTimeout}
	ErrCanceled           = &Failure{Class: ClassTransport, Reason: ReasonCanceled}
	ErrEmpty              = &Failure{Class: ClassTransport, Reason: ReasonEmpty}
	ErrServiceError       = &Failure{Class: ClassTransport, Reason: ReasonServiceError}
	ErrMalformedJSON      = &Failure{Class: ClassSchema, Reason: ReasonMalformedJSON}
	ErrMissingField       = &Failure{Class: ClassSchema, Reason: ReasonMissingField}
	ErrWrongCount         = &Failure{Class: ClassSchema, Reason: ReasonWrongCount}
	ErrInvalidEnumOrRange = &Failure{Class: ClassSchema, Reason: ReasonInvalidEnumOrRange}
	ErrAllergenLeak       = &Failure{Class: ClassDomain, Reason: ReasonAllergenLeak}
	ErrCalorieOutOfBand   = &Failure{Class: ClassDomain, Reason: ReasonCalorieOutOfBand}
	ErrInvalidRequest     = &Failure{Class: ClassDomain, Reason: ReasonInvalidRequest}
)

// AsFailure extracts a *Failure from an error chain
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ServiceError is reported by generator adapters when the remote service
// answered but refused or failed the request.
type ServiceError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
