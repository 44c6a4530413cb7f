// Package quota maps plan tiers to the exact number of records a recipe
// request must yield.
package quota

import (
	"fmt"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

var table = map[preference.PlanTier]int{
	preference.PlanBasic:    2,
	preference.PlanStandard: 4,
	preference.PlanFamily:   6,
}

// DefaultQuota applies when the plan is unspecified
const DefaultQuota = 4

// Policy is a pure lookup
type Policy struct{}

// NewPolicy creates a quota policy
func NewPolicy() *Policy {
	return &Policy{}
}

// QuotaFor returns the exact record count for a plan
func (p *Policy) QuotaFor(plan preference.PlanTier) int {
	if n, ok := table[plan]; ok {
		return n
	}
	return DefaultQuota
}

// Check returns a wrongCount failure when n differs from the plan's quota
func (p *Policy) Check(plan preference.PlanTier, n int) error {
	want := p.QuotaFor(plan)
	if n == want {
		return nil
	}
	f := generation.NewFailure(generation.ReasonWrongCount,
		fmt.Sprintf("expected exactly %d records, got %d", want, n))
	f.Expected = want
	f.Got = n
	return f
}
