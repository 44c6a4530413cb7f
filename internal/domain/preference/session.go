package preference

import "sync"

// SessionState owns the mutable preferences of one user session.
// Edits are atomic; the pipeline only ever sees a Snapshot.
type SessionState struct {
	mu      sync.RWMutex
	current Context
}

// NewSessionState creates a session from an initial context
func NewSessionState(initial Context) *SessionState {
	return &SessionState{current: initial}
}

// Snapshot returns the current immutable context
func (s *SessionState) Snapshot() Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Draft returns an independent copy that edits can be staged on
func (s *SessionState) Draft() *SessionState {
	return NewSessionState(s.Snapshot())
}

// Commit replaces the current preferences with a staged snapshot
func (s *SessionState) Commit(c Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

// AddAllergy declares an allergy. Adding a known allergy is a no-op.
func (s *SessionState) AddAllergy(allergy string) error {
	n := Normalize(allergy)
	if n == "" {
		return ErrEmptyValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.current.allergies, n) >= 0 {
		return nil
	}
	s.current.allergies = append(append([]string(nil), s.current.allergies...), n)
	return nil
}

// RemoveAllergy removes an allergy if present
func (s *SessionState) RemoveAllergy(allergy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.allergies = without(s.current.allergies, Normalize(allergy))
}

// AddCondition declares a medical or dietary condition
func (s *SessionState) AddCondition(condition string) error {
	n := Normalize(condition)
	if n == "" {
		return ErrEmptyValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.current.conditions, n) >= 0 {
		return nil
	}
	s.current.conditions = append(append([]string(nil), s.current.conditions...), n)
	return nil
}

// RemoveCondition removes a condition if present
func (s *SessionState) RemoveCondition(condition string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.conditions = without(s.current.conditions, Normalize(condition))
}

// SetCalorieGoal sets the daily calorie goal; 0 clears it
func (s *SessionState) SetCalorieGoal(goal int) error {
	if goal < 0 {
		return ErrNegativeCalorieGoal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.dailyCalorieGoal = goal
	return nil
}

// SetPlan changes the plan tier
func (s *SessionState) SetPlan(plan PlanTier) error {
	p, err := ParsePlanTier(string(plan))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.plan = p
	return nil
}

// SetLocale changes the locale
func (s *SessionState) SetLocale(locale Locale) error {
	l, err := ParseLocale(string(locale))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.locale = l
	return nil
}

// without returns a fresh slice so snapshots handed out earlier stay untouched
func without(list []string, v string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
