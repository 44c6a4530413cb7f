package preference

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesConstraints(t *testing.T) {
	ctx, err := New(Options{
		Allergies:  []string{"  Milk ", "EGG", "milk", ""},
		Conditions: []string{"Diabetes", " diabetes"},
		Plan:       "Family",
		Locale:     "tr-TR",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"milk", "egg"}, ctx.Allergies())
	assert.Equal(t, []string{"diabetes"}, ctx.Conditions())
	assert.Equal(t, PlanFamily, ctx.Plan())
	assert.Equal(t, LocaleTurkish, ctx.Locale())
	assert.True(t, ctx.HasAllergy(" MILK"))
}

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New(Options{DailyCalorieGoal: -1})
	assert.ErrorIs(t, err, ErrNegativeCalorieGoal)

	_, err = New(Options{Plan: "platinum"})
	assert.ErrorIs(t, err, ErrUnknownPlan)

	_, err = New(Options{Locale: "fr"})
	assert.ErrorIs(t, err, ErrUnknownLocale)
}

func TestZeroContextDefaults(t *testing.T) {
	var ctx Context

	assert.Equal(t, LocaleEnglish, ctx.Locale())
	assert.Equal(t, PlanUnspecified, ctx.Plan())
	assert.Empty(t, ctx.Allergies())
	assert.Zero(t, ctx.DailyCalorieGoal())
}

func TestAccessorsReturnCopies(t *testing.T) {
	ctx := MustNew(Options{Allergies: []string{"peanut"}})

	got := ctx.Allergies()
	got[0] = "changed"

	assert.Equal(t, []string{"peanut"}, ctx.Allergies())
}

func TestSessionStateEdits(t *testing.T) {
	s := NewSessionState(MustNew(Options{Allergies: []string{"milk"}}))

	require.NoError(t, s.AddAllergy(" Sesame "))
	require.NoError(t, s.AddAllergy("milk"))
	require.NoError(t, s.AddCondition("Celiac"))
	require.NoError(t, s.SetCalorieGoal(1800))
	require.NoError(t, s.SetPlan(PlanBasic))
	require.NoError(t, s.SetLocale(LocaleGerman))

	snap := s.Snapshot()
	assert.Equal(t, []string{"milk", "sesame"}, snap.Allergies())
	assert.Equal(t, []string{"celiac"}, snap.Conditions())
	assert.Equal(t, 1800, snap.DailyCalorieGoal())
	assert.Equal(t, PlanBasic, snap.Plan())
	assert.Equal(t, LocaleGerman, snap.Locale())

	s.RemoveAllergy("MILK")
	s.RemoveCondition("celiac")
	assert.Equal(t, []string{"sesame"}, s.Snapshot().Allergies())
	assert.Empty(t, s.Snapshot().Conditions())

	assert.ErrorIs(t, s.AddAllergy("   "), ErrEmptyValue)
	assert.ErrorIs(t, s.SetCalorieGoal(-5), ErrNegativeCalorieGoal)
	assert.ErrorIs(t, s.SetPlan("gold"), ErrUnknownPlan)
}

func TestSnapshotIsolatedFromLaterEdits(t *testing.T) {
	s := NewSessionState(MustNew(Options{Allergies: []string{"milk", "egg"}}))
	snap := s.Snapshot()

	s.RemoveAllergy("milk")
	require.NoError(t, s.AddAllergy("soy"))

	assert.Equal(t, []string{"milk", "egg"}, snap.Allergies())
	assert.Equal(t, []string{"egg", "soy"}, s.Snapshot().Allergies())
}

func TestSessionStateConcurrentAccess(t *testing.T) {
	s := NewSessionState(MustNew(Options{}))
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.AddAllergy("peanut")
			_ = s.SetCalorieGoal(2000)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot().Allergies()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"peanut"}, s.Snapshot().Allergies())
}
