package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
	"github.com/alchemorsel/mealguard/test/testutils"
)

func TestCreateAndGet(t *testing.T) {
	svc := NewService(Config{}, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	id, prefs, err := svc.Create(ctx, preference.Options{Allergies: []string{" Peanut "}, Locale: "tr-TR"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, []string{"peanut"}, prefs.Allergies())

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, preference.LocaleTurkish, got.Locale())
}

func TestCreateRejectsInvalidOptions(t *testing.T) {
	svc := NewService(Config{}, nil, zaptest.NewLogger(t))

	_, _, err := svc.Create(context.Background(), preference.Options{DailyCalorieGoal: -1})

	assert.ErrorIs(t, err, preference.ErrNegativeCalorieGoal)
	assert.Equal(t, 0, svc.Len())
}

func TestUpdateAppliesEditsAtomically(t *testing.T) {
	svc := NewService(Config{}, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	id, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)

	prefs, err := svc.Update(ctx, id, func(s *preference.SessionState) error {
		if err := s.AddAllergy("egg"); err != nil {
			return err
		}
		return s.SetPlan(preference.PlanFamily)
	})
	require.NoError(t, err)
	assert.True(t, prefs.HasAllergy("egg"))
	assert.Equal(t, preference.PlanFamily, prefs.Plan())

	_, err = svc.Update(ctx, id, func(s *preference.SessionState) error {
		return s.AddAllergy("   ")
	})
	assert.ErrorIs(t, err, preference.ErrEmptyValue)
}

func TestFailedUpdateLeavesSessionUntouched(t *testing.T) {
	svc := NewService(Config{}, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	id, _, err := svc.Create(ctx, preference.Options{DailyCalorieGoal: 1800, Plan: preference.PlanBasic})
	require.NoError(t, err)

	_, err = svc.Update(ctx, id, func(s *preference.SessionState) error {
		if err := s.SetCalorieGoal(2000); err != nil {
			return err
		}
		if err := s.AddAllergy("milk"); err != nil {
			return err
		}
		return s.SetPlan("gold")
	})
	require.Error(t, err)

	prefs, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1800, prefs.DailyCalorieGoal())
	assert.Equal(t, preference.PlanBasic, prefs.Plan())
	assert.False(t, prefs.HasAllergy("milk"))
}

func TestUpdateIsNotCommittedWhenSaveFails(t *testing.T) {
	repo := new(testutils.MockPreferenceRepository)
	ctx := context.Background()
	repo.On("Save", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	svc := NewService(Config{}, repo, zaptest.NewLogger(t))
	id, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)

	repo.On("Save", ctx, id, mock.Anything).Return(errors.New("connection reset")).Once()
	_, err = svc.Update(ctx, id, func(s *preference.SessionState) error {
		return s.AddAllergy("egg")
	})
	assert.ErrorContains(t, err, "connection reset")

	prefs, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, prefs.HasAllergy("egg"))
	repo.AssertExpectations(t)
}

func TestUnknownSession(t *testing.T) {
	svc := NewService(Config{}, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrSessionNotFound)
}

func TestSessionsArePersistedAndRestored(t *testing.T) {
	repo := new(testutils.MockPreferenceRepository)
	ctx := context.Background()
	repo.On("Save", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("preference.Options")).Return(nil)

	svc := NewService(Config{}, repo, zaptest.NewLogger(t))
	id, _, err := svc.Create(ctx, preference.Options{Conditions: []string{"diabetes"}})
	require.NoError(t, err)

	// a fresh service only sees the repository
	restored := NewService(Config{}, repo, zaptest.NewLogger(t))
	repo.On("Load", ctx, id).Return(preference.Options{Conditions: []string{"diabetes"}}, nil).Once()

	prefs, err := restored.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"diabetes"}, prefs.Conditions())

	_, err = restored.Get(ctx, id)
	require.NoError(t, err, "second lookup is served from memory")
	repo.AssertNumberOfCalls(t, "Load", 1)
}

func TestRepositoryFailuresSurface(t *testing.T) {
	repo := new(testutils.MockPreferenceRepository)
	ctx := context.Background()
	repo.On("Save", ctx, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := NewService(Config{}, repo, zaptest.NewLogger(t))
	_, _, err := svc.Create(ctx, preference.Options{})

	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, svc.Len())
}

func TestDeleteWithRepository(t *testing.T) {
	repo := new(testutils.MockPreferenceRepository)
	ctx := context.Background()
	repo.On("Save", ctx, mock.Anything, mock.Anything).Return(nil)
	svc := NewService(Config{}, repo, zaptest.NewLogger(t))
	id, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)

	repo.On("Delete", ctx, id).Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, id))

	repo.On("Load", ctx, id).Return(preference.Options{}, outbound.ErrPreferencesNotFound)
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	svc := NewService(Config{IdleTTL: time.Hour}, nil, zaptest.NewLogger(t))
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	ctx := context.Background()

	stale, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)
	clock = clock.Add(45 * time.Minute)
	fresh, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 1, svc.Sweep())

	_, err = svc.Get(ctx, stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Get(ctx, fresh)
	assert.NoError(t, err)
}

func TestConcurrentUpdates(t *testing.T) {
	svc := NewService(Config{}, nil, zaptest.NewLogger(t))
	ctx := context.Background()
	id, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)

	allergies := []string{"egg", "milk", "soy", "wheat", "fish", "sesame", "peanut", "shellfish"}
	done := make(chan struct{})
	for _, a := range allergies {
		go func(a string) {
			defer func() { done <- struct{}{} }()
			_, _ = svc.Update(ctx, id, func(s *preference.SessionState) error {
				return s.AddAllergy(a)
			})
		}(a)
	}
	for range allergies {
		<-done
	}

	prefs, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, allergies, prefs.Allergies())
}

func TestConcurrentUpdatesPersistLatestState(t *testing.T) {
	repo := new(testutils.MockPreferenceRepository)
	ctx := context.Background()
	var (
		mu    sync.Mutex
		saved preference.Options
	)
	repo.On("Save", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		saved = args.Get(2).(preference.Options)
		mu.Unlock()
	}).Return(nil)

	svc := NewService(Config{}, repo, zaptest.NewLogger(t))
	id, _, err := svc.Create(ctx, preference.Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, a := range []string{"egg", "milk", "soy", "wheat", "fish", "sesame"} {
		wg.Add(1)
		go func(a string) {
			defer wg.Done()
			_, _ = svc.Update(ctx, id, func(s *preference.SessionState) error {
				return s.AddAllergy(a)
			})
		}(a)
	}
	wg.Wait()

	prefs, err := svc.Get(ctx, id)
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, prefs.Options(), saved)
}
