package gorm

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

type PreferenceRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo *PreferenceRepository
	ctx  context.Context
}

func (s *PreferenceRepositoryTestSuite) SetupTest() {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Enabled:     true,
		Driver:      config.DriverSQLite,
		Path:        "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		AutoMigrate: true,
	}}

	db, err := Open(cfg, zaptest.NewLogger(s.T()))
	s.Require().NoError(err)

	s.db = db
	s.repo = NewPreferenceRepository(db)
	s.ctx = context.Background()
}

func (s *PreferenceRepositoryTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *PreferenceRepositoryTestSuite) TestSaveAndLoad() {
	id := uuid.New()
	opts := preference.Options{
		Allergies:        []string{"peanut", "shellfish"},
		Conditions:       []string{"celiac"},
		DailyCalorieGoal: gofakeit.Number(1200, 3000),
		Plan:             preference.PlanFamily,
		Locale:           preference.LocaleTurkish,
	}

	s.Require().NoError(s.repo.Save(s.ctx, id, opts))

	loaded, err := s.repo.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(opts, loaded)
}

func (s *PreferenceRepositoryTestSuite) TestSaveOverwrites() {
	id := uuid.New()
	s.Require().NoError(s.repo.Save(s.ctx, id, preference.Options{Allergies: []string{"egg"}, Locale: preference.LocaleEnglish}))
	s.Require().NoError(s.repo.Save(s.ctx, id, preference.Options{Allergies: []string{"milk"}, Locale: preference.LocaleGerman}))

	loaded, err := s.repo.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Equal([]string{"milk"}, loaded.Allergies)
	s.Equal(preference.LocaleGerman, loaded.Locale)

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func (s *PreferenceRepositoryTestSuite) TestEmptyListsRoundTrip() {
	id := uuid.New()
	s.Require().NoError(s.repo.Save(s.ctx, id, preference.Options{}))

	loaded, err := s.repo.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(loaded.Allergies)
	s.Empty(loaded.Conditions)
}

func (s *PreferenceRepositoryTestSuite) TestMissingSession() {
	_, err := s.repo.Load(s.ctx, uuid.New())
	s.ErrorIs(err, outbound.ErrPreferencesNotFound)

	s.ErrorIs(s.repo.Delete(s.ctx, uuid.New()), outbound.ErrPreferencesNotFound)
}

func (s *PreferenceRepositoryTestSuite) TestDelete() {
	id := uuid.New()
	s.Require().NoError(s.repo.Save(s.ctx, id, preference.Options{Allergies: []string{"soy"}}))
	s.Require().NoError(s.repo.Delete(s.ctx, id))

	_, err := s.repo.Load(s.ctx, id)
	s.ErrorIs(err, outbound.ErrPreferencesNotFound)
}

func TestPreferenceRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PreferenceRepositoryTestSuite))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{Database: config.DatabaseConfig{Driver: "mysql"}}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestStringSliceScan(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringSlice{"a", "b"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
}
