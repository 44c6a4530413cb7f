package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/mealguard/internal/application/session"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	gormRepo "github.com/alchemorsel/mealguard/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/mealguard/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
	"github.com/alchemorsel/mealguard/test/testutils"
)

// PostgresTestSuite runs the preference store against a real PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	db   *testutils.TestDatabase
	repo *gormRepo.PreferenceRepository
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	s.db = testutils.SetupTestDatabase(s.T())
	s.repo = gormRepo.NewPreferenceRepository(s.db.GormDB)
}

func (s *PostgresTestSuite) TearDownTest() {
	s.db.Truncate(s.T())
}

func (s *PostgresTestSuite) TestMigrationsAreIdempotent() {
	ctx := context.Background()
	s.Require().NoError(migrations.Apply(ctx, s.db.DB, zaptest.NewLogger(s.T())))

	m, err := migrations.New(ctx, s.db.DB, zaptest.NewLogger(s.T()))
	s.Require().NoError(err)
	defer m.Close()

	version, dirty, err := m.Version()
	s.Require().NoError(err)
	s.EqualValues(1, version)
	s.False(dirty)
}

func (s *PostgresTestSuite) TestSaveLoadDelete() {
	ctx := context.Background()
	id := uuid.New()
	opts := preference.Options{
		Allergies:        []string{"peanut", "shellfish"},
		Conditions:       []string{"diabetes"},
		DailyCalorieGoal: 1800,
		Plan:             preference.PlanFamily,
		Locale:           preference.LocaleTurkish,
	}

	s.Require().NoError(s.repo.Save(ctx, id, opts))
	opts.DailyCalorieGoal = 2000
	s.Require().NoError(s.repo.Save(ctx, id, opts))
	s.Equal(1, s.db.CountRecords(s.T(), "session_preferences"))

	got, err := s.repo.Load(ctx, id)
	s.Require().NoError(err)
	s.Equal(opts, got)

	s.Require().NoError(s.repo.Delete(ctx, id))
	_, err = s.repo.Load(ctx, id)
	s.ErrorIs(err, outbound.ErrPreferencesNotFound)
	s.ErrorIs(s.repo.Delete(ctx, id), outbound.ErrPreferencesNotFound)
}

func (s *PostgresTestSuite) TestSessionSurvivesRestart() {
	ctx := context.Background()
	logger := zaptest.NewLogger(s.T())

	first := session.NewService(session.Config{}, s.repo, logger)
	id, _, err := first.Create(ctx, preference.Options{Allergies: []string{"egg"}, DailyCalorieGoal: 2200})
	s.Require().NoError(err)
	_, err = first.Update(ctx, id, func(st *preference.SessionState) error {
		return st.AddAllergy("milk")
	})
	s.Require().NoError(err)

	restarted := session.NewService(session.Config{}, s.repo, logger)
	prefs, err := restarted.Get(ctx, id)
	s.Require().NoError(err)
	s.True(prefs.HasAllergy("egg"))
	s.True(prefs.HasAllergy("milk"))
	s.Equal(2200, prefs.DailyCalorieGoal())
}
