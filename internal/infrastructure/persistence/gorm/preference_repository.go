package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// PreferenceRepository implements the preference repository interface using GORM
type PreferenceRepository struct {
	db *gorm.DB
}

var _ outbound.PreferenceRepository = (*PreferenceRepository)(nil)

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Save upserts the snapshot for a session
func (r *PreferenceRepository) Save(ctx context.Context, sessionID uuid.UUID, opts preference.Options) error {
	model := PreferenceToModel(sessionID, opts)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"allergies", "conditions", "daily_calorie_goal", "plan", "locale", "updated_at"}),
	}).Create(model).Error
}

// Load returns the stored snapshot for a session
func (r *PreferenceRepository) Load(ctx context.Context, sessionID uuid.UUID) (preference.Options, error) {
	var model PreferenceModel

	err := r.db.WithContext(ctx).First(&model, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return preference.Options{}, outbound.ErrPreferencesNotFound
		}
		return preference.Options{}, err
	}

	return ModelToPreference(&model), nil
}

// Delete removes the snapshot for a session
func (r *PreferenceRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&PreferenceModel{}, "session_id = ?", sessionID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return outbound.ErrPreferencesNotFound
	}

	return nil
}

// Count returns the number of stored sessions
func (r *PreferenceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PreferenceModel{}).Count(&count).Error
	return count, err
}
