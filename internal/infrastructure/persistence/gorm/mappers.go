package gorm

import (
	"github.com/google/uuid"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

// PreferenceToModel converts session options to a GORM model
func PreferenceToModel(sessionID uuid.UUID, opts preference.Options) *PreferenceModel {
	return &PreferenceModel{
		SessionID:        sessionID,
		Allergies:        StringSlice(append([]string(nil), opts.Allergies...)),
		Conditions:       StringSlice(append([]string(nil), opts.Conditions...)),
		DailyCalorieGoal: opts.DailyCalorieGoal,
		Plan:             string(opts.Plan),
		Locale:           string(opts.Locale),
	}
}

// ModelToPreference converts a GORM model back to session options
func ModelToPreference(model *PreferenceModel) preference.Options {
	return preference.Options{
		Allergies:        append([]string(nil), model.Allergies...),
		Conditions:       append([]string(nil), model.Conditions...),
		DailyCalorieGoal: model.DailyCalorieGoal,
		Plan:             preference.PlanTier(model.Plan),
		Locale:           preference.Locale(model.Locale),
	}
}
