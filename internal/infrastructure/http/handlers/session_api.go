package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
)

// SessionHandlers serves session lifecycle and preference edits
type SessionHandlers struct {
	base
	sessions inbound.SessionService
}

// NewSessionHandlers creates session handlers
func NewSessionHandlers(sessions inbound.SessionService, logger *zap.Logger) *SessionHandlers {
	return &SessionHandlers{
		base:     newBase(logger.Named("session-api")),
		sessions: sessions,
	}
}

// CreateSessionRequest declares the initial preferences of a session
type CreateSessionRequest struct {
	Allergies        []string `json:"allergies" validate:"max=32,dive,required,max=64"`
	Conditions       []string `json:"conditions" validate:"max=32,dive,required,max=64"`
	DailyCalorieGoal int      `json:"dailyCalorieGoal" validate:"gte=0,lte=20000"`
	Plan             string   `json:"plan" validate:"omitempty,max=16"`
	Locale           string   `json:"locale" validate:"omitempty,max=16"`
}

// UpdateSessionRequest changes scalar preferences; omitted fields are kept
type UpdateSessionRequest struct {
	DailyCalorieGoal *int    `json:"dailyCalorieGoal" validate:"omitempty,gte=0,lte=20000"`
	Plan             *string `json:"plan" validate:"omitempty,max=16"`
	Locale           *string `json:"locale" validate:"omitempty,max=16"`
}

// ValueRequest carries a single allergy or condition
type ValueRequest struct {
	Value string `json:"value" validate:"required,max=64"`
}

// SessionResponse is the public view of a session
type SessionResponse struct {
	ID               uuid.UUID `json:"id"`
	Allergies        []string  `json:"allergies"`
	Conditions       []string  `json:"conditions"`
	DailyCalorieGoal int       `json:"dailyCalorieGoal"`
	Plan             string    `json:"plan"`
	Locale           string    `json:"locale"`
}

func toSessionResponse(id uuid.UUID, prefs preference.Context) SessionResponse {
	return SessionResponse{
		ID:               id,
		Allergies:        prefs.Allergies(),
		Conditions:       prefs.Conditions(),
		DailyCalorieGoal: prefs.DailyCalorieGoal(),
		Plan:             string(prefs.Plan()),
		Locale:           string(prefs.Locale()),
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	id, prefs, err := h.sessions.Create(r.Context(), preference.Options{
		Allergies:        req.Allergies,
		Conditions:       req.Conditions,
		DailyCalorieGoal: req.DailyCalorieGoal,
		Plan:             preference.PlanTier(req.Plan),
		Locale:           preference.Locale(req.Locale),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: toSessionResponse(id, prefs)})
}

// Get handles GET /api/v1/sessions/{sessionID}
func (h *SessionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	prefs, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toSessionResponse(id, prefs)})
}

// Update handles PATCH /api/v1/sessions/{sessionID}
func (h *SessionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSessionRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.edit(w, r, func(s *preference.SessionState) error {
		if req.DailyCalorieGoal != nil {
			if err := s.SetCalorieGoal(*req.DailyCalorieGoal); err != nil {
				return err
			}
		}
		if req.Plan != nil {
			if err := s.SetPlan(preference.PlanTier(*req.Plan)); err != nil {
				return err
			}
		}
		if req.Locale != nil {
			if err := s.SetLocale(preference.Locale(*req.Locale)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete handles DELETE /api/v1/sessions/{sessionID}
func (h *SessionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddAllergy handles POST /api/v1/sessions/{sessionID}/allergies
func (h *SessionHandlers) AddAllergy(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.edit(w, r, func(s *preference.SessionState) error { return s.AddAllergy(req.Value) })
}

// RemoveAllergy handles DELETE /api/v1/sessions/{sessionID}/allergies/{value}
func (h *SessionHandlers) RemoveAllergy(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "value")
	h.edit(w, r, func(s *preference.SessionState) error {
		s.RemoveAllergy(value)
		return nil
	})
}

// AddCondition handles POST /api/v1/sessions/{sessionID}/conditions
func (h *SessionHandlers) AddCondition(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.edit(w, r, func(s *preference.SessionState) error { return s.AddCondition(req.Value) })
}

// RemoveCondition handles DELETE /api/v1/sessions/{sessionID}/conditions/{value}
func (h *SessionHandlers) RemoveCondition(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "value")
	h.edit(w, r, func(s *preference.SessionState) error {
		s.RemoveCondition(value)
		return nil
	})
}

func (h *SessionHandlers) edit(w http.ResponseWriter, r *http.Request, fn func(*preference.SessionState) error) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	prefs, err := h.sessions.Update(r.Context(), id, fn)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: toSessionResponse(id, prefs)})
}
