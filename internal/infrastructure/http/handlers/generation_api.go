package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
	"github.com/alchemorsel/mealguard/pkg/errors"
)

// GenerationHandlers serves recipe searches, reports and grocery plans
type GenerationHandlers struct {
	base
	generation inbound.GenerationService
	sessions   inbound.SessionService
}

// NewGenerationHandlers creates generation handlers
func NewGenerationHandlers(gen inbound.GenerationService, sessions inbound.SessionService, logger *zap.Logger) *GenerationHandlers {
	return &GenerationHandlers{
		base:       newBase(logger.Named("generation-api")),
		generation: gen,
		sessions:   sessions,
	}
}

// IngredientSearchRequest asks for recipes built from the listed items
type IngredientSearchRequest struct {
	Items           []string `json:"items" validate:"required,min=1,max=30,dive,required,max=100"`
	AcceptShortfall bool     `json:"acceptShortfall"`
}

// BudgetSearchRequest asks for recipes within a spending limit
type BudgetSearchRequest struct {
	Amount          float64 `json:"amount" validate:"gt=0"`
	Currency        string  `json:"currency" validate:"omitempty,alpha,len=3"`
	Style           string  `json:"style" validate:"omitempty,max=32"`
	AcceptShortfall bool    `json:"acceptShortfall"`
}

// DailyPlanRequest asks for a one-day nutrition plan. A zero goal uses the session goal.
type DailyPlanRequest struct {
	CalorieGoal int `json:"calorieGoal" validate:"gte=0,lte=20000"`
}

// GroceryRequest asks for a shopping list within budget
type GroceryRequest struct {
	Budget   float64 `json:"budget" validate:"gt=0"`
	Currency string  `json:"currency" validate:"omitempty,alpha,len=3"`
}

// HarmQuery is the query of GET /harm
type HarmQuery struct {
	Item   string `validate:"required,max=100"`
	Locale string `validate:"omitempty,max=16"`
}

// SearchByIngredients handles POST /api/v1/sessions/{sessionID}/recipes/by-ingredients
func (h *GenerationHandlers) SearchByIngredients(w http.ResponseWriter, r *http.Request) {
	var req IngredientSearchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	prefs, ok := h.prefs(w, r)
	if !ok {
		return
	}

	result, err := h.generation.SearchByIngredients(r.Context(), req.Items, prefs, searchOptions(req.AcceptShortfall)...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSearch(w, result)
}

// SearchByBudget handles POST /api/v1/sessions/{sessionID}/recipes/by-budget
func (h *GenerationHandlers) SearchByBudget(w http.ResponseWriter, r *http.Request) {
	var req BudgetSearchRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	style, err := generation.ParseFoodStyle(req.Style)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	prefs, ok := h.prefs(w, r)
	if !ok {
		return
	}

	result, err := h.generation.SearchByBudget(r.Context(), req.Amount, req.Currency, style, prefs, searchOptions(req.AcceptShortfall)...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeSearch(w, result)
}

// PlanDailyNutrition handles POST /api/v1/sessions/{sessionID}/nutrition/daily-plan
func (h *GenerationHandlers) PlanDailyNutrition(w http.ResponseWriter, r *http.Request) {
	var req DailyPlanRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	prefs, ok := h.prefs(w, r)
	if !ok {
		return
	}

	goal := req.CalorieGoal
	if goal == 0 {
		goal = prefs.DailyCalorieGoal()
	}

	report, err := h.generation.PlanDailyNutrition(r.Context(), goal, prefs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: report})
}

// PlanGroceries handles POST /api/v1/sessions/{sessionID}/groceries
func (h *GenerationHandlers) PlanGroceries(w http.ResponseWriter, r *http.Request) {
	var req GroceryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	prefs, ok := h.prefs(w, r)
	if !ok {
		return
	}

	list, err := h.generation.PlanGroceries(r.Context(), req.Budget, req.Currency, prefs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: list})
}

// LookupHarm handles GET /api/v1/harm?item=&locale=
func (h *GenerationHandlers) LookupHarm(w http.ResponseWriter, r *http.Request) {
	q := HarmQuery{
		Item:   r.URL.Query().Get("item"),
		Locale: r.URL.Query().Get("locale"),
	}
	if err := h.check(&q); err != nil {
		h.writeError(w, r, err)
		return
	}

	loc, err := preference.ParseLocale(q.Locale)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	report, err := h.generation.LookupHarm(r.Context(), q.Item, loc)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: report})
}

// prefs loads the session snapshot the request runs against
func (h *GenerationHandlers) prefs(w http.ResponseWriter, r *http.Request) (preference.Context, bool) {
	id, err := sessionID(r)
	if err != nil {
		h.writeError(w, r, err)
		return preference.Context{}, false
	}

	prefs, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return preference.Context{}, false
	}
	return prefs, true
}

// writeSearch answers 206 when an accepted shortfall returned fewer records than the quota
func (h *GenerationHandlers) writeSearch(w http.ResponseWriter, result *generation.SearchResult) {
	status := http.StatusOK
	if result.Shortfall {
		status = http.StatusPartialContent
	}
	h.writeJSON(w, status, APIResponse{Success: true, Data: result})
}

func searchOptions(acceptShortfall bool) []inbound.SearchOption {
	if acceptShortfall {
		return []inbound.SearchOption{inbound.WithShortfallAccepted()}
	}
	return nil
}
