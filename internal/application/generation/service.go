// Package generation provides the application layer for the constrained
// generation pipeline. This implements the use cases defined in the inbound ports.
package generation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/application/allergen"
	"github.com/alchemorsel/mealguard/internal/application/gateway"
	"github.com/alchemorsel/mealguard/internal/application/prompt"
	"github.com/alchemorsel/mealguard/internal/application/quota"
	"github.com/alchemorsel/mealguard/internal/application/validation"
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// Config holds the pipeline policy knobs
type Config struct {
	// MaxAttempts bounds gateway invocations per request; 2 allows one retry
	MaxAttempts    int
	RequestTimeout time.Duration
	ReportTTL      time.Duration
}

// Service implements the generation use cases
type Service struct {
	guard     *allergen.Guard
	quota     *quota.Policy
	composer  *prompt.Composer
	gateway   *gateway.Gateway
	validator *validation.Validator
	cache     outbound.CacheRepository
	metrics   outbound.PipelineMetrics
	cfg       Config
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewService creates a new generation service. cache may be nil.
func NewService(
	cfg Config,
	guard *allergen.Guard,
	policy *quota.Policy,
	composer *prompt.Composer,
	gw *gateway.Gateway,
	validator *validation.Validator,
	cache outbound.CacheRepository,
	metrics outbound.PipelineMetrics,
	logger *zap.Logger,
) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Service{
		guard:     guard,
		quota:     policy,
		composer:  composer,
		gateway:   gw,
		validator: validator,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger.Named("generation-service"),
		tracer:    otel.Tracer("github.com/alchemorsel/mealguard/generation"),
	}
}

var _ inbound.GenerationService = (*Service)(nil)

const (
	opSearchByIngredients = "search_by_ingredients"
	opSearchByBudget      = "search_by_budget"
	opLookupHarm          = "lookup_harm"
	opPlanDailyNutrition  = "plan_daily_nutrition"
	opPlanGroceries       = "plan_groceries"
)

// SearchByIngredients generates exactly quota recipes from the given ingredients.
// Ingredients matching a declared allergy are rejected before any generator call.
func (s *Service) SearchByIngredients(ctx context.Context, items []string, prefs preference.Context, opts ...inbound.SearchOption) (*generation.SearchResult, error) {
	req := generation.ByIngredients(items, prefs)
	ctx, done := s.begin(ctx, opSearchByIngredients, req)
	res, err := s.search(ctx, req, inbound.ResolveSearchOptions(opts...))
	done(err)
	return res, err
}

// SearchByBudget generates exactly quota recipes that fit a budget
func (s *Service) SearchByBudget(ctx context.Context, amount float64, currency string, style generation.FoodStyle, prefs preference.Context, opts ...inbound.SearchOption) (*generation.SearchResult, error) {
	req := generation.ByBudget(amount, currency, style, prefs)
	ctx, done := s.begin(ctx, opSearchByBudget, req)
	res, err := s.search(ctx, req, inbound.ResolveSearchOptions(opts...))
	done(err)
	return res, err
}

// LookupHarm returns a display-only harm analysis of a food item
func (s *Service) LookupHarm(ctx context.Context, itemName string, loc preference.Locale) (*generation.Report, error) {
	prefs, err := preference.New(preference.Options{Locale: loc})
	if err != nil {
		return nil, generation.NewFailure(generation.ReasonInvalidRequest, err.Error())
	}
	req := generation.ByItemName(itemName, prefs)
	ctx, done := s.begin(ctx, opLookupHarm, req)
	rep, err := s.report(ctx, req, itemName)
	done(err)
	return rep, err
}

// PlanDailyNutrition returns a display-only one-day meal plan
func (s *Service) PlanDailyNutrition(ctx context.Context, calorieGoal int, prefs preference.Context) (*generation.Report, error) {
	req := generation.DailyPlan(calorieGoal, prefs)
	ctx, done := s.begin(ctx, opPlanDailyNutrition, req)
	rep, err := s.report(ctx, req, "")
	done(err)
	return rep, err
}

// PlanGroceries returns a validated grocery list within budget
func (s *Service) PlanGroceries(ctx context.Context, budget float64, currency string, prefs preference.Context) (*recipe.GroceryList, error) {
	req := generation.GroceryList(budget, currency, prefs)
	ctx, done := s.begin(ctx, opPlanGroceries, req)
	list, err := s.groceries(ctx, req)
	done(err)
	return list, err
}

func (s *Service) search(ctx context.Context, req generation.Request, opts inbound.SearchOptions) (*generation.SearchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Kind == generation.KindByIngredients {
		if d := s.guard.CheckItems(req.Items, req.Prefs.Allergies()); d.Blocked {
			s.metrics.RecordAllergenBlock()
			return nil, d.Err()
		}
	}

	n := s.quota.QuotaFor(req.Prefs.Plan())
	payload, err := s.composer.Compose(req, n)
	if err != nil {
		return nil, err
	}

	exp := validation.Expected{
		Quota:     n,
		Allergies: req.Prefs.Allergies(),
		WithCost:  req.Kind == generation.KindByBudget,
		Numbers:   s.composer.NumberFormat(req.Prefs.Locale()),
	}
	if band, ok := recipe.BandFor(req.EffectiveCalorieGoal()); ok {
		exp.Band = &band
	}

	var recipes []recipe.Recipe
	attempts, err := s.withRetry(ctx, func() error {
		raw, err := s.gateway.Invoke(ctx, payload, s.cfg.RequestTimeout)
		if err != nil {
			return err
		}
		recipes, err = s.validator.Validate(raw, exp)
		return err
	})
	if err != nil {
		if f, ok := generation.AsFailure(err); ok &&
			f.Reason == generation.ReasonCalorieOutOfBand && opts.AcceptShortfall && len(f.Partial) > 0 {
			s.logger.Info("Accepting short batch after calorie band rejections",
				zap.Int("quota", n),
				zap.Int("returned", len(f.Partial)))
			return &generation.SearchResult{Recipes: f.Partial, Quota: n, Shortfall: true, Attempts: attempts}, nil
		}
		return nil, err
	}
	if err := s.quota.Check(req.Prefs.Plan(), len(recipes)); err != nil {
		return nil, err
	}

	return &generation.SearchResult{Recipes: recipes, Quota: n, Attempts: attempts}, nil
}

func (s *Service) report(ctx context.Context, req generation.Request, subject string) (*generation.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := s.composer.Compose(req, 0)
	if err != nil {
		return nil, err
	}

	key := reportKey(req)
	if text, ok := s.cachedReport(ctx, key); ok {
		return &generation.Report{Kind: req.Kind, Subject: subject, Locale: payload.Locale, Text: text, Cached: true}, nil
	}

	var text string
	if _, err := s.withRetry(ctx, func() error {
		raw, err := s.gateway.Invoke(ctx, payload, s.cfg.RequestTimeout)
		if err != nil {
			return err
		}
		text = normalizeReport(raw.Text)
		return nil
	}); err != nil {
		return nil, err
	}

	s.storeReport(ctx, key, text)
	return &generation.Report{Kind: req.Kind, Subject: subject, Locale: payload.Locale, Text: text}, nil
}

func (s *Service) groceries(ctx context.Context, req generation.Request) (*recipe.GroceryList, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := s.composer.Compose(req, 0)
	if err != nil {
		return nil, err
	}

	var list *recipe.GroceryList
	_, err = s.withRetry(ctx, func() error {
		raw, err := s.gateway.Invoke(ctx, payload, s.cfg.RequestTimeout)
		if err != nil {
			return err
		}
		list, err = s.validator.ValidateGroceries(raw, req.Amount, req.Prefs.Allergies())
		return err
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// withRetry runs attempt up to MaxAttempts times with the same payload.
// Only transport and schema failures are retried; domain and safety
// failures stop immediately.
func (s *Service) withRetry(ctx context.Context, attempt func() error) (int, error) {
	var err error
	for i := 1; i <= s.cfg.MaxAttempts; i++ {
		err = attempt()
		if err == nil {
			return i, nil
		}
		f, ok := generation.AsFailure(err)
		if !ok || !f.Retryable() || ctx.Err() != nil || i == s.cfg.MaxAttempts {
			return i, err
		}
		s.logger.Warn("Retrying generation after failure",
			zap.Int("attempt", i),
			zap.String("class", string(f.Class)),
			zap.String("reason", string(f.Reason)))
	}
	return s.cfg.MaxAttempts, err
}

// begin opens the span and returns a finisher that records the outcome
func (s *Service) begin(ctx context.Context, op string, req generation.Request) (context.Context, func(error)) {
	ctx, requestID := ensureRequestID(ctx)
	ctx, span := s.tracer.Start(ctx, "generation."+op, trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.String("generation.kind", string(req.Kind)),
		attribute.String("preference.locale", string(req.Prefs.Locale())),
		attribute.String("preference.plan", string(req.Prefs.Plan())),
	))
	start := time.Now()

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("operation", op),
		zap.String("locale", string(req.Prefs.Locale())),
		zap.String("plan", string(req.Prefs.Plan())),
		zap.Int("allergy_count", len(req.Prefs.Allergies())),
		zap.Int("condition_count", len(req.Prefs.Conditions())),
	}
	s.logger.Info("Generation request started", fields...)

	return ctx, func(err error) {
		defer span.End()
		elapsed := time.Since(start)
		fields := append(fields, zap.Duration("duration", elapsed))

		if err == nil {
			s.metrics.RecordRequest(op, "ok", elapsed)
			span.SetStatus(codes.Ok, "")
			s.logger.Info("Generation request finished", append(fields, zap.String("outcome", "ok"))...)
			return
		}

		class, reason := string(generation.ClassTransport), "unknown"
		if f, ok := generation.AsFailure(err); ok {
			class, reason = string(f.Class), string(f.Reason)
		}
		s.metrics.RecordRequest(op, reason, elapsed)
		s.metrics.RecordFailure(class, reason)
		span.RecordError(err)
		span.SetAttributes(attribute.String("failure.class", class), attribute.String("failure.reason", reason))
		span.SetStatus(codes.Error, reason)

		fields = append(fields, zap.String("outcome", reason), zap.String("class", class), zap.Error(err))
		switch generation.Class(class) {
		case generation.ClassSafety, generation.ClassDomain:
			s.logger.Warn("Generation request rejected", fields...)
		default:
			s.logger.Info("Generation request failed", fields...)
		}
	}
}
