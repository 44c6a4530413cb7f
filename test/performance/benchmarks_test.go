//go:build performance
// +build performance

// Package performance holds benchmarks for the request pipeline stages
package performance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/application/allergen"
	"github.com/alchemorsel/mealguard/internal/application/gateway"
	app "github.com/alchemorsel/mealguard/internal/application/generation"
	"github.com/alchemorsel/mealguard/internal/application/locale"
	"github.com/alchemorsel/mealguard/internal/application/prompt"
	"github.com/alchemorsel/mealguard/internal/application/quota"
	"github.com/alchemorsel/mealguard/internal/application/validation"
	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/recipe"
	"github.com/alchemorsel/mealguard/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
	"github.com/alchemorsel/mealguard/test/testutils"
)

// Pipeline overhead excluding the generator must stay well below network latency
const MaxPipelineOverhead = 5 * time.Millisecond

var allergies = []string{"peanut", "tree nut", "milk", "egg", "shellfish", "soy", "wheat", "sesame"}

func BenchmarkGuardCheckItems(b *testing.B) {
	guard := allergen.NewGuard()
	items := testutils.NewRecipeFactory(1).SafeIngredients(20, allergies)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if d := guard.CheckItems(items, allergies); d.Blocked {
			b.Fatalf("unexpected block on %q", d.Token)
		}
	}
}

func BenchmarkComposeSearch(b *testing.B) {
	composer := prompt.NewComposer(locale.NewRouter())
	req := generation.Request{
		Kind:  generation.KindByIngredients,
		Prefs: testutils.NewPreferences().WithAllergies(allergies...).WithConditions("diabetes").WithCalorieGoal(2000).Build(),
		Items: []string{"rice", "carrot", "chicken"},
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := composer.Compose(req, quota.DefaultQuota); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidateBatch(b *testing.B) {
	v := validation.NewValidator(validation.Config{}, zap.NewNop())
	batch := testutils.NewRecipeFactory(2).Batch(quota.DefaultQuota, "520")
	raw := generation.RawOutput{Text: testutils.BatchJSON(b, batch), Provider: "bench"}
	band, _ := recipe.BandFor(2000)
	exp := validation.Expected{Quota: quota.DefaultQuota, Band: &band, Allergies: []string{"peanut"}}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := v.Validate(raw, exp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchEndToEnd(b *testing.B) {
	svc := newService(b)
	items := []string{"rice", "carrot"}
	prefs := testutils.NewPreferences().WithAllergies("peanut").Build()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.SearchByIngredients(ctx, items, prefs); err != nil {
			b.Fatal(err)
		}
	}
}

func TestPipelineOverhead(t *testing.T) {
	svc := newService(t)
	prefs := testutils.NewPreferences().WithAllergies("peanut").Build()

	// warm up
	_, err := svc.SearchByIngredients(context.Background(), []string{"rice"}, prefs)
	require.NoError(t, err)

	elapsed := testutils.MeasureTime(func() {
		_, err = svc.SearchByIngredients(context.Background(), []string{"rice"}, prefs)
	})
	require.NoError(t, err)
	testutils.ResponseTime(t, elapsed, MaxPipelineOverhead)
}

func newService(tb testing.TB) *app.Service {
	batch := testutils.NewRecipeFactory(3).Batch(quota.DefaultQuota, "480")
	gen := testutils.NewScriptedGenerator(testutils.Reply{Text: testutils.BatchJSON(tb, batch)})
	logger := zap.NewNop()
	cache := memory.NewCacheRepository(0)
	tb.Cleanup(func() { cache.Close() })

	return app.NewService(
		app.Config{MaxAttempts: 2, RequestTimeout: time.Second, ReportTTL: time.Hour},
		allergen.NewGuard(),
		quota.NewPolicy(),
		prompt.NewComposer(locale.NewRouter()),
		gateway.New(gen, outbound.NopMetrics{}, logger),
		validation.NewValidator(validation.Config{}, logger),
		cache,
		outbound.NopMetrics{},
		logger,
	)
}
