package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/mealguard/internal/application/allergen"
	"github.com/alchemorsel/mealguard/internal/application/gateway"
	"github.com/alchemorsel/mealguard/internal/application/generation"
	"github.com/alchemorsel/mealguard/internal/application/locale"
	"github.com/alchemorsel/mealguard/internal/application/prompt"
	"github.com/alchemorsel/mealguard/internal/application/quota"
	"github.com/alchemorsel/mealguard/internal/application/session"
	"github.com/alchemorsel/mealguard/internal/application/validation"
	domain "github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/infrastructure/config"
	"github.com/alchemorsel/mealguard/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/mealguard/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealguard/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
	apperrors "github.com/alchemorsel/mealguard/pkg/errors"
	"github.com/alchemorsel/mealguard/pkg/healthcheck"
	"github.com/alchemorsel/mealguard/test/testutils"
)

// newPipeline assembles the generation service the way the container does
func newPipeline(gen outbound.Generator, cache outbound.CacheRepository, metrics outbound.PipelineMetrics, logger *zap.Logger) *generation.Service {
	return generation.NewService(
		generation.Config{MaxAttempts: 2, RequestTimeout: 5 * time.Second, ReportTTL: time.Hour},
		allergen.NewGuard(),
		quota.NewPolicy(),
		prompt.NewComposer(locale.NewRouter()),
		gateway.New(gen, metrics, logger),
		validation.NewValidator(validation.Config{}, logger),
		cache,
		metrics,
		logger,
	)
}

type APITestSuite struct {
	suite.Suite
	gen     *testutils.ScriptedGenerator
	server  *httptest.Server
	factory *testutils.RecipeFactory
	http    *testutils.HTTPAssertions
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.factory = testutils.NewRecipeFactory(42)
	s.http = testutils.NewHTTPAssertions(s.T())

	batch := s.factory.Batch(4, "480")
	s.gen = testutils.NewScriptedGenerator(testutils.Reply{Text: testutils.BatchJSON(s.T(), batch)})

	cache := memory.NewCacheRepository(0)
	s.T().Cleanup(func() { cache.Close() })
	metrics := monitoring.NewMetricsCollector(logger)

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{Enable: true, RequestsPerMin: 600, BurstSize: 50},
	}
	srv, err := apiserver.NewServer(cfg, logger,
		newPipeline(s.gen, cache, metrics, logger),
		session.NewService(session.Config{IdleTTL: time.Hour}, nil, logger),
		healthcheck.New("test", logger),
		metrics,
	)
	s.Require().NoError(err)

	s.server = httptest.NewServer(srv.Handler())
	s.T().Cleanup(func() {
		s.server.Close()
		srv.Shutdown(context.Background())
	})
}

func (s *APITestSuite) do(method, path string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *APITestSuite) createSession(body map[string]interface{}) string {
	resp := s.do(http.MethodPost, "/api/v1/sessions", body)
	s.http.StatusCode(resp, http.StatusCreated)

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	s.http.JSONResponse(resp, &out)
	s.Require().NotEmpty(out.Data.ID)
	return out.Data.ID
}

func (s *APITestSuite) TestSearchReturnsValidatedRecipes() {
	id := s.createSession(map[string]interface{}{"allergies": []string{"peanut"}})

	ingredients := s.factory.SafeIngredients(3, []string{"peanut"})
	resp := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/recipes/by-ingredients",
		map[string]interface{}{"items": ingredients})
	s.http.StatusCode(resp, http.StatusOK)
	s.http.SecurityHeaders(resp)

	var out struct {
		Data domain.SearchResult `json:"data"`
	}
	s.http.JSONResponse(resp, &out)

	s.Len(out.Data.Recipes, quota.DefaultQuota)
	s.Equal(quota.DefaultQuota, out.Data.Quota)
	assertions := testutils.NewRecipeAssertions(s.T())
	for _, r := range out.Data.Recipes {
		assertions.ValidRecipe(r)
		assertions.FreeOf(r, "peanut")
	}
	s.Equal(1, s.gen.Calls())
}

func (s *APITestSuite) TestAllergicIngredientIsRejectedBeforeGeneration() {
	id := s.createSession(map[string]interface{}{"allergies": []string{"peanut"}})

	resp := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/recipes/by-ingredients",
		map[string]interface{}{"items": []string{"rice", "Peanut Butter"}})
	s.http.StatusCode(resp, http.StatusUnprocessableEntity)
	s.http.ErrorCode(resp, apperrors.CodeAllergenBlocked)
	s.Zero(s.gen.Calls())
}

func (s *APITestSuite) TestAllergyAddedMidSessionAppliesImmediately() {
	id := s.createSession(map[string]interface{}{})

	resp := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/allergies", map[string]string{"value": "milk"})
	s.http.StatusCode(resp, http.StatusOK)

	resp = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/recipes/by-ingredients",
		map[string]interface{}{"items": []string{"milk", "oats"}})
	s.http.StatusCode(resp, http.StatusUnprocessableEntity)
	s.http.ErrorCode(resp, apperrors.CodeAllergenBlocked)
}

func (s *APITestSuite) TestUnknownSession() {
	resp := s.do(http.MethodGet, "/api/v1/sessions/7b0f9c51-7d2e-4d8a-9d55-2a3c8c0b7a11", nil)
	s.http.StatusCode(resp, http.StatusNotFound)
	s.http.ErrorCode(resp, apperrors.CodeSessionNotFound)
}

func (s *APITestSuite) TestHarmReportIsCached() {
	s.gen = testutils.NewScriptedGenerator(testutils.Reply{Text: "Energy drinks are high in caffeine."})
	s.rebuildWith(s.gen)

	for i, wantCached := range []bool{false, true} {
		resp := s.do(http.MethodGet, "/api/v1/harm?item=energy+drink&locale=en", nil)
		s.http.StatusCode(resp, http.StatusOK, "call %d", i)

		var out struct {
			Data domain.Report `json:"data"`
		}
		s.http.JSONResponse(resp, &out)
		s.Equal(wantCached, out.Data.Cached)
		s.Contains(out.Data.Text, "caffeine")
	}
	s.Equal(1, s.gen.Calls())
}

// rebuildWith rebuilds the server around a different generator
func (s *APITestSuite) rebuildWith(gen *testutils.ScriptedGenerator) {
	logger := zaptest.NewLogger(s.T())
	cache := memory.NewCacheRepository(0)
	s.T().Cleanup(func() { cache.Close() })

	srv, err := apiserver.NewServer(&config.Config{}, logger,
		newPipeline(gen, cache, outbound.NopMetrics{}, logger),
		session.NewService(session.Config{}, nil, logger),
		healthcheck.New("test", logger),
		nil,
	)
	s.Require().NoError(err)

	s.server.Close()
	s.server = httptest.NewServer(srv.Handler())
	s.T().Cleanup(s.server.Close)
}
