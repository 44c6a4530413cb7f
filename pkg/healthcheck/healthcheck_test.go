package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestCheckAggregatesStatus(t *testing.T) {
	tests := []struct {
		name      string
		generator error
		cache     error
		want      Status
	}{
		{"all healthy", nil, nil, StatusHealthy},
		{"optional cache down", nil, errors.New("redis down"), StatusDegraded},
		{"generator down", errors.New("connection refused"), nil, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New("1.0.0", zaptest.NewLogger(t))
			h.SetCacheTTL(0)
			h.Register("generator", NewFuncChecker("generator", func(context.Context) error { return tt.generator }))
			h.RegisterOptional("cache", NewPingChecker(pingFunc(func(context.Context) error { return tt.cache })))

			resp := h.Check(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			require.Len(t, resp.Checks, 2)
			assert.Equal(t, "cache", resp.Checks[0].Name)
			assert.Equal(t, "generator", resp.Checks[1].Name)
		})
	}
}

func TestCheckIsCached(t *testing.T) {
	var calls atomic.Int32
	h := New("1.0.0", zaptest.NewLogger(t))
	h.SetCacheTTL(time.Minute)
	h.Register("probe", NewFuncChecker("probe", func(context.Context) error {
		calls.Add(1)
		return nil
	}))

	h.Check(context.Background())
	h.Check(context.Background())
	assert.EqualValues(t, 1, calls.Load())
}

func TestHandler(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))
	h.Register("generator", NewFuncChecker("generator", func(context.Context) error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.Contains(t, body, "total_duration_ms")
}

func TestLivenessHandler(t *testing.T) {
	h := New("1.0.0", zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}
