// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// Reply is one scripted generator response
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration
	// Block waits for the context to finish and returns its error
	Block bool
}

// ScriptedGenerator replays replies in order and records every call.
// The last reply repeats once the script is exhausted.
type ScriptedGenerator struct {
	mu       sync.Mutex
	name     string
	replies  []Reply
	payloads []generation.Payload
}

var _ outbound.Generator = (*ScriptedGenerator)(nil)

// NewScriptedGenerator creates a generator fake
func NewScriptedGenerator(replies ...Reply) *ScriptedGenerator {
	return &ScriptedGenerator{name: "scripted", replies: replies}
}

// Name returns the provider name
func (g *ScriptedGenerator) Name() string {
	return g.name
}

// Generate returns the next scripted reply
func (g *ScriptedGenerator) Generate(ctx context.Context, payload generation.Payload) (string, error) {
	g.mu.Lock()
	idx := len(g.payloads)
	g.payloads = append(g.payloads, payload)
	var r Reply
	switch {
	case len(g.replies) == 0:
	case idx < len(g.replies):
		r = g.replies[idx]
	default:
		r = g.replies[len(g.replies)-1]
	}
	g.mu.Unlock()

	if r.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return r.Text, r.Err
}

// Calls returns the number of Generate calls
func (g *ScriptedGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.payloads)
}

// Payloads returns every payload received, in call order
func (g *ScriptedGenerator) Payloads() []generation.Payload {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generation.Payload(nil), g.payloads...)
}

// MockCacheRepository is a mock implementation of the cache repository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockPreferenceRepository is a mock implementation of the preference repository
type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Save(ctx context.Context, id uuid.UUID, opts preference.Options) error {
	args := m.Called(ctx, id, opts)
	return args.Error(0)
}

func (m *MockPreferenceRepository) Load(ctx context.Context, id uuid.UUID) (preference.Options, error) {
	args := m.Called(ctx, id)
	opts, _ := args.Get(0).(preference.Options)
	return opts, args.Error(1)
}

func (m *MockPreferenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RecordingMetrics counts recorded telemetry for assertions
type RecordingMetrics struct {
	mu             sync.Mutex
	Requests       map[string]int
	Failures       map[string]int
	GatewayCalls   map[string]int
	AllergenBlocks int
	CacheHits      int
	CacheMisses    int
}

var _ outbound.PipelineMetrics = (*RecordingMetrics)(nil)

// NewRecordingMetrics creates an empty recorder
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Requests:     map[string]int{},
		Failures:     map[string]int{},
		GatewayCalls: map[string]int{},
	}
}

func (r *RecordingMetrics) RecordRequest(operation, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Requests[operation+"/"+outcome]++
}

func (r *RecordingMetrics) RecordFailure(class, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures[class+"/"+reason]++
}

func (r *RecordingMetrics) RecordGatewayCall(provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.GatewayCalls[provider+"/"+outcome]++
}

func (r *RecordingMetrics) RecordAllergenBlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.AllergenBlocks++
}

func (r *RecordingMetrics) RecordCacheLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.CacheHits++
	} else {
		r.CacheMisses++
	}
}
