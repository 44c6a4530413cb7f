// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
)

// Errors reported by outbound adapters
var (
	ErrCacheMiss           = errors.New("cache: key not found")
	ErrPreferencesNotFound = errors.New("preferences not found")
)

// Generator is the external generative text service. One Generate call is
// one remote request; adapters never retry internally.
type Generator interface {
	Name() string
	Generate(ctx context.Context, payload generation.Payload) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PreferenceRepository persists session preference snapshots so a session
// can be restored after a restart
type PreferenceRepository interface {
	Save(ctx context.Context, sessionID uuid.UUID, opts preference.Options) error
	Load(ctx context.Context, sessionID uuid.UUID) (preference.Options, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// PipelineMetrics records pipeline telemetry
type PipelineMetrics interface {
	RecordRequest(operation, outcome string, duration time.Duration)
	RecordFailure(class, reason string)
	RecordGatewayCall(provider, outcome string, duration time.Duration)
	RecordAllergenBlock()
	RecordCacheLookup(hit bool)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordRequest(string, string, time.Duration)     {}
func (NopMetrics) RecordFailure(string, string)                    {}
func (NopMetrics) RecordGatewayCall(string, string, time.Duration) {}
func (NopMetrics) RecordAllergenBlock()                            {}
func (NopMetrics) RecordCacheLookup(bool)                          {}
