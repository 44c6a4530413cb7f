// Package gateway invokes the external generative service exactly once per
// call and classifies every failure into the transport taxonomy.
package gateway

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// Gateway wraps a Generator with timeout, classification, tracing and metrics
type Gateway struct {
	generator outbound.Generator
	metrics   outbound.PipelineMetrics
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New creates a gateway. A nil metrics recorder discards telemetry.
func New(generator outbound.Generator, metrics outbound.PipelineMetrics, logger *zap.Logger) *Gateway {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Gateway{
		generator: generator,
		metrics:   metrics,
		logger:    logger.Named("gateway"),
		tracer:    otel.Tracer("github.com/alchemorsel/mealguard/gateway"),
	}
}

// Provider returns the underlying generator name
func (g *Gateway) Provider() string {
	return g.generator.Name()
}

// Invoke issues exactly one Generate call bounded by timeout. A non-positive
// timeout leaves the caller's deadline in charge.
func (g *Gateway) Invoke(ctx context.Context, payload generation.Payload, timeout time.Duration) (generation.RawOutput, error) {
	provider := g.generator.Name()
	ctx, span := g.tracer.Start(ctx, "gateway.Invoke", trace.WithAttributes(
		attribute.String("generator.provider", provider),
		attribute.String("generation.kind", string(payload.Kind)),
		attribute.String("generation.format", string(payload.Format)),
		attribute.String("generation.locale", string(payload.Locale)),
		attribute.Int("generation.expected_count", payload.ExpectedCount),
	))
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.generator.Generate(ctx, payload)
	latency := time.Since(start)

	if err == nil && strings.TrimSpace(text) == "" {
		err = generation.NewFailure(generation.ReasonEmpty, "generator returned no content")
	}
	if err != nil {
		f := classify(ctx, err)
		g.metrics.RecordGatewayCall(provider, string(f.Reason), latency)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(f.Reason))
		g.logger.Debug("Generator call failed",
			zap.String("provider", provider),
			zap.String("reason", string(f.Reason)),
			zap.Duration("latency", latency),
			zap.Error(err))
		return generation.RawOutput{}, f
	}

	g.metrics.RecordGatewayCall(provider, "ok", latency)
	span.SetAttributes(attribute.Int("generation.response_bytes", len(text)))
	span.SetStatus(codes.Ok, "")
	g.logger.Debug("Generator call completed",
		zap.String("provider", provider),
		zap.Duration("latency", latency),
		zap.Int("bytes", len(text)))

	return generation.RawOutput{Text: text, Provider: provider, Latency: latency}, nil
}

// classify maps an adapter error to a transport failure. Context state wins
// over the adapter's own description of the error.
func classify(ctx context.Context, err error) *generation.Failure {
	if f, ok := generation.AsFailure(err); ok && f.Class == generation.ClassTransport {
		return f
	}

	var (
		netErr net.Error
		svcErr *generation.ServiceError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return generation.NewFailure(generation.ReasonTimeout, "generator call timed out").WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return generation.NewFailure(generation.ReasonCanceled, "generator call canceled").WithCause(err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return generation.NewFailure(generation.ReasonTimeout, "generator connection timed out").WithCause(err)
	case errors.As(err, &svcErr):
		return generation.NewFailure(generation.ReasonServiceError, svcErr.Message).WithCause(err)
	default:
		return generation.NewFailure(generation.ReasonNetwork, "generator unreachable").WithCause(err)
	}
}
