package generation

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/generation"
	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

type requestIDKey struct{}

// WithRequestID attaches a request id that is carried into logs and spans
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id, or "" when none is set
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}

// reportKey identifies a report by kind, normalized subject, locale and the
// preference fingerprint
func reportKey(req generation.Request) string {
	var subject string
	switch req.Kind {
	case generation.KindByItemName:
		subject = preference.Normalize(req.Name)
	case generation.KindDailyPlan:
		subject = strconv.Itoa(req.CalorieGoal)
	}
	sum := sha256.Sum256([]byte(subject + "|" + req.Prefs.Fingerprint()))
	return fmt.Sprintf("report:%s:%s:%x", req.Kind, req.Prefs.Locale(), sum[:12])
}

func (s *Service) cachedReport(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Report cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
		return "", false
	}
	s.metrics.RecordCacheLookup(true)
	return string(data), true
}

func (s *Service) storeReport(ctx context.Context, key, text string) {
	if s.cache == nil || s.cfg.ReportTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, []byte(text), s.cfg.ReportTTL); err != nil {
		s.logger.Warn("Failed to cache report", zap.String("key", key), zap.Error(err))
	}
}

// normalizeReport trims the text and drops a wrapping code fence some
// generators add around plain text
func normalizeReport(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	return strings.TrimSpace(s)
}
