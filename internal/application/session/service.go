// Package session provides the application layer for user sessions and the
// preference state each session carries between requests
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealguard/internal/domain/preference"
	"github.com/alchemorsel/mealguard/internal/ports/inbound"
	"github.com/alchemorsel/mealguard/internal/ports/outbound"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = inbound.ErrSessionNotFound

// Config controls session lifetime
type Config struct {
	// IdleTTL expires sessions not touched for this long; zero disables expiry
	IdleTTL time.Duration
}

type entry struct {
	// edit serializes Update so edits persist in the order they commit
	edit     sync.Mutex
	state    *preference.SessionState
	lastSeen time.Time
}

// Service keeps sessions in memory and mirrors every change to an optional
// PreferenceRepository so sessions survive restarts
type Service struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entry
	repo     outbound.PreferenceRepository
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
}

var _ inbound.SessionService = (*Service)(nil)

// NewService creates a new session service. repo may be nil.
func NewService(cfg Config, repo outbound.PreferenceRepository, logger *zap.Logger) *Service {
	return &Service{
		sessions: make(map[uuid.UUID]*entry),
		repo:     repo,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("session-service"),
	}
}

// Create opens a session with validated initial preferences
func (s *Service) Create(ctx context.Context, opts preference.Options) (uuid.UUID, preference.Context, error) {
	prefs, err := preference.New(opts)
	if err != nil {
		return uuid.Nil, preference.Context{}, err
	}

	id := uuid.New()
	if err := s.persist(ctx, id, prefs); err != nil {
		return uuid.Nil, preference.Context{}, err
	}

	s.mu.Lock()
	s.sessions[id] = &entry{state: preference.NewSessionState(prefs), lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("Session created",
		zap.String("session_id", id.String()),
		zap.String("locale", string(prefs.Locale())),
		zap.String("plan", string(prefs.Plan())))

	return id, prefs, nil
}

// Get returns the current preference snapshot
func (s *Service) Get(ctx context.Context, id uuid.UUID) (preference.Context, error) {
	e, err := s.lookup(ctx, id)
	if err != nil {
		return preference.Context{}, err
	}
	return e.state.Snapshot(), nil
}

// Update applies edit to a draft of the session state and commits it only
// when the edit and the save both succeed. Edits on one session run one at a time.
func (s *Service) Update(ctx context.Context, id uuid.UUID, edit func(*preference.SessionState) error) (preference.Context, error) {
	e, err := s.lookup(ctx, id)
	if err != nil {
		return preference.Context{}, err
	}

	e.edit.Lock()
	defer e.edit.Unlock()

	draft := e.state.Draft()
	if err := edit(draft); err != nil {
		return preference.Context{}, err
	}

	prefs := draft.Snapshot()
	if err := s.persist(ctx, id, prefs); err != nil {
		return preference.Context{}, err
	}
	e.state.Commit(prefs)

	s.logger.Debug("Session preferences updated",
		zap.String("session_id", id.String()),
		zap.Int("allergy_count", len(prefs.Allergies())))

	return prefs, nil
}

// Delete closes a session
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if s.repo == nil {
		if !ok {
			return ErrSessionNotFound
		}
		return nil
	}

	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, outbound.ErrPreferencesNotFound):
		if ok {
			return nil
		}
		return ErrSessionNotFound
	default:
		return fmt.Errorf("failed to delete session preferences: %w", err)
	}
}

// Sweep drops sessions idle for longer than IdleTTL and returns how many
// were dropped. Persisted copies are kept so a returning user is restored.
func (s *Service) Sweep() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle sessions every interval until ctx is done
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("Expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Len returns the number of sessions held in memory
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(ctx context.Context, id uuid.UUID) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.lastSeen = s.now()
		return e, nil
	}
	if s.repo == nil {
		return nil, ErrSessionNotFound
	}

	opts, err := s.repo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrPreferencesNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session preferences: %w", err)
	}
	prefs, err := preference.New(opts)
	if err != nil {
		return nil, fmt.Errorf("stored preferences are invalid: %w", err)
	}

	e := &entry{state: preference.NewSessionState(prefs), lastSeen: s.now()}
	s.sessions[id] = e
	s.logger.Info("Session restored", zap.String("session_id", id.String()))
	return e, nil
}

func (s *Service) persist(ctx context.Context, id uuid.UUID, prefs preference.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, id, prefs.Options()); err != nil {
		return fmt.Errorf("failed to save session preferences: %w", err)
	}
	return nil
}
