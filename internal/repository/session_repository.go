package repository

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"imageresizer/internal/config"
	"imageresizer/internal/domain"
)

// SessionRepository keeps the sidebar values of each browser session.
// Entries live in memory only and expire after the configured TTL.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (domain.BatchConfig, error)
	Save(ctx context.Context, sessionID string, batch domain.BatchConfig) error
	Delete(ctx context.Context, sessionID string) error
	Cleanup(now time.Time) int
	RunCleanup(ctx context.Context)
}

type sessionEntry struct {
	batch     domain.BatchConfig
	expiresAt time.Time
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	cfg      *config.SessionConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewSessionRepository(cfg *config.SessionConfig, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]sessionEntry),
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (domain.BatchConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[sessionID]
	if !ok || !r.now().Before(entry.expiresAt) {
		return domain.BatchConfig{}, domain.ErrSessionNotFound
	}

	return entry.batch, nil
}

func (r *sessionRepository) Save(ctx context.Context, sessionID string, batch domain.BatchConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = sessionEntry{
		batch:     batch,
		expiresAt: r.now().Add(r.cfg.TTL),
	}

	r.log.Debug("Session saved",
		zap.String("session_id", sessionID),
		zap.String("prefix", batch.DefaultPrefix),
		zap.Int("width", batch.TargetWidth),
		zap.Bool("resize", batch.ResizeEnabled))

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

// Cleanup drops every entry that expired at or before now.
func (r *sessionRepository) Cleanup(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunCleanup sweeps expired sessions until ctx is cancelled.
func (r *sessionRepository) RunCleanup(ctx context.Context) {
	interval := r.cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Cleanup(r.now()); n > 0 {
				r.log.Info("Expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
