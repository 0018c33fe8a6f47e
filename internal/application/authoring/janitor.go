package authoringapp

import (
	"context"
	"time"

	"github.com/schoolerp/authoring/internal/domain/authoring"
	"go.uber.org/zap"
)

// SweepIdle abandons every session whose last edit is older than the idle
// timeout and reports how many were swept
func (s *SessionService) SweepIdle(idleTimeout time.Duration) int {
	cutoff := time.Now().Add(-idleTimeout)

	s.mu.RLock()
	stale := make([]*authoring.Session, 0)
	for _, session := range s.sessions {
		if session.LastActivityAt().Before(cutoff) {
			stale = append(stale, session)
		}
	}
	s.mu.RUnlock()

	for _, session := range stale {
		session.Close()
		s.unregister(session.ID)
		s.logger.Info("idle session swept", zap.String("session_id", session.ID.String()))
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions on a fixed interval until the context ends
func (s *SessionService) RunJanitor(ctx context.Context, sweepInterval, idleTimeout time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepIdle(idleTimeout)
		}
	}
}

// SessionCount reports the number of live sessions
func (s *SessionService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
