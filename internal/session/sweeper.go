package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically drops sessions with no recent activity. Sessions are
// held in memory only, so abandoned browser tabs would otherwise accumulate
// for the life of the process.
type Sweeper struct {
	manager  *Manager
	logger   zerolog.Logger
	interval time.Duration
	maxIdle  time.Duration
	stopChan chan struct{}
}

// NewSweeper creates a sweeper over a manager.
func NewSweeper(manager *Manager, interval, maxIdle time.Duration) *Sweeper {
	return &Sweeper{
		manager:  manager,
		logger:   log.With().Str("component", "session_sweeper").Logger(),
		interval: interval,
		maxIdle:  maxIdle,
		stopChan: make(chan struct{}),
	}
}

// Start runs the periodic sweep until the context is cancelled or Stop is
// called. Blocks; run it in a goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("max_idle", s.maxIdle).
		Msg("starting session sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("session sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if dropped := s.manager.DropIdle(s.maxIdle); dropped > 0 {
				s.logger.Info().Int("dropped", dropped).Msg("swept idle sessions")
			}
		}
	}
}

// Stop signals the sweeper to stop.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

// DropIdle removes every session idle longer than maxIdle and returns the
// number removed.
func (m *Manager) DropIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.Drop(id)
		sweptSessions.Inc()
	}
	return len(stale)
}
