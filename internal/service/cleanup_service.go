package service

import (
	"context"
	"time"

	"paper-chat-be/internal/pkg/logger"
	"paper-chat-be/internal/repository/contract"
)

// ICleanupService is the idle reaper: it periodically evicts inactive
// conversations and stale rate windows from the chat store.
type ICleanupService interface {
	// Run blocks, sweeping on a fixed interval until ctx is cancelled.
	Run(ctx context.Context)
}

type cleanupService struct {
	store    contract.IChatStore
	log      logger.ILogger
	interval time.Duration
}

func NewCleanupService(store contract.IChatStore, log logger.ILogger, interval time.Duration) ICleanupService {
	return &cleanupService{
		store:    store,
		log:      log,
		interval: interval,
	}
}

func (s *cleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one eviction pass. A panicking or failing sweep must never take
// the process down or stop the schedule.
func (s *cleanupService) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cleanup-service", "sweep panicked", map[string]interface{}{"panic": r})
		}
	}()

	removed := s.store.SweepIdle(ctx)
	if removed > 0 {
		s.log.Info("cleanup-service", "cleaned up inactive conversations", map[string]interface{}{
			"removed": removed,
		})
	}
}
