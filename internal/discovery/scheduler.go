package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps robfig/cron and owns the periodic jobs: the daily
// digest plus, when the in-memory cooldown store is in use, its sweep.
type Scheduler struct {
	cron       *cron.Cron
	service    Service
	sweeper    *MemoryCooldownStore
	digestSpec string
	logger     *zap.Logger
}

func NewScheduler(service Service, sweeper *MemoryCooldownStore, digestSpec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:       cron.New(),
		service:    service,
		sweeper:    sweeper,
		digestSpec: digestSpec,
		logger:     logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.digestSpec != "" {
		if _, err := s.cron.AddFunc(s.digestSpec, func() {
			s.runDigest(ctx)
		}); err != nil {
			return fmt.Errorf("scheduling daily digest: %w", err)
		}
	}

	if s.sweeper != nil {
		if _, err := s.cron.AddFunc("@hourly", func() {
			if removed := s.sweeper.Sweep(); removed > 0 {
				s.logger.Debug("cooldown sweep", zap.Int("removed", removed))
			}
		}); err != nil {
			return fmt.Errorf("scheduling cooldown sweep: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("digest_spec", s.digestSpec))
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runDigest(ctx context.Context) {
	started := time.Now()
	if err := s.service.RunDailyDigest(ctx); err != nil {
		s.logger.Error("daily digest failed", zap.Error(err))
		return
	}
	s.logger.Info("daily digest finished", zap.Duration("took", time.Since(started)))
}
