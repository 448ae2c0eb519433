// Package expiry runs the background sweep that moves overdue approved
// passes into the EXPIRED state.
package expiry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/pass"
)

type Sweeper struct {
	logger   *zap.Logger
	passes   pass.Service
	interval time.Duration
}

func NewSweeper(passes pass.Service, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		logger:   logger,
		passes:   passes,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. The first
// sweep happens immediately so a restart does not delay expiry by a full tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	expired, err := s.passes.ExpireOverdue(sweepCtx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired overdue passes", zap.Int("count", expired))
	}
}
