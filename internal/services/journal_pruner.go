package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PrunableJournal is the subset of the bbolt journal used by the pruner.
type PrunableJournal interface {
	Cleanup(olderThan time.Time) (int, error)
	Size() (int, error)
}

// PrunerConfig controls how often and how far back the journal is trimmed.
type PrunerConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// JournalPruner periodically removes journal entries older than the retention window.
type JournalPruner struct {
	journal PrunableJournal
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     PrunerConfig
	now     func() time.Time
}

func NewJournalPruner(journal PrunableJournal, logger *zap.Logger, cfg PrunerConfig) (*JournalPruner, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &JournalPruner{
		journal: journal,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := p.cron.AddFunc(schedule, func() {
		if _, err := p.Prune(); err != nil {
			p.logger.Error("journal prune failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// Start launches the cron scheduler.
func (p *JournalPruner) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("journal pruner started", zap.Duration("interval", p.cfg.Interval), zap.Duration("retention", p.cfg.Retention))
}

// Stop waits for a running prune to finish or for ctx to expire.
func (p *JournalPruner) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("journal pruner stopped")
}

// Prune removes expired entries synchronously and returns how many were dropped.
func (p *JournalPruner) Prune() (int, error) {
	if p == nil || p.journal == nil {
		return 0, nil
	}
	removed, err := p.journal.Cleanup(p.now().Add(-p.cfg.Retention))
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		size, _ := p.journal.Size()
		p.logger.Info("journal pruned", zap.Int("removed", removed), zap.Int("remaining", size))
	}
	return removed, nil
}
