package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tasknest/backend/repository"
)

// JanitorConfig controls how frequently expired sessions are swept.
type JanitorConfig struct {
	Interval time.Duration
}

// SessionJanitor periodically purges expired sessions from stores that do
// not expire entries on their own (memory, bolt). Expired sessions already
// resolve to absence on read; the sweep only reclaims their storage.
type SessionJanitor struct {
	store  repository.SessionStore
	logger *zap.Logger
	cron   *cron.Cron
	cfg    JanitorConfig
}

func NewSessionJanitor(store repository.SessionStore, logger *zap.Logger, cfg JanitorConfig) *SessionJanitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	j := &SessionJanitor{
		store:  store,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := j.Sweep(ctx); err != nil {
			j.logger.Error("session sweep failed", zap.Error(err))
		}
	}); err != nil {
		j.logger.Error("failed to schedule session sweep",
			zap.String("schedule", schedule), zap.Error(err))
	}

	return j
}

// Start launches the cron scheduler.
func (j *SessionJanitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("session janitor started")
}

// Stop gracefully stops the scheduler.
func (j *SessionJanitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("session janitor stopped")
}

// Sweep purges expired sessions synchronously.
func (j *SessionJanitor) Sweep(ctx context.Context) error {
	purged, err := j.store.PurgeExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if purged > 0 {
		j.logger.Info("purged expired sessions", zap.Int("count", purged))
	}
	return nil
}
