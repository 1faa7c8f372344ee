package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reaper ends sessions that have not been touched for idleFor.
type Reaper interface {
	ReapIdle(ctx context.Context, idleFor time.Duration) (int, error)
}

// SessionReaperJob closes abandoned interview sessions on a schedule so
// their history is recorded before the store expires them.
type SessionReaperJob struct {
	reaper   Reaper
	schedule string
	idleFor  time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewSessionReaperJob(reaper Reaper, schedule string, idleFor time.Duration, logger *zap.Logger) *SessionReaperJob {
	return &SessionReaperJob{
		reaper:   reaper,
		schedule: schedule,
		idleFor:  idleFor,
		timeout:  time.Minute,
		cron:     cron.New(),
		logger:   logger,
	}
}

func (j *SessionReaperJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("session reaper failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule session reaper: %w", err)
	}
	j.cron.Start()
	j.logger.Info("session reaper started",
		zap.String("schedule", j.schedule),
		zap.Duration("idle_for", j.idleFor))
	return nil
}

func (j *SessionReaperJob) Stop() {
	<-j.cron.Stop().Done()
}

func (j *SessionReaperJob) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	reaped, err := j.reaper.ReapIdle(ctx, j.idleFor)
	if err != nil {
		return reaped, fmt.Errorf("failed to reap idle sessions: %w", err)
	}
	if reaped > 0 {
		j.logger.Info("reaped idle sessions", zap.Int("count", reaped))
	}
	return reaped, nil
}
