// Package jobs runs background maintenance on a gocron scheduler.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Sweeper deletes expired stories and reports how many were removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Scheduler struct {
	scheduler gocron.Scheduler
	log       *zap.Logger
}

func NewScheduler(log *zap.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, log: log.With(zap.String("component", "jobs"))}, nil
}

// ScheduleStorySweep runs sweeper every interval, starting immediately.
// A run that is still going when the next tick fires is skipped.
func (s *Scheduler) ScheduleStorySweep(ctx context.Context, sweeper Sweeper, interval time.Duration) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				return
			}
			runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()

			removed, err := sweeper.Sweep(runCtx)
			if err != nil {
				s.log.Error("story sweep failed", zap.Error(err))
				return
			}
			s.log.Debug("story sweep finished", zap.Int("removed", removed))
		}),
		gocron.WithName("story-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule story sweep: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
