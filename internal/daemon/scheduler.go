package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// snapshotScheduler wraps gocron for the periodic state snapshot job.
type snapshotScheduler struct {
	scheduler gocron.Scheduler
}

func newSnapshotScheduler(interval time.Duration, task func()) (*snapshotScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("state-snapshot"),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule snapshot job: %w", err)
	}

	return &snapshotScheduler{scheduler: s}, nil
}

func (s *snapshotScheduler) start() {
	slog.Debug("Starting snapshot scheduler")
	s.scheduler.Start()
}

func (s *snapshotScheduler) stop() error {
	slog.Debug("Stopping snapshot scheduler")
	return s.scheduler.Shutdown()
}
