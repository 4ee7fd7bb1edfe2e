package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is a periodic job. Delay is the wait before the first run; when it is
// zero the first run happens after one Interval. A zero Interval runs once.
type Task struct {
	Name     string
	Interval time.Duration
	Delay    time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs periodic tasks until its context ends.
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Add registers a task. Tasks added after Run starts are ignored.
func (s *Scheduler) Add(task Task) {
	if task.Run == nil || (task.Interval <= 0 && task.Delay <= 0) {
		return
	}
	s.tasks = append(s.tasks, task)
}

// Run blocks until ctx is cancelled and every task loop has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, task := range s.tasks {
		g.Go(func() error {
			s.loop(ctx, task)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	first := task.Delay
	if first <= 0 {
		first = task.Interval
	}
	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.runOnce(ctx, task)
		if task.Interval <= 0 {
			return
		}
		timer.Reset(task.Interval)
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", zap.String("task", task.Name), zap.Any("panic", r))
		}
	}()
	start := time.Now()
	if err := task.Run(ctx); err != nil {
		s.logger.Warn("scheduled task failed", zap.String("task", task.Name), zap.Error(err))
		return
	}
	s.logger.Debug("scheduled task done", zap.String("task", task.Name), zap.Duration("took", time.Since(start)))
}
