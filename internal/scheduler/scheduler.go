package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is a unit of periodic work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs each task on its own ticker. A task that is still running
// when its ticker fires skips that tick.
type Scheduler struct {
	tasks []*scheduledTask
	wg    sync.WaitGroup
}

type scheduledTask struct {
	task     Task
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func NewScheduler() *Scheduler {
	return &Scheduler{tasks: []*scheduledTask{}}
}

func (s *Scheduler) ScheduleTask(task Task, interval time.Duration) {
	s.tasks = append(s.tasks, &scheduledTask{
		task:     task,
		interval: interval,
		stop:     make(chan struct{}),
	})
}

func (s *Scheduler) HasTasks() bool {
	return len(s.tasks) > 0
}

// Start launches every scheduled task. Tasks stop when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	for _, st := range s.tasks {
		s.wg.Add(1)
		go func(st *scheduledTask) {
			defer s.wg.Done()
			ticker := time.NewTicker(st.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if err := st.task.Run(ctx); err != nil {
						log.Error().Err(err).Str("task", st.task.Name()).Msg("Task failed")
					}
				case <-st.stop:
					return
				case <-ctx.Done():
					return
				}
			}
		}(st)
	}
}

// Stop signals every task to finish and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	for _, st := range s.tasks {
		st.stopOnce.Do(func() { close(st.stop) })
	}
	s.wg.Wait()
}
