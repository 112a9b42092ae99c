// Package periodic owns the background execution loop for recurring
// maintenance work, independent of any request-handling goroutines.
package periodic

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a named callable fired on a fixed interval.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Service drives registered tasks on timer loops running on dedicated
// goroutines. Stop is cooperative: it is checked between firings, never
// mid-invocation, and Stop blocks until every in-flight callable has
// returned.
type Service struct {
	mu      sync.Mutex
	tasks   []Task
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
	stopped bool
}

// NewService creates an idle service with no tasks.
func NewService() *Service {
	return &Service{}
}

// Register adds a task. Must be called before Start.
func (s *Service) Register(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Start launches one timer loop per registered task. Calling Start on a
// running service is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}
	slog.Info("periodic service started", "tasks", len(s.tasks))
}

func (s *Service) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := task.Run(ctx); err != nil {
				slog.Error("periodic task failed", "task", task.Name, "error", err)
			} else {
				slog.Debug("periodic task done", "task", task.Name, "elapsed", time.Since(start))
			}
		}
	}
}

// Stop signals every loop to halt and waits for in-flight callables to
// finish before returning. Stopping a service that was never started is
// a safe no-op. Once stopped the service stays stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	if s.running {
		s.running = false
		close(s.stop)
	}
	s.stopped = true
	s.mu.Unlock()

	// Every caller waits here, so a Stop racing another Stop cannot
	// return while callables are still draining.
	s.wg.Wait()
	if wasRunning {
		slog.Info("periodic service stopped")
	}
}
