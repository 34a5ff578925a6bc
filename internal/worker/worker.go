package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"basegraph.app/triage/common/logger"
)

var (
	ErrQueueFull = errors.New("triage queue is full")
	ErrStopped   = errors.New("worker pool stopped")
)

// Task is one unit of background work. Name is only used for logging.
type Task struct {
	Name   string
	Fields logger.LogFields
	Run    func(ctx context.Context) error
}

type Config struct {
	Workers   int
	QueueSize int
}

// Pool runs submitted tasks on a fixed set of goroutines fed by a bounded
// queue. Completion order across workers is not defined.
type Pool struct {
	cfg   Config
	tasks chan Task

	mu      sync.RWMutex
	stopped bool
	started bool

	wg sync.WaitGroup
}

func New(cfg Config) *Pool {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	return &Pool{
		cfg:   cfg,
		tasks: make(chan Task, cfg.QueueSize),
	}
}

// Start launches the workers. They exit when ctx is cancelled or, after
// Stop, once the queue is drained.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	slog.InfoContext(ctx, "worker pool started", "workers", p.cfg.Workers, "queue_size", p.cfg.QueueSize)
	for i := range p.cfg.Workers {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Submit enqueues a task without blocking. A full queue yields ErrQueueFull.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of queued tasks not yet picked up.
func (p *Pool) Pending() int {
	return len(p.tasks)
}

// Stop rejects new tasks and waits for the workers to finish what is queued.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "triage.worker"})

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if err := p.runTaskSafe(ctx, task); err != nil {
				slog.ErrorContext(ctx, "task failed", "error", err, "task", task.Name, "worker", id)
			}
		}
	}
}

func (p *Pool) runTaskSafe(ctx context.Context, task Task) (err error) {
	ctx = logger.WithLogFields(ctx, task.Fields)
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in task", "panic", r, "task", task.Name)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if task.Run == nil {
		return nil
	}
	return task.Run(ctx)
}
