// Package worker drains the outbox: it claims due tasks and dispatches them
// to registered handlers, retrying with exponential backoff. Handlers are
// idempotent, so redelivery after a crash is safe.
package worker

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"marketplace-backend/internal/repository/outbox"
)

const (
	defaultBatchSize = 20
	baseBackoff      = 30 * time.Second
	maxBackoff       = time.Hour
)

type Handler func(ctx context.Context, payload []byte) error

type Dispatcher struct {
	repo     outbox.Repository
	handlers map[string]Handler
	interval time.Duration
	batch    int
	logger   *log.Logger
}

func NewDispatcher(repo outbox.Repository, interval time.Duration, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Dispatcher{
		repo:     repo,
		handlers: make(map[string]Handler),
		interval: interval,
		batch:    defaultBatchSize,
		logger:   logger,
	}
}

func (d *Dispatcher) Register(taskType string, h Handler) {
	d.handlers[taskType] = h
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Printf("worker: drain pass: %v", err)
			}
		}
	}
}

// RunOnce claims and processes one batch of due tasks.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	tasks, err := d.repo.ClaimDue(ctx, d.batch)
	if err != nil {
		return fmt.Errorf("claim tasks: %w", err)
	}
	for _, task := range tasks {
		d.process(ctx, task)
	}
	return nil
}

func (d *Dispatcher) process(ctx context.Context, task outbox.Task) {
	h, ok := d.handlers[task.Type]
	if !ok {
		d.logger.Printf("worker: no handler for task type %q id=%s", task.Type, task.ID)
		if err := d.repo.MarkFailed(ctx, task.ID, fmt.Errorf("no handler for %s", task.Type), backoff(task.Attempts)); err != nil {
			d.logger.Printf("worker: mark failed %s: %v", task.ID, err)
		}
		return
	}
	if err := h(ctx, task.Payload); err != nil {
		d.logger.Printf("worker: task %s type=%s attempt=%d failed: %v", task.ID, task.Type, task.Attempts, err)
		if markErr := d.repo.MarkFailed(ctx, task.ID, err, backoff(task.Attempts)); markErr != nil {
			d.logger.Printf("worker: mark failed %s: %v", task.ID, markErr)
		}
		return
	}
	if err := d.repo.MarkDone(ctx, task.ID); err != nil {
		d.logger.Printf("worker: mark done %s: %v", task.ID, err)
	}
}

func backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	b := baseBackoff << (attempts - 1)
	if b > maxBackoff || b <= 0 {
		return maxBackoff
	}
	return b
}
