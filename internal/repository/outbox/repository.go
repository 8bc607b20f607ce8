package outbox

import (
	"context"
	"time"
)

// Task types dispatched by the worker.
const (
	TaskBookShipment = "shipment.book"
	TaskAwardPoints  = "rewards.award"
)

// Task is one enqueued side effect. Handlers must be idempotent: a task may
// be delivered more than once across worker restarts.
type Task struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Payload       []byte    `json:"payload"`
	Status        string    `json:"status"`
	Attempts      int       `json:"attempts"`
	MaxAttempts   int       `json:"maxAttempts"`
	NextAttemptAt time.Time `json:"nextAttemptAt"`
	LastError     *string   `json:"lastError,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Repository interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
	// ClaimDue atomically claims up to limit runnable tasks, incrementing
	// their attempt counter. A claim holds a lease: the task stays invisible
	// to other workers until it is marked done or failed, or until the lease
	// expires and the task is reclaimed from a crashed worker.
	ClaimDue(ctx context.Context, limit int) ([]Task, error)
	MarkDone(ctx context.Context, id string) error
	// MarkFailed records the error and reschedules the task after backoff,
	// or parks it once attempts are exhausted.
	MarkFailed(ctx context.Context, id string, taskErr error, backoff time.Duration) error
}
