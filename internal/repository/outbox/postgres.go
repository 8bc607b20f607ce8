package outbox

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxAttempts = 8

// claimLease bounds how long a claimed task may sit in 'running' before
// another worker is allowed to reclaim it.
const claimLease = 5 * time.Minute

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO outbox_tasks (id, task_type, payload, status, attempts, max_attempts, next_attempt_at)
VALUES ($1, $2, $3, 'pending', 0, $4, now())
`, uuid.NewString(), taskType, body, defaultMaxAttempts)
	if err != nil {
		return err
	}
	r.logger.Printf("outbox repo: enqueued %s", taskType)
	return nil
}

func (r *postgresRepo) ClaimDue(ctx context.Context, limit int) ([]Task, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// A claim also takes a lease: next_attempt_at is pushed forward so the
	// row is invisible to other workers until the lease expires. A 'running'
	// row whose lease has lapsed belongs to a crashed worker and is fair game.
	rows, err := tx.Query(ctx, `
UPDATE outbox_tasks
SET status = 'running', attempts = attempts + 1, next_attempt_at = now() + $2
WHERE id IN (
	SELECT id FROM outbox_tasks
	WHERE status IN ('pending', 'running') AND next_attempt_at <= now()
	ORDER BY next_attempt_at ASC
	LIMIT $1
	FOR UPDATE SKIP LOCKED
)
RETURNING id::text, task_type, payload, status, attempts, max_attempts, next_attempt_at, last_error, created_at
`, limit, claimLease)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Type, &t.Payload, &t.Status, &t.Attempts, &t.MaxAttempts, &t.NextAttemptAt, &t.LastError, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		tasks = append(tasks, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *postgresRepo) MarkDone(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE outbox_tasks SET status = 'done', last_error = NULL WHERE id = $1
`, id)
	return err
}

func (r *postgresRepo) MarkFailed(ctx context.Context, id string, taskErr error, backoff time.Duration) error {
	msg := taskErr.Error()
	if len(msg) > 512 {
		msg = msg[:512]
	}
	_, err := r.pool.Exec(ctx, `
UPDATE outbox_tasks
SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
    last_error = $2,
    next_attempt_at = now() + $3
WHERE id = $1
`, id, msg, backoff)
	return err
}
