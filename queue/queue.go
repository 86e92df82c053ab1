// Package queue dispatches run ids from the control API to worker
// processes over a Redis list. Delivery is at-least-once: the same run_id
// may be delivered more than once. orchestrator.Execute returns without
// doing anything for a run that is already terminal; a delivery that
// arrives while the run is still RUNNING is not rejected on entry, and
// only steps still QUEUED are executed by it.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultKey is the default list key runs are pushed onto.
const DefaultKey = "localops:runs"

// DefaultTimeout is the per-publish timeout applied to Enqueue.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the number of retry attempts Enqueue makes on failure.
const DefaultRetries = 3

// Config configures the Redis-backed queue.
type Config struct {
	// URL is the Redis connection URL (required).
	URL string
	// Key is the list key runs are pushed onto (default DefaultKey).
	Key string
	// Timeout is the per-publish timeout (default DefaultTimeout).
	Timeout time.Duration
	// Retries is the number of retry attempts on Enqueue failure.
	Retries int
}

// Queue is the Redis-backed task queue adapter.
type Queue struct {
	cfg    Config
	client *goredis.Client
}

// New creates a Queue from the given config, validating the connection URL.
func New(cfg Config) (*Queue, error) {
	if cfg.URL == "" {
		return nil, errors.New("queue requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("queue: invalid URL: %w", err)
	}

	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Queue{cfg: cfg, client: goredis.NewClient(opts)}, nil
}

// Enqueue pushes runID onto the queue, retrying with exponential backoff
// on transient errors.
func (q *Queue) Enqueue(ctx context.Context, runID int64) error {
	body := strconv.FormatInt(runID, 10)

	var lastErr error
	attempts := 1 + q.cfg.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("queue: context canceled: %w", err)
		}

		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("queue: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		pushCtx, cancel := context.WithTimeout(ctx, q.cfg.Timeout)
		lastErr = q.client.LPush(pushCtx, q.cfg.Key, body).Err()
		cancel()

		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("queue: enqueue failed after %d attempts: %w", attempts, lastErr)
}

// Dequeue blocks up to timeout waiting for a run id to become available.
// It returns (0, false, nil) on timeout with no item, distinguishing that
// from a connection error.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (int64, bool, error) {
	result, err := q.client.BRPop(ctx, timeout, q.cfg.Key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("queue: dequeue: %w", err)
	}

	// BRPop returns [key, value].
	if len(result) != 2 {
		return 0, false, fmt.Errorf("queue: unexpected BRPOP reply: %v", result)
	}
	runID, err := strconv.ParseInt(result[1], 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("queue: malformed run id %q: %w", result[1], err)
	}
	return runID, true, nil
}

// Close releases the underlying Redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}
