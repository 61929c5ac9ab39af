// Package redisq implements the transcode job queue on Redis lists.
//
// Enqueued video IDs sit on a pending list; consumers move them atomically
// onto a processing list with BRPOPLPUSH and remove them on Ack. A janitor
// periodically requeues entries that stayed on the processing list for too
// long, which covers worker crashes mid-job.
package redisq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
)

const (
	queueKey      = "vodstream:jobs"
	processingKey = "vodstream:jobs:processing"
	pendingPrefix = "vodstream:jobs:pending:"
	claimedPrefix = "vodstream:jobs:claimed:"
)

// ErrEmpty is returned by Dequeue when the blocking pop times out without a
// job becoming available.
var ErrEmpty = ports.ErrQueueEmpty

type Queue struct {
	client *redis.Client
}

func New(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// Connect builds a Redis client and verifies connectivity.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (q *Queue) Enqueue(ctx context.Context, id domain.VideoID) error {
	if err := q.client.LPush(ctx, queueKey, string(id)).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", id, err)
	}
	return nil
}

// Dequeue blocks for up to timeout, moving the oldest job onto the
// processing list. ErrEmpty means nothing arrived in time.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (domain.VideoID, error) {
	value, err := q.client.BRPopLPush(ctx, queueKey, processingKey, timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmpty
		}
		return "", fmt.Errorf("dequeue: %w", err)
	}
	// Stamp the claim so the janitor can tell a live job from an orphan.
	if err := q.client.Set(ctx, claimedPrefix+value, time.Now().UTC().Format(time.RFC3339), 0).Err(); err != nil {
		return domain.VideoID(value), fmt.Errorf("stamp claim %s: %w", value, err)
	}
	return domain.VideoID(value), nil
}

// Ack removes a completed job from the processing list.
func (q *Queue) Ack(ctx context.Context, id domain.VideoID) error {
	if err := q.client.LRem(ctx, processingKey, 1, string(id)).Err(); err != nil {
		return fmt.Errorf("ack %s: %w", id, err)
	}
	return q.client.Del(ctx, claimedPrefix+string(id)).Err()
}

// RequeueStale moves jobs whose claim stamp is older than olderThan (or
// missing entirely) back onto the pending list. Returns how many moved.
func (q *Queue) RequeueStale(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := q.client.LRange(ctx, processingKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("requeue stale: %w", err)
	}

	moved := 0
	cutoff := time.Now().UTC().Add(-olderThan)
	for _, id := range ids {
		stamp, err := q.client.Get(ctx, claimedPrefix+id).Result()
		if err == nil {
			claimedAt, parseErr := time.Parse(time.RFC3339, stamp)
			if parseErr == nil && claimedAt.After(cutoff) {
				continue
			}
		} else if !errors.Is(err, redis.Nil) {
			return moved, fmt.Errorf("requeue stale: %w", err)
		}

		pipe := q.client.TxPipeline()
		pipe.LRem(ctx, processingKey, 1, id)
		pipe.LPush(ctx, queueKey, id)
		pipe.Del(ctx, claimedPrefix+id)
		if _, err := pipe.Exec(ctx); err != nil {
			return moved, fmt.Errorf("requeue %s: %w", id, err)
		}
		moved++
	}
	return moved, nil
}

// MarkPending sets an enqueue guard for the video. Returns false when a
// guard already exists, meaning a job for this video is already in flight.
func (q *Queue) MarkPending(ctx context.Context, id domain.VideoID, ttl time.Duration) (bool, error) {
	ok, err := q.client.SetNX(ctx, pendingPrefix+string(id), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark pending %s: %w", id, err)
	}
	return ok, nil
}

// ClearPending drops the enqueue guard once a job finishes or fails.
func (q *Queue) ClearPending(ctx context.Context, id domain.VideoID) error {
	if err := q.client.Del(ctx, pendingPrefix+string(id)).Err(); err != nil {
		return fmt.Errorf("clear pending %s: %w", id, err)
	}
	return nil
}

func (q *Queue) Depth(ctx context.Context) (int64, error) {
	depth, err := q.client.LLen(ctx, queueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return depth, nil
}
