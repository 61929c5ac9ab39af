package ports

import (
	"context"
	"errors"
	"time"

	"vodstream/internal/domain"
)

// ErrQueueEmpty is returned by Dequeue when the blocking wait times out
// without a job becoming available.
var ErrQueueEmpty = errors.New("queue empty")

// JobQueue dispatches transcode jobs to the worker pool. Delivery is
// at-least-once: a dequeued job stays in a processing list until acked,
// and stale entries are requeued by the worker's janitor.
type JobQueue interface {
	Enqueue(ctx context.Context, id domain.VideoID) error
	Dequeue(ctx context.Context, timeout time.Duration) (domain.VideoID, error)
	Ack(ctx context.Context, id domain.VideoID) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int, error)

	// MarkPending sets the per-video queued marker. It returns false when a
	// job for the video is already queued or running, closing the duplicate
	// enqueue race between two rapid saves.
	MarkPending(ctx context.Context, id domain.VideoID, ttl time.Duration) (bool, error)
	ClearPending(ctx context.Context, id domain.VideoID) error
	Depth(ctx context.Context) (int64, error)
}
