package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
	"vodstream/internal/metrics"
)

// ProcessJob is the transcode pipeline the worker runs per dequeued video.
type ProcessJob interface {
	Execute(ctx context.Context, id domain.VideoID) error
}

// Worker consumes the transcode queue with a fixed-size pool plus a janitor
// that requeues jobs abandoned by crashed consumers.
type Worker struct {
	Queue   ports.JobQueue
	Process ProcessJob
	Logger  *slog.Logger

	Concurrency     int
	DequeueTimeout  time.Duration
	JobTimeout      time.Duration // outer bound for one full pipeline run
	StaleAfter      time.Duration // processing-list age before a job is requeued
	JanitorInterval time.Duration
}

// Run blocks until ctx is cancelled. Consumers exit cleanly once their
// current job completes.
func (w Worker) Run(ctx context.Context) error {
	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		worker := i
		group.Go(func() error {
			return w.consume(ctx, worker)
		})
	}
	group.Go(func() error {
		w.janitor(ctx)
		return nil
	})
	return group.Wait()
}

func (w Worker) consume(ctx context.Context, worker int) error {
	logger := w.logger().With(slog.Int("worker", worker))
	logger.Info("worker started")

	timeout := w.DequeueTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	for {
		if ctx.Err() != nil {
			logger.Info("worker stopped")
			return nil
		}

		id, err := w.Queue.Dequeue(ctx, timeout)
		if err != nil {
			if errors.Is(err, ports.ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			logger.Warn("dequeue failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		w.runJob(ctx, id, logger)
	}
}

func (w Worker) runJob(ctx context.Context, id domain.VideoID, logger *slog.Logger) {
	metrics.JobsStartedTotal.Inc()
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	// The marker is cleared up front so a save arriving during a long encode
	// can queue a fresh job for the changed source.
	if err := w.Queue.ClearPending(ctx, id); err != nil {
		logger.Warn("clear pending failed", slog.String("video_id", string(id)), slog.String("error", err.Error()))
	}

	jobCtx := ctx
	if w.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.Process.Execute(jobCtx, id); err != nil {
		metrics.JobsFailedTotal.Inc()
		logger.Error("job failed",
			slog.String("video_id", string(id)),
			slog.String("error", err.Error()),
			slog.Int64("durationMs", time.Since(start).Milliseconds()),
		)
	} else {
		logger.Info("job done",
			slog.String("video_id", string(id)),
			slog.Int64("durationMs", time.Since(start).Milliseconds()),
		)
	}

	// Failed jobs are acked too: the failure is recorded on the record and
	// retried via explicit reprocessing, not by hot-looping the queue.
	if err := w.Queue.Ack(ctx, id); err != nil {
		logger.Warn("ack failed", slog.String("video_id", string(id)), slog.String("error", err.Error()))
	}
}

func (w Worker) janitor(ctx context.Context) {
	interval := w.JanitorInterval
	if interval <= 0 {
		interval = time.Minute
	}
	staleAfter := w.StaleAfter
	if staleAfter <= 0 {
		staleAfter = 2 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			moved, err := w.Queue.RequeueStale(ctx, staleAfter)
			if err != nil {
				w.logger().Warn("requeue stale failed", slog.String("error", err.Error()))
				continue
			}
			if moved > 0 {
				w.logger().Info("requeued stale jobs", slog.Int("count", moved))
			}
			if depth, err := w.Queue.Depth(ctx); err == nil {
				metrics.QueueDepth.Set(float64(depth))
			}
		}
	}
}

func (w Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
