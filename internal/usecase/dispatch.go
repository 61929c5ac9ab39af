package usecase

import (
	"context"
	"log/slog"
	"time"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
)

const defaultPendingTTL = 90 * time.Minute

// DispatchProcessing decides whether a saved video needs a transcode job and
// enqueues one. The decision is explicit: callers state whether the save
// created the record, there is no implicit state diffing.
type DispatchProcessing struct {
	Queue      ports.JobQueue
	PendingTTL time.Duration
	Logger     *slog.Logger
}

// Execute enqueues a job when the record has a source file and either was
// just created or is still a draft without its lowest rendition. The pending
// marker closes the window where two rapid saves would enqueue twice; a job
// already in flight makes Execute a no-op. Returns whether a job was queued.
func (uc DispatchProcessing) Execute(ctx context.Context, record domain.VideoRecord, created bool) (bool, error) {
	if !uc.shouldDispatch(record, created) {
		return false, nil
	}
	return uc.enqueue(ctx, record.ID)
}

// Force enqueues regardless of record state, for operator-driven
// reprocessing. The duplicate guard still applies.
func (uc DispatchProcessing) Force(ctx context.Context, record domain.VideoRecord) (bool, error) {
	if record.SourceName == "" {
		return false, ErrSourceMissing
	}
	return uc.enqueue(ctx, record.ID)
}

func (uc DispatchProcessing) shouldDispatch(record domain.VideoRecord, created bool) bool {
	if record.SourceName == "" {
		return false
	}
	if created {
		return true
	}
	return record.Status == domain.VideoDraft && !record.HasRendition(domain.Resolution360p)
}

func (uc DispatchProcessing) enqueue(ctx context.Context, id domain.VideoID) (bool, error) {
	ttl := uc.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingTTL
	}

	ok, err := uc.Queue.MarkPending(ctx, id, ttl)
	if err != nil {
		return false, wrapQueue(err)
	}
	if !ok {
		uc.logger().Debug("transcode already pending", slog.String("video_id", string(id)))
		return false, nil
	}

	if err := uc.Queue.Enqueue(ctx, id); err != nil {
		// Roll the marker back so a retry is not locked out for the full TTL.
		_ = uc.Queue.ClearPending(ctx, id)
		return false, wrapQueue(err)
	}

	uc.logger().Info("transcode job queued", slog.String("video_id", string(id)))
	return true, nil
}

func (uc DispatchProcessing) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}
