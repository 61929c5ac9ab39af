package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
	"vodstream/internal/media"
	"vodstream/internal/metrics"
)

// Notifier pushes record changes to interested observers. Implementations
// must not block; a nil Notifier disables notifications.
type Notifier interface {
	NotifyVideo(record domain.VideoRecord)
}

// ProcessVideo runs the full transcode pipeline for one video: probe the
// duration, extract a thumbnail, then convert each resolution tier to HLS.
//
// Per-tier failures are recorded on the record and do not abort the run; the
// video is published at the end with whatever tiers succeeded, so a partial
// encode still yields a playable result. Only a missing source file or a
// repository failure aborts the job.
type ProcessVideo struct {
	Repo     ports.VideoRepository
	Locator  ports.SourceLocator
	Encoder  ports.Encoder
	Notifier Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

func (uc ProcessVideo) Execute(ctx context.Context, id domain.VideoID) error {
	logger := uc.logger().With(slog.String("video_id", string(id)))

	record, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return wrapRepo(err)
	}

	sourcePath, err := uc.Locator.Resolve(record)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Error("source file not found", slog.String("source", record.SourceName))
			return fmt.Errorf("%w: %s", ErrSourceMissing, record.SourceName)
		}
		return err
	}

	if err := uc.setStatus(ctx, &record, domain.VideoProcessing); err != nil {
		return err
	}
	logger.Info("transcode started", slog.String("source", sourcePath))

	// A record must not stay in processing forever when the job dies after
	// this point; roll it back to draft so the next save can redispatch.
	published := false
	defer func() {
		if published {
			return
		}
		resetCtx := context.WithoutCancel(ctx)
		if err := uc.Repo.UpdateStatus(resetCtx, record.ID, domain.VideoDraft); err != nil {
			logger.Warn("status rollback failed", slog.String("error", err.Error()))
		}
	}()

	uc.probeDuration(ctx, &record, sourcePath, logger)
	uc.extractThumbnail(ctx, &record, sourcePath, logger)

	for _, res := range domain.Resolutions() {
		uc.convertTier(ctx, &record, sourcePath, res, logger)
	}

	// Publish regardless of per-tier outcomes. The streaming side falls back
	// to the original file for tiers that never materialized.
	if err := uc.setStatus(ctx, &record, domain.VideoPublished); err != nil {
		return err
	}
	published = true

	ready := 0
	for _, res := range domain.Resolutions() {
		if record.HasRendition(res) {
			ready++
		}
	}
	logger.Info("transcode finished",
		slog.Int("renditions_ready", ready),
		slog.Int("duration_seconds", record.DurationSeconds),
	)
	return nil
}

func (uc ProcessVideo) probeDuration(ctx context.Context, record *domain.VideoRecord, sourcePath string, logger *slog.Logger) {
	seconds := uc.Encoder.DurationSeconds(ctx, sourcePath)
	if seconds <= 0 {
		return
	}
	record.DurationSeconds = seconds
	if err := uc.Repo.UpdateDuration(ctx, record.ID, seconds); err != nil {
		logger.Warn("persist duration failed", slog.String("error", err.Error()))
	}
}

func (uc ProcessVideo) extractThumbnail(ctx context.Context, record *domain.VideoRecord, sourcePath string, logger *slog.Logger) {
	thumbPath := media.OutputPath(sourcePath, "thumbnail.jpg")
	if err := uc.Encoder.Thumbnail(ctx, sourcePath, thumbPath); err != nil {
		logger.Warn("thumbnail extraction failed", slog.String("error", err.Error()))
		return
	}
	record.ThumbnailPath = thumbPath
	if err := uc.Repo.UpdateThumbnail(ctx, record.ID, thumbPath); err != nil {
		logger.Warn("persist thumbnail failed", slog.String("error", err.Error()))
	}
}

func (uc ProcessVideo) convertTier(ctx context.Context, record *domain.VideoRecord, sourcePath string, res domain.Resolution, logger *slog.Logger) {
	rendition := domain.Rendition{UpdatedAt: uc.now()}

	if outputDir, err := media.EnsureHLSDir(sourcePath, res); err != nil {
		rendition.Error = err.Error()
	} else if err := uc.Encoder.ConvertHLS(ctx, sourcePath, outputDir, domain.QualityFor(res)); err != nil {
		rendition.Error = err.Error()
	} else {
		rendition.Path = media.ManifestPath(sourcePath, res)
		rendition.Ready = true
	}

	if rendition.Error != "" {
		metrics.EncodeFailuresTotal.WithLabelValues(string(res)).Inc()
		logger.Error("tier conversion failed",
			slog.String("resolution", string(res)),
			slog.String("error", rendition.Error),
		)
	}

	if record.Renditions == nil {
		record.Renditions = make(map[domain.Resolution]domain.Rendition, len(domain.Resolutions()))
	}
	record.Renditions[res] = rendition

	if err := uc.Repo.UpdateRendition(ctx, record.ID, res, rendition); err != nil {
		logger.Warn("persist rendition failed",
			slog.String("resolution", string(res)),
			slog.String("error", err.Error()),
		)
	}
}

func (uc ProcessVideo) setStatus(ctx context.Context, record *domain.VideoRecord, status domain.VideoStatus) error {
	if err := uc.Repo.UpdateStatus(ctx, record.ID, status); err != nil {
		return wrapRepo(err)
	}
	record.Status = status
	record.UpdatedAt = uc.now()
	if uc.Notifier != nil {
		uc.Notifier.NotifyVideo(*record)
	}
	return nil
}

func (uc ProcessVideo) now() time.Time {
	if uc.Now != nil {
		return uc.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc ProcessVideo) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}
