package usecase

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
)

// DeleteVideo removes the record and its media directory. The directory is
// only removed when it sits inside the media root; a record with a mangled
// source name never causes deletion outside of it.
type DeleteVideo struct {
	Repo    ports.VideoRepository
	Locator ports.SourceLocator
	Logger  *slog.Logger
}

func (uc DeleteVideo) Execute(ctx context.Context, id domain.VideoID) error {
	if err := uc.Repo.Delete(ctx, id); err != nil {
		return wrapRepo(err)
	}

	dir := filepath.Join(uc.Locator.MediaRoot(), "videos", string(id))
	if !uc.insideRoot(dir) {
		uc.logger().Warn("media dir outside root, skipping removal",
			slog.String("video_id", string(id)),
			slog.String("dir", dir),
		)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		uc.logger().Warn("media dir removal failed",
			slog.String("video_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (uc DeleteVideo) insideRoot(dir string) bool {
	root, err := filepath.Abs(uc.Locator.MediaRoot())
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	return abs != root && strings.HasPrefix(abs, root+string(filepath.Separator))
}

func (uc DeleteVideo) logger() *slog.Logger {
	if uc.Logger != nil {
		return uc.Logger
	}
	return slog.Default()
}
