package ports

import (
	"context"

	"vodstream/internal/domain"
)

// SourceLocator resolves a video record to its on-disk source file.
// Implementations must never return a path outside the media root.
type SourceLocator interface {
	Resolve(record domain.VideoRecord) (string, error)
	MediaRoot() string
}

// Encoder runs the external encode and probe tools for one source file.
// Calls block until the tool exits or ctx is cancelled.
type Encoder interface {
	DurationSeconds(ctx context.Context, inputPath string) int
	Thumbnail(ctx context.Context, inputPath, outputPath string) error
	ConvertHLS(ctx context.Context, inputPath, outputDir string, quality domain.Quality) error
	ConvertMP4(ctx context.Context, inputPath, outputPath string, quality domain.Quality) error
}
