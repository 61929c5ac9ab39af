package ffmpeg

import (
	"fmt"
	"path/filepath"

	"vodstream/internal/domain"
)

// Argument builders are pure functions with no side effects; the binary name
// itself is prepended by the runner.

// BuildConvertArgs re-encodes to H.264/AAC at the tier's scale and bitrate,
// web-optimized (moov atom up front), overwriting any previous output.
func BuildConvertArgs(inputPath, outputPath string, q domain.Quality) []string {
	return []string{
		"-i", inputPath,
		"-c:v", "libx264", "-preset", "medium",
		"-crf", "23", "-vf", scaleFilter(q),
		"-b:v", q.Bitrate, "-c:a", "aac", "-b:a", "128k",
		"-movflags", "+faststart", "-y", outputPath,
	}
}

// BuildHLSArgs re-encodes into 10-second MPEG-TS segments with an unbounded
// VOD playlist. The manifest is written last, after all segments.
func BuildHLSArgs(inputPath, outputDir string, q domain.Quality) []string {
	manifest := filepath.Join(outputDir, "index.m3u8")
	segmentPattern := filepath.Join(outputDir, "segment_%03d.ts")
	return []string{
		"-i", inputPath,
		"-c:v", "libx264", "-preset", "medium",
		"-crf", "23", "-vf", scaleFilter(q),
		"-b:v", q.Bitrate, "-c:a", "aac", "-b:a", "128k",
		"-f", "hls", "-hls_time", "10",
		"-hls_list_size", "0", "-hls_segment_filename",
		segmentPattern, "-y", manifest,
	}
}

// BuildThumbnailArgs extracts a single frame at the given timestamp,
// scaled to 1280x720 JPEG.
func BuildThumbnailArgs(inputPath, outputPath, timestamp string) []string {
	if timestamp == "" {
		timestamp = "00:00:05"
	}
	return []string{
		"-i", inputPath, "-ss", timestamp,
		"-vframes", "1", "-vf", "scale=1280:720",
		"-q:v", "2", "-y", outputPath,
	}
}

// BuildProbeArgs queries container metadata for the duration in seconds.
func BuildProbeArgs(inputPath string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	}
}

func scaleFilter(q domain.Quality) string {
	width := q.Width
	height := q.Height
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	return fmt.Sprintf("scale=%d:%d", width, height)
}
