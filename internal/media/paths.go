package media

import (
	"os"
	"path/filepath"
	"strings"

	"vodstream/internal/domain"
)

// Derived artifacts live next to the source file:
// <video_dir>/<base>_thumbnail.jpg and <video_dir>/hls_<resolution>/.

// OutputPath builds a sibling output path from the source path and a suffix,
// e.g. movie.mp4 + "thumbnail.jpg" → movie_thumbnail.jpg.
func OutputPath(inputPath, suffix string) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, base+"_"+suffix)
}

// HLSDir returns the per-resolution output directory for the given source.
func HLSDir(inputPath string, res domain.Resolution) string {
	return filepath.Join(filepath.Dir(inputPath), "hls_"+string(res))
}

// ManifestPath returns the playlist location for the given source/resolution.
func ManifestPath(inputPath string, res domain.Resolution) string {
	return filepath.Join(HLSDir(inputPath, res), "index.m3u8")
}

// EnsureHLSDir creates the per-resolution output directory.
func EnsureHLSDir(inputPath string, res domain.Resolution) (string, error) {
	dir := HLSDir(inputPath, res)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
