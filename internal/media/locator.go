package media

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"vodstream/internal/domain"
)

// Locator resolves a video record to the absolute path of its source file.
//
// Upload-time path construction historically produced inconsistent relative
// names (placeholder directory segments, renamed media roots), so resolution
// tries three candidates in order and takes the first one that exists:
//
//  1. the stored name as-is, when it is already absolute
//  2. the media root joined with the stored name
//  3. the structural layout videos/<id>/<basename of stored name>
//
// Every candidate is canonicalized and checked for containment under the
// media root before it is considered; a path escaping the root is treated as
// nonexistent, never surfaced.
type Locator struct {
	root string
}

func NewLocator(mediaRoot string) (*Locator, error) {
	root := strings.TrimSpace(mediaRoot)
	if root == "" {
		return nil, errors.New("media root is required")
	}
	root = filepath.Clean(root)
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Locator{root: root}, nil
}

func (l *Locator) MediaRoot() string {
	return l.root
}

func (l *Locator) Resolve(record domain.VideoRecord) (string, error) {
	name := strings.TrimSpace(record.SourceName)
	if name == "" {
		return "", domain.ErrNotFound
	}

	candidates := make([]string, 0, 3)
	if filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Clean(name))
	}
	candidates = append(candidates, filepath.Join(l.root, filepath.FromSlash(name)))
	if record.ID != "" {
		base := filepath.Base(filepath.FromSlash(name))
		candidates = append(candidates, filepath.Join(l.root, "videos", string(record.ID), base))
	}

	for _, candidate := range candidates {
		resolved, err := l.contain(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(resolved); err == nil && !info.IsDir() {
			return resolved, nil
		}
	}
	return "", domain.ErrNotFound
}

// contain canonicalizes candidate and verifies it stays under the media root.
func (l *Locator) contain(candidate string) (string, error) {
	cleaned := filepath.Clean(candidate)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if cleaned != l.root && !strings.HasPrefix(cleaned, l.root+string(filepath.Separator)) {
		return "", errors.New("path escapes media root")
	}
	return cleaned, nil
}

// SourceDir returns the per-video directory layout for new uploads:
// videos/<id>/ under the media root.
func (l *Locator) SourceDir(id domain.VideoID) string {
	return filepath.Join(l.root, "videos", string(id))
}
