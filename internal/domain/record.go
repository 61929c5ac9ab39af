package domain

import (
	"errors"
	"time"
)

type VideoID string

// Rendition is the persisted outcome of one resolution's HLS conversion.
// Ready means the manifest exists and the tier is streamable; a non-empty
// Error records why the last conversion attempt failed.
type Rendition struct {
	Path      string    `json:"path"`
	Ready     bool      `json:"ready"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type VideoRecord struct {
	ID              VideoID                  `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description,omitempty"`
	Status          VideoStatus              `json:"status"`
	SourceName      string                   `json:"sourceName,omitempty"`
	DurationSeconds int                      `json:"durationSeconds"`
	ThumbnailPath   string                   `json:"thumbnailPath,omitempty"`
	Renditions      map[Resolution]Rendition `json:"renditions,omitempty"`
	ViewCount       int64                    `json:"viewCount"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// HasRendition reports whether the given tier completed successfully.
func (r VideoRecord) HasRendition(res Resolution) bool {
	rendition, ok := r.Renditions[res]
	return ok && rendition.Ready
}

// Validate checks domain invariants for VideoRecord.
func (r VideoRecord) Validate() error {
	if r.ID == "" {
		return errors.New("video id is required")
	}
	if r.Title == "" {
		return errors.New("title is required")
	}
	if r.DurationSeconds < 0 {
		return errors.New("durationSeconds must not be negative")
	}
	switch r.Status {
	case VideoDraft, VideoProcessing, VideoPublished, VideoArchived:
		// valid
	case "":
		return errors.New("status is required")
	default:
		return errors.New("invalid status: " + string(r.Status))
	}
	return nil
}
