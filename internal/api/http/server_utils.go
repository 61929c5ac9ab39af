package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vodstream/internal/domain"
	"vodstream/internal/usecase"
)

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "video not found")
		return
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		writeError(w, http.StatusConflict, "already_exists", "video already exists")
		return
	}
	if errors.Is(err, usecase.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if errors.Is(err, usecase.ErrSourceMissing) {
		writeError(w, http.StatusConflict, "source_missing", "video has no source file")
		return
	}
	if errors.Is(err, usecase.ErrRepository) {
		writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
		return
	}
	if errors.Is(err, usecase.ErrQueue) {
		writeError(w, http.StatusInternalServerError, "queue_error", err.Error())
		return
	}

	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "video not found")
		return
	}

	writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseStatusQuery(value string) (*domain.VideoStatus, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "all" {
		return nil, nil
	}
	status, err := domain.ParseVideoStatus(value)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func parseOptionalIntQuery(value string, defaultValue int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 0 {
		return 0, errors.New("must be a non-negative integer")
	}
	return parsed, nil
}

var (
	errInvalidRange        = errors.New("invalid range")
	errRangeNotSatisfiable = errors.New("range not satisfiable")
)

// parseByteRange parses a single-span RFC 7233 Range header value against the
// given size. Multi-range requests are rejected as invalid.
func parseByteRange(value string, size int64) (int64, int64, error) {
	if size <= 0 {
		return 0, 0, errRangeNotSatisfiable
	}

	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "bytes=") {
		return 0, 0, errInvalidRange
	}

	spec := strings.TrimSpace(value[len("bytes="):])
	if spec == "" || strings.Contains(spec, ",") {
		return 0, 0, errInvalidRange
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) == 1 {
		parts = append(parts, "")
	}

	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])

	if startStr == "" {
		// Suffix range: last N bytes.
		if endStr == "" {
			return 0, 0, errInvalidRange
		}
		suffix, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || suffix <= 0 {
			return 0, 0, errInvalidRange
		}
		if suffix > size {
			suffix = size
		}
		return size - suffix, size - 1, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, errInvalidRange
	}
	if start >= size {
		return 0, 0, errRangeNotSatisfiable
	}

	if endStr == "" {
		return start, size - 1, nil
	}

	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil || end < 0 {
		return 0, 0, errInvalidRange
	}
	if end < start {
		return 0, 0, errInvalidRange
	}
	if end >= size {
		end = size - 1
	}
	return start, end, nil
}

type renditionView struct {
	Path      string    `json:"path,omitempty"`
	Ready     bool      `json:"ready"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type videoSummary struct {
	ID              domain.VideoID           `json:"id"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description,omitempty"`
	Status          domain.VideoStatus       `json:"status"`
	DurationSeconds int                      `json:"durationSeconds"`
	ThumbnailPath   string                   `json:"thumbnailPath,omitempty"`
	Renditions      map[string]renditionView `json:"renditions,omitempty"`
	ViewCount       int64                    `json:"viewCount"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func newVideoSummary(record domain.VideoRecord) videoSummary {
	var renditions map[string]renditionView
	if len(record.Renditions) > 0 {
		renditions = make(map[string]renditionView, len(record.Renditions))
		for res, rendition := range record.Renditions {
			renditions[string(res)] = renditionView{
				Path:      rendition.Path,
				Ready:     rendition.Ready,
				Error:     rendition.Error,
				UpdatedAt: rendition.UpdatedAt,
			}
		}
	}
	return videoSummary{
		ID:              record.ID,
		Title:           record.Title,
		Description:     record.Description,
		Status:          record.Status,
		DurationSeconds: record.DurationSeconds,
		ThumbnailPath:   record.ThumbnailPath,
		Renditions:      renditions,
		ViewCount:       record.ViewCount,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
