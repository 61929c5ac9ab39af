package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
)

// CreateVideo registers a new video record and, when a source file is
// attached, dispatches its first transcode job.
type CreateVideo struct {
	Repo     ports.VideoRepository
	Dispatch DispatchProcessing
	Now      func() time.Time
}

type CreateVideoInput struct {
	ID          string
	Title       string
	Description string
	SourceName  string
}

func (uc CreateVideo) Execute(ctx context.Context, input CreateVideoInput) (domain.VideoRecord, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.VideoRecord{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = newVideoID()
	}

	record := domain.VideoRecord{
		ID:          domain.VideoID(id),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.VideoDraft,
		SourceName:  strings.TrimSpace(input.SourceName),
		CreatedAt:   now().UTC(),
		UpdatedAt:   now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return domain.VideoRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := uc.Repo.Create(ctx, record); err != nil {
		return domain.VideoRecord{}, wrapRepo(err)
	}

	if _, err := uc.Dispatch.Execute(ctx, record, true); err != nil {
		return record, err
	}
	return record, nil
}

// UpdateVideo applies a partial edit to a record and re-runs the dispatch
// decision, which picks up drafts that gained a source file or never got
// their first rendition.
type UpdateVideo struct {
	Repo     ports.VideoRepository
	Dispatch DispatchProcessing
}

type UpdateVideoInput struct {
	Title       *string
	Description *string
	Status      *string
	SourceName  *string
}

func (uc UpdateVideo) Execute(ctx context.Context, id domain.VideoID, input UpdateVideoInput) (domain.VideoRecord, error) {
	record, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return domain.VideoRecord{}, wrapRepo(err)
	}

	if input.Title != nil {
		record.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		record.Description = strings.TrimSpace(*input.Description)
	}
	if input.SourceName != nil {
		record.SourceName = strings.TrimSpace(*input.SourceName)
	}
	if input.Status != nil {
		status, err := domain.ParseVideoStatus(*input.Status)
		if err != nil {
			return domain.VideoRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		record.Status = status
	}
	if err := record.Validate(); err != nil {
		return domain.VideoRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := uc.Repo.Update(ctx, record); err != nil {
		return domain.VideoRecord{}, wrapRepo(err)
	}

	if _, err := uc.Dispatch.Execute(ctx, record, false); err != nil {
		return record, err
	}
	return record, nil
}

func newVideoID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("v%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
