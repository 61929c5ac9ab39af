package ports

import (
	"context"

	"vodstream/internal/domain"
)

type VideoRepository interface {
	Create(ctx context.Context, v domain.VideoRecord) error
	Update(ctx context.Context, v domain.VideoRecord) error
	Get(ctx context.Context, id domain.VideoID) (domain.VideoRecord, error)
	List(ctx context.Context, filter domain.VideoFilter) ([]domain.VideoRecord, error)
	Delete(ctx context.Context, id domain.VideoID) error
	UpdateStatus(ctx context.Context, id domain.VideoID, status domain.VideoStatus) error
	UpdateDuration(ctx context.Context, id domain.VideoID, seconds int) error
	UpdateThumbnail(ctx context.Context, id domain.VideoID, path string) error
	UpdateRendition(ctx context.Context, id domain.VideoID, res domain.Resolution, rendition domain.Rendition) error
	IncrementViews(ctx context.Context, id domain.VideoID) error
}
