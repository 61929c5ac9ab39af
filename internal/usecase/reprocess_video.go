package usecase

import (
	"context"

	"vodstream/internal/domain"
	"vodstream/internal/domain/ports"
)

// ReprocessVideo force-queues a transcode job for an existing video, used
// after a failed encode or a source file swap.
type ReprocessVideo struct {
	Repo     ports.VideoRepository
	Dispatch DispatchProcessing
}

func (uc ReprocessVideo) Execute(ctx context.Context, id domain.VideoID) (bool, error) {
	record, err := uc.Repo.Get(ctx, id)
	if err != nil {
		return false, wrapRepo(err)
	}
	return uc.Dispatch.Force(ctx, record)
}
