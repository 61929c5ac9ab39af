package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"vodstream/internal/domain"
)

const eventsChannel = "vodstream:events:videos"

// VideoEvents carries record status changes between processes over Redis
// pub/sub. The worker publishes during transcoding; the API server listens
// and relays each record to its WebSocket clients.
type VideoEvents struct {
	client *redis.Client
	logger *slog.Logger
}

func NewVideoEvents(client *redis.Client, logger *slog.Logger) *VideoEvents {
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoEvents{client: client, logger: logger}
}

// NotifyVideo publishes a record snapshot. Delivery is best effort; a lost
// event only delays the UI until the next catalog broadcast.
func (e *VideoEvents) NotifyVideo(record domain.VideoRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		e.logger.Error("video event marshal failed", slog.String("error", err.Error()))
		return
	}
	if err := e.client.Publish(context.Background(), eventsChannel, payload).Err(); err != nil {
		e.logger.Warn("video event publish failed",
			slog.String("video_id", string(record.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// Listen delivers published records to fn until the context is cancelled.
// Undecodable payloads are logged and skipped.
func (e *VideoEvents) Listen(ctx context.Context, fn func(domain.VideoRecord)) {
	sub := e.client.Subscribe(ctx, eventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				if !errors.Is(ctx.Err(), context.Canceled) {
					e.logger.Warn("video event subscription closed")
				}
				return
			}
			var record domain.VideoRecord
			if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
				e.logger.Warn("video event decode failed", slog.String("error", err.Error()))
				continue
			}
			fn(record)
		}
	}
}
