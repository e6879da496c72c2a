package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/nik132-eng/roastit/internal/domain"
)

// notifier publishes write events and drops stale feed pages. Both are
// best effort: a committed write is never reported as failed because of them.
type notifier struct {
	signal EventPublisher
	cache  FeedCache
}

func (n notifier) announce(ctx context.Context, event domain.Event, channels ...string) {
	if n.cache != nil {
		n.cache.Invalidate(ctx)
	}
	if n.signal == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	for _, channel := range channels {
		event.Channel = channel
		if err := n.signal.Publish(ctx, channel, event); err != nil {
			slog.WarnContext(
				ctx, "failed to publish event",
				slog.String("error", err.Error()),
				slog.String("channel", channel),
				slog.String("type", event.Type),
				slog.String("module", "usecase"),
			)
		}
	}
}
