package ports

import (
	"context"

	"dominion/internal/domain/campaign"
)

// Notifier receives appended log entries. Delivery is fire-and-forget; an
// implementation must not block the caller on slow consumers.
type Notifier interface {
	Publish(ctx context.Context, entries []campaign.LogEntry)
}

type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, []campaign.LogEntry) {}
