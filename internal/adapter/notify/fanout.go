package notify

import (
	"context"

	"dominion/internal/domain/campaign"

	"github.com/rs/zerolog"
)

// Sink is one delivery target for committed log entries.
type Sink interface {
	Name() string
	Send(ctx context.Context, entries []campaign.LogEntry) error
}

// Fanout delivers to every sink. Delivery failures are logged and never
// reach the caller; the state change they describe is already committed.
type Fanout struct {
	sinks  []Sink
	logger zerolog.Logger
}

func NewFanout(logger zerolog.Logger, sinks ...Sink) Fanout {
	return Fanout{
		sinks:  sinks,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

func (f Fanout) Publish(ctx context.Context, entries []campaign.LogEntry) {
	if len(entries) == 0 {
		return
	}
	for _, s := range f.sinks {
		if err := s.Send(ctx, entries); err != nil {
			f.logger.Warn().Err(err).Str("sink", s.Name()).Int("entries", len(entries)).Msg("notification dropped")
		}
	}
}
