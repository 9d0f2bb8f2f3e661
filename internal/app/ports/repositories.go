package ports

import (
	"context"
	"encoding/json"
	"time"

	"dominion/internal/domain/campaign"
)

type FactionRepository interface {
	GetByID(ctx context.Context, factionID string) (campaign.Faction, error)
	// List skips rows it cannot decode and reports them with a
	// *CorruptRecordsError next to the rows it returns.
	List(ctx context.Context) ([]campaign.Faction, error)
	// SaveWithVersion writes the record when the stored version equals
	// expectedVersion (0 creates). The stored version becomes faction.Version.
	SaveWithVersion(ctx context.Context, faction campaign.Faction, expectedVersion int64) error
}

type TerritoryRepository interface {
	GetByID(ctx context.Context, territoryID string) (campaign.Territory, error)
	// List and ListByOwner report undecodable rows like FactionRepository.List.
	List(ctx context.Context) ([]campaign.Territory, error)
	ListByOwner(ctx context.Context, factionID string) ([]campaign.Territory, error)
	SaveWithVersion(ctx context.Context, territory campaign.Territory, expectedVersion int64) error
}

type ActivityExecutionRecord struct {
	FactionID      string
	IdempotencyKey string
	ActivityKey    string
	Response       json.RawMessage
	AppliedAt      time.Time
}

type ActivityExecutionRepository interface {
	GetByIdempotencyKey(ctx context.Context, factionID, key string) (*ActivityExecutionRecord, error)
	SaveExecution(ctx context.Context, execution ActivityExecutionRecord) error
}

type TurnClock struct {
	Turn      int
	// Target is the turn of a global sweep that ended with failures. A retry
	// reuses it; zero means no sweep is open.
	Target    int
	Version   int64
	UpdatedAt time.Time
}

type TurnClockRepository interface {
	Get(ctx context.Context) (TurnClock, error)
	SaveWithVersion(ctx context.Context, clock TurnClock, expectedVersion int64) error
}
