package campaign

import (
	"encoding/json"
	"fmt"
	"time"
)

type Category int

const (
	Violence Category = iota
	Nonlethal
	Intrigue
	Economy
	Softpower
	Diplomacy
	Logistics
	Culture
	Faith

	NumCategories = 9
)

var categoryNames = [NumCategories]string{
	"violence",
	"nonlethal",
	"intrigue",
	"economy",
	"softpower",
	"diplomacy",
	"logistics",
	"culture",
	"faith",
}

func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if name == s {
			return Category(i), true
		}
	}
	return 0, false
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown resource category %q", string(b))
	}
	*c = parsed
	return nil
}

// Ledger holds one non-negative balance per category.
type Ledger [NumCategories]int

// LedgerDelta is a signed change per category.
type LedgerDelta [NumCategories]int

func (l Ledger) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, NumCategories)
	for i, v := range l {
		out[categoryNames[i]] = v
	}
	return json.Marshal(out)
}

func (l *Ledger) UnmarshalJSON(b []byte) error {
	vals, err := decodeCategoryMap(b)
	if err != nil {
		return err
	}
	*l = Ledger(vals)
	return nil
}

func (d LedgerDelta) MarshalJSON() ([]byte, error) {
	out := map[string]int{}
	for i, v := range d {
		if v != 0 {
			out[categoryNames[i]] = v
		}
	}
	return json.Marshal(out)
}

func (d *LedgerDelta) UnmarshalJSON(b []byte) error {
	vals, err := decodeCategoryMap(b)
	if err != nil {
		return err
	}
	*d = LedgerDelta(vals)
	return nil
}

func (d LedgerDelta) IsZero() bool {
	return d == LedgerDelta{}
}

// DeltaFromMap converts a category-name keyed map. Unknown names are an error.
func DeltaFromMap(m map[string]int) (LedgerDelta, error) {
	var d LedgerDelta
	for name, v := range m {
		c, ok := ParseCategory(name)
		if !ok {
			return LedgerDelta{}, fmt.Errorf("unknown resource category %q", name)
		}
		d[c] += v
	}
	return d, nil
}

func decodeCategoryMap(b []byte) ([NumCategories]int, error) {
	var out [NumCategories]int
	if string(b) == "null" {
		return out, nil
	}
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return out, err
	}
	d, err := DeltaFromMap(m)
	if err != nil {
		return out, err
	}
	return [NumCategories]int(d), nil
}

type Tracks struct {
	Morale   int `json:"morale"`
	Loyalty  int `json:"loyalty"`
	Darkness int `json:"darkness"`
}

type Victory struct {
	VP    uint `json:"vp"`
	Unity int  `json:"unity"`
}

type VictoryDelta struct {
	VP    int `json:"vp,omitempty"`
	Unity int `json:"unity,omitempty"`
}

type Mods struct {
	Defense      int `json:"defense,omitempty"`
	TradeYield   int `json:"tradeYield,omitempty"`
	Morale       int `json:"morale,omitempty"`
	EnemyLoyalty int `json:"enemyLoyalty,omitempty"`
	Radiation    int `json:"radiation,omitempty"`
}

func (m Mods) Add(o Mods) Mods {
	return Mods{
		Defense:      m.Defense + o.Defense,
		TradeYield:   m.TradeYield + o.TradeYield,
		Morale:       m.Morale + o.Morale,
		EnemyLoyalty: m.EnemyLoyalty + o.EnemyLoyalty,
		Radiation:    m.Radiation + o.Radiation,
	}
}

// TurnFlags are one-shot markers queued for the next turn and active for exactly one turn.
type TurnFlags struct {
	Mobilized bool `json:"mobilized,omitempty"`
	Blockaded bool `json:"blockaded,omitempty"`
	Festival  bool `json:"festival,omitempty"`
}

func (f TurnFlags) Or(o TurnFlags) TurnFlags {
	return TurnFlags{
		Mobilized: f.Mobilized || o.Mobilized,
		Blockaded: f.Blockaded || o.Blockaded,
		Festival:  f.Festival || o.Festival,
	}
}

func (f TurnFlags) Any() bool {
	return f.Mobilized || f.Blockaded || f.Festival
}

type TerritoryStatus string

const (
	StatusUnclaimed TerritoryStatus = "unclaimed"
	StatusOccupied  TerritoryStatus = "occupied"
	StatusScorched  TerritoryStatus = "scorched"
)

type Faction struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Ledger        Ledger          `json:"ledger"`
	Pending       *PendingEffects `json:"pending,omitempty"`
	LegacyPending json.RawMessage `json:"legacy_pending,omitempty"`
	Tracks        Tracks          `json:"tracks"`
	Victory       Victory         `json:"victory"`
	Tags          []string        `json:"tags"`
	ThisTurn      TurnFlags       `json:"this_turn"`
	Turn          int             `json:"turn"`
	Archived      bool            `json:"archived"`
	Log           []LogEntry      `json:"log"`
	Version       int64           `json:"version"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Territory struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id,omitempty"`
	Status         TerritoryStatus `json:"status"`
	Tags           []string        `json:"tags"`
	Mods           Mods            `json:"mods"`
	Integration    Integration     `json:"integration"`
	Wilderness     bool            `json:"wilderness"`
	PopulationTier int             `json:"population_tier"`
	SettlementSize string          `json:"settlement_size"`
	Pending        *PendingEffects `json:"pending,omitempty"`
	LegacyPending  json.RawMessage `json:"legacy_pending,omitempty"`
	ThisTurn       TurnFlags       `json:"this_turn"`
	Turn           int             `json:"turn"`
	Version        int64           `json:"version"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type LogType string

const (
	LogLedgerCommit   LogType = "ledger_commit"
	LogLedgerTransfer LogType = "ledger_transfer"
	LogActivity       LogType = "activity_queued"
	LogOutcome        LogType = "outcome_applied"
	LogTurnAdvanced   LogType = "turn_advanced"
	LogLegacyDropped  LogType = "legacy_pending_dropped"
)

type LogEntry struct {
	ID          string         `json:"id"`
	Type        LogType        `json:"type"`
	OccurredAt  time.Time      `json:"occurred_at"`
	FactionID   string         `json:"faction_id,omitempty"`
	TerritoryID string         `json:"territory_id,omitempty"`
	Message     string         `json:"message"`
	Payload     map[string]any `json:"payload,omitempty"`
}
