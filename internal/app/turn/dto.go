package turn

import (
	"strings"

	"dominion/internal/domain/campaign"
)

type Scope string

const (
	ScopeFaction Scope = "faction"
	ScopeGlobal  Scope = "global"
)

type Request struct {
	Scope     Scope  `json:"scope"`
	FactionID string `json:"faction_id,omitempty"`
	// TargetTurn overrides the derived target; zero derives it.
	TargetTurn int `json:"target_turn,omitempty"`
}

// Normalize resolves an empty scope: faction scope when a faction id is
// given, global scope otherwise. Authorization must check the result.
func (r Request) Normalize() Request {
	r.FactionID = strings.TrimSpace(r.FactionID)
	if r.Scope == "" {
		if r.FactionID != "" {
			r.Scope = ScopeFaction
		} else {
			r.Scope = ScopeGlobal
		}
	}
	return r
}

type Failure struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type Summary struct {
	Scope   Scope               `json:"scope"`
	Turn    int                 `json:"turn"`
	Changed int                 `json:"changed"`
	Skipped int                 `json:"skipped"`
	Failed  []Failure           `json:"failed"`
	Entries []campaign.LogEntry `json:"entries,omitempty"`
}
