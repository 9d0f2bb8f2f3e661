package campaign

const (
	ActivityLogCap        = 50
	IntegrationHistoryCap = 20

	MinTrack      = 0
	MaxMorale     = 100
	MaxLoyalty    = 100
	MaxDarkness   = 10
	MaxUnity      = 100
	MaxProgress   = 6
	StartingTrack = 50

	// TradeYieldPerEconomy is how much territory trade yield converts into one economy per turn.
	TradeYieldPerEconomy = 5

	RadiationPerTurn = 1
)

const (
	TagFortified  = "Fortified"
	TagRadiated   = "Radiated"
	TagScorched   = "Scorched"
	TagReformed   = "Reformed"
	TagLiberated  = "Liberated"
	TagAllied     = "Allied"
	TagSubjugated = "Subjugated"
	TagUnrest     = "Unrest"
	TagLawless    = "Lawless"
	TagOccupied   = "Occupied"
	TagSabotaged  = "Sabotaged"
)
