package model

import "time"

const TableNameTerritory = "territories"

type Territory struct {
	ID             string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	OwnerID        *string   `gorm:"column:owner_id;type:text" json:"owner_id"`
	Status         string    `gorm:"column:status;type:text;not null" json:"status"`
	Tags           []byte    `gorm:"column:tags;type:jsonb;not null" json:"tags"`
	Mods           []byte    `gorm:"column:mods;type:jsonb;not null" json:"mods"`
	Progress       int32     `gorm:"column:progress;type:integer;not null" json:"progress"`
	History        []byte    `gorm:"column:history;type:jsonb;not null" json:"history"`
	Wilderness     bool      `gorm:"column:wilderness;type:boolean;not null" json:"wilderness"`
	PopulationTier int32     `gorm:"column:population_tier;type:integer;not null" json:"population_tier"`
	SettlementSize string    `gorm:"column:settlement_size;type:text;not null" json:"settlement_size"`
	Pending        []byte    `gorm:"column:pending;type:jsonb" json:"pending"`
	LegacyPending  []byte    `gorm:"column:legacy_pending;type:jsonb" json:"legacy_pending"`
	ThisTurn       []byte    `gorm:"column:this_turn;type:jsonb;not null" json:"this_turn"`
	Turn           int32     `gorm:"column:turn;type:integer;not null" json:"turn"`
	Version        int64     `gorm:"column:version;type:bigint;not null" json:"version"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamp with time zone;not null" json:"updated_at"`
}

func (*Territory) TableName() string {
	return TableNameTerritory
}
