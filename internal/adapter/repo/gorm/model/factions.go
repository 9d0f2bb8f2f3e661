package model

import "time"

const TableNameFaction = "factions"

type Faction struct {
	ID            string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;type:text;not null" json:"name"`
	Violence      int32     `gorm:"column:violence;type:integer;not null" json:"violence"`
	Nonlethal     int32     `gorm:"column:nonlethal;type:integer;not null" json:"nonlethal"`
	Intrigue      int32     `gorm:"column:intrigue;type:integer;not null" json:"intrigue"`
	Economy       int32     `gorm:"column:economy;type:integer;not null" json:"economy"`
	Softpower     int32     `gorm:"column:softpower;type:integer;not null" json:"softpower"`
	Diplomacy     int32     `gorm:"column:diplomacy;type:integer;not null" json:"diplomacy"`
	Logistics     int32     `gorm:"column:logistics;type:integer;not null" json:"logistics"`
	Culture       int32     `gorm:"column:culture;type:integer;not null" json:"culture"`
	Faith         int32     `gorm:"column:faith;type:integer;not null" json:"faith"`
	Pending       []byte    `gorm:"column:pending;type:jsonb" json:"pending"`
	LegacyPending []byte    `gorm:"column:legacy_pending;type:jsonb" json:"legacy_pending"`
	Morale        int32     `gorm:"column:morale;type:integer;not null" json:"morale"`
	Loyalty       int32     `gorm:"column:loyalty;type:integer;not null" json:"loyalty"`
	Darkness      int32     `gorm:"column:darkness;type:integer;not null" json:"darkness"`
	Vp            int32     `gorm:"column:vp;type:integer;not null" json:"vp"`
	Unity         int32     `gorm:"column:unity;type:integer;not null" json:"unity"`
	Tags          []byte    `gorm:"column:tags;type:jsonb;not null" json:"tags"`
	ThisTurn      []byte    `gorm:"column:this_turn;type:jsonb;not null" json:"this_turn"`
	Turn          int32     `gorm:"column:turn;type:integer;not null" json:"turn"`
	Archived      bool      `gorm:"column:archived;type:boolean;not null" json:"archived"`
	Log           []byte    `gorm:"column:log;type:jsonb;not null" json:"log"`
	Version       int64     `gorm:"column:version;type:bigint;not null" json:"version"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamp with time zone;not null" json:"updated_at"`
}

func (*Faction) TableName() string {
	return TableNameFaction
}
