package model

import "time"

const TableNameTurnClock = "turn_clock"

type TurnClock struct {
	ClockKey  string    `gorm:"column:clock_key;type:text;primaryKey" json:"clock_key"`
	Turn      int32     `gorm:"column:turn;type:integer;not null" json:"turn"`
	Target    int32     `gorm:"column:target;type:integer;not null" json:"target"`
	Version   int64     `gorm:"column:version;type:bigint;not null" json:"version"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp with time zone;not null" json:"updated_at"`
}

func (*TurnClock) TableName() string {
	return TableNameTurnClock
}
