package model

import "time"

const TableNameActivityExecution = "activity_executions"

type ActivityExecution struct {
	FactionID      string    `gorm:"column:faction_id;type:text;primaryKey" json:"faction_id"`
	IdempotencyKey string    `gorm:"column:idempotency_key;type:text;primaryKey" json:"idempotency_key"`
	ActivityKey    string    `gorm:"column:activity_key;type:text;not null" json:"activity_key"`
	Response       []byte    `gorm:"column:response;type:jsonb;not null" json:"response"`
	AppliedAt      time.Time `gorm:"column:applied_at;type:timestamp with time zone;not null" json:"applied_at"`
}

func (*ActivityExecution) TableName() string {
	return TableNameActivityExecution
}
