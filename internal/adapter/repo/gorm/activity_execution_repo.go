package gormrepo

import (
	"context"

	"dominion/internal/adapter/repo/gorm/model"
	"dominion/internal/app/ports"

	"gorm.io/gorm"
)

type ActivityExecutionRepo struct {
	db *gorm.DB
}

func NewActivityExecutionRepo(db *gorm.DB) ActivityExecutionRepo {
	return ActivityExecutionRepo{db: db}
}

func (r ActivityExecutionRepo) GetByIdempotencyKey(ctx context.Context, factionID, key string) (*ports.ActivityExecutionRecord, error) {
	var m model.ActivityExecution
	err := getDBFromCtx(ctx, r.db).
		Where(&model.ActivityExecution{FactionID: factionID, IdempotencyKey: key}).
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ports.ActivityExecutionRecord{
		FactionID:      m.FactionID,
		IdempotencyKey: m.IdempotencyKey,
		ActivityKey:    m.ActivityKey,
		Response:       append([]byte(nil), m.Response...),
		AppliedAt:      m.AppliedAt,
	}, nil
}

func (r ActivityExecutionRepo) SaveExecution(ctx context.Context, execution ports.ActivityExecutionRecord) error {
	m := model.ActivityExecution{
		FactionID:      execution.FactionID,
		IdempotencyKey: execution.IdempotencyKey,
		ActivityKey:    execution.ActivityKey,
		Response:       []byte(execution.Response),
		AppliedAt:      execution.AppliedAt,
	}
	return translate(getDBFromCtx(ctx, r.db).Create(&m).Error)
}
