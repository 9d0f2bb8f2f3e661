package gormrepo

import (
	"context"
	"errors"

	"dominion/internal/adapter/repo/gorm/model"
	"dominion/internal/app/ports"

	"gorm.io/gorm"
)

const globalClockKey = "global"

type TurnClockRepo struct {
	db *gorm.DB
}

func NewTurnClockRepo(db *gorm.DB) TurnClockRepo {
	return TurnClockRepo{db: db}
}

// Get returns the zero clock until the first global advance writes a row.
func (r TurnClockRepo) Get(ctx context.Context) (ports.TurnClock, error) {
	var row model.TurnClock
	err := getDBFromCtx(ctx, r.db).
		Where(&model.TurnClock{ClockKey: globalClockKey}).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.TurnClock{}, nil
		}
		return ports.TurnClock{}, err
	}
	return ports.TurnClock{Turn: int(row.Turn), Target: int(row.Target), Version: row.Version, UpdatedAt: row.UpdatedAt}, nil
}

func (r TurnClockRepo) SaveWithVersion(ctx context.Context, clock ports.TurnClock, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	m := model.TurnClock{
		ClockKey:  globalClockKey,
		Turn:      int32(clock.Turn),
		Target:    int32(clock.Target),
		Version:   clock.Version,
		UpdatedAt: clock.UpdatedAt,
	}
	if expectedVersion == 0 {
		return translate(db.Create(&m).Error)
	}
	res := db.Model(&model.TurnClock{}).
		Where("clock_key = ? AND version = ?", globalClockKey, expectedVersion).
		Updates(map[string]any{
			"turn":       m.Turn,
			"target":     m.Target,
			"version":    m.Version,
			"updated_at": m.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
