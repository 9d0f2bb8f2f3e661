package gormrepo

import (
	"context"

	"dominion/internal/adapter/repo/gorm/model"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"gorm.io/gorm"
)

type FactionRepo struct {
	db *gorm.DB
}

func NewFactionRepo(db *gorm.DB) FactionRepo {
	return FactionRepo{db: db}
}

func (r FactionRepo) GetByID(ctx context.Context, factionID string) (campaign.Faction, error) {
	var m model.Faction
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", factionID).First(&m).Error; err != nil {
		return campaign.Faction{}, translate(err)
	}
	return factionFromModel(m)
}

func (r FactionRepo) List(ctx context.Context) ([]campaign.Faction, error) {
	var rows []model.Faction
	if err := getDBFromCtx(ctx, r.db).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeFactions(rows)
}

func (r FactionRepo) SaveWithVersion(ctx context.Context, faction campaign.Faction, expectedVersion int64) error {
	m, err := factionToModel(faction)
	if err != nil {
		return err
	}
	db := getDBFromCtx(ctx, r.db)
	if expectedVersion == 0 {
		return translate(db.Create(&m).Error)
	}

	res := db.Model(&model.Faction{}).
		Where("id = ? AND version = ?", faction.ID, expectedVersion).
		Select("*").Omit("id").
		Updates(&m)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
