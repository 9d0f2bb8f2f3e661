package gormrepo

import (
	"context"

	"dominion/internal/adapter/repo/gorm/model"
	"dominion/internal/app/ports"
	"dominion/internal/domain/campaign"

	"gorm.io/gorm"
)

type TerritoryRepo struct {
	db *gorm.DB
}

func NewTerritoryRepo(db *gorm.DB) TerritoryRepo {
	return TerritoryRepo{db: db}
}

func (r TerritoryRepo) GetByID(ctx context.Context, territoryID string) (campaign.Territory, error) {
	var m model.Territory
	if err := getDBFromCtx(ctx, r.db).Where("id = ?", territoryID).First(&m).Error; err != nil {
		return campaign.Territory{}, translate(err)
	}
	return territoryFromModel(m)
}

func (r TerritoryRepo) List(ctx context.Context) ([]campaign.Territory, error) {
	return r.find(getDBFromCtx(ctx, r.db))
}

func (r TerritoryRepo) ListByOwner(ctx context.Context, factionID string) ([]campaign.Territory, error) {
	return r.find(getDBFromCtx(ctx, r.db).Where("owner_id = ?", factionID))
}

func (r TerritoryRepo) find(q *gorm.DB) ([]campaign.Territory, error) {
	var rows []model.Territory
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeTerritories(rows)
}

func (r TerritoryRepo) SaveWithVersion(ctx context.Context, territory campaign.Territory, expectedVersion int64) error {
	m, err := territoryToModel(territory)
	if err != nil {
		return err
	}
	db := getDBFromCtx(ctx, r.db)
	if expectedVersion == 0 {
		return translate(db.Create(&m).Error)
	}

	res := db.Model(&model.Territory{}).
		Where("id = ? AND version = ?", territory.ID, expectedVersion).
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
