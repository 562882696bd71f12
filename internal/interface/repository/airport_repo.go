package repository

import (
	"context"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// UpsertBatch inserts or overwrites each airport on its IATA code, all
// in one transaction.
func (r *GormAirportRepository) UpsertBatch(ctx context.Context, airports []entity.Airport) (int64, error) {
	if len(airports) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range airports {
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "iata_code"}},
				UpdateAll: true,
			}).Create(&airports[i])
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int64(len(airports)), nil
}
