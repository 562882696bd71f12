package repository

import (
	"context"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// UpsertBatch inserts or overwrites each airline on the API id, all in
// one transaction.
func (r *GormAirlineRepository) UpsertBatch(ctx context.Context, airlines []entity.Airline) (int64, error) {
	if len(airlines) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range airlines {
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(&airlines[i])
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int64(len(airlines)), nil
}
