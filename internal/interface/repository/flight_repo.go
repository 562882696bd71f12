package repository

import (
	"context"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"
	"flightdata-etl/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// flightConflictColumns is the natural key the upsert resolves on.
var flightConflictColumns = []clause.Column{
	{Name: "flight_date"},
	{Name: "flight_iata"},
	{Name: "departure_iata"},
	{Name: "arrival_iata"},
	{Name: "departure_scheduled"},
}

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// UpsertBatch inserts or overwrites each flight on its natural key.
// The whole batch is one transaction: a commit failure rolls back every
// staged row and reports zero applied.
func (r *GormFlightRepository) UpsertBatch(ctx context.Context, flights []entity.Flight) (int64, error) {
	if len(flights) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range flights {
			result := tx.Clauses(clause.OnConflict{
				Columns:   flightConflictColumns,
				UpdateAll: true,
			}).Create(&flights[i])
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int64(len(flights)), nil
}

// ExistsForDate reports whether any flight row is stored for date.
func (r *GormFlightRepository) ExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&entity.Flight{}).
		Where("flight_date = ?", date.Format(utils.DateFormat)).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
