package repository

import (
	"context"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// routeConflictColumns is the natural key the upsert resolves on.
var routeConflictColumns = []clause.Column{
	{Name: "airline_iata"},
	{Name: "flight_number"},
	{Name: "departure_iata"},
	{Name: "arrival_iata"},
}

// GormRouteRepository implements the RouteRepository interface
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GORM route repository
func NewGormRouteRepository(db *gorm.DB) repository.RouteRepository {
	return &GormRouteRepository{
		db: db,
	}
}

// UpsertBatch inserts or overwrites each route on its natural key, all
// in one transaction.
func (r *GormRouteRepository) UpsertBatch(ctx context.Context, routes []entity.Route) (int64, error) {
	if len(routes) == 0 {
		return 0, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range routes {
			result := tx.Clauses(clause.OnConflict{
				Columns:   routeConflictColumns,
				UpdateAll: true,
			}).Create(&routes[i])
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int64(len(routes)), nil
}
