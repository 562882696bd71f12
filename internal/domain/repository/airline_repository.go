package repository

import (
	"context"

	"flightdata-etl/internal/domain/entity"
)

// AirlineRepository persists airline reference records
type AirlineRepository interface {
	UpsertBatch(ctx context.Context, airlines []entity.Airline) (int64, error)
}
