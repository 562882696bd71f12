package repository

import (
	"context"

	"flightdata-etl/internal/domain/entity"
)

// AirportRepository persists airport reference records
type AirportRepository interface {
	UpsertBatch(ctx context.Context, airports []entity.Airport) (int64, error)
}
