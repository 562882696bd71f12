package repository

import (
	"context"

	"flightdata-etl/internal/domain/entity"
)

// RouteRepository persists route reference records
type RouteRepository interface {
	UpsertBatch(ctx context.Context, routes []entity.Route) (int64, error)
}
