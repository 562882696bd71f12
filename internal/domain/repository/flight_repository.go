package repository

import (
	"context"
	"time"

	"flightdata-etl/internal/domain/entity"
)

// FlightRepository persists flight records
type FlightRepository interface {
	// UpsertBatch applies the whole batch in one transaction, inserting
	// or overwriting on the flight natural key. On commit failure the
	// batch rolls back and the applied count is zero.
	UpsertBatch(ctx context.Context, flights []entity.Flight) (int64, error)

	// ExistsForDate reports whether at least one flight row is stored
	// for the given flight date.
	ExistsForDate(ctx context.Context, date time.Time) (bool, error)
}
