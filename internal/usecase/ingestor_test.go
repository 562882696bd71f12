package usecase

import (
	"context"
	"testing"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/pkg/logger"
	"flightdata-etl/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngestor(t *testing.T) (*Ingestor, *fakeFlightRepo, *fakeAirlineRepo, *fakeRouteRepo) {
	t.Helper()
	flightRepo := newFakeFlightRepo()
	airlineRepo := &fakeAirlineRepo{rows: map[string]entity.Airline{}}
	airportRepo := &fakeAirportRepo{rows: map[string]entity.Airport{}}
	routeRepo := &fakeRouteRepo{}
	ing := NewIngestor(flightRepo, airlineRepo, airportRepo, routeRepo,
		logger.NewNopLogger(), metrics.NewMetrics("test", prometheus.NewRegistry())).
		WithClock(testClock)
	return ing, flightRepo, airlineRepo, routeRepo
}

func TestIngestFlights_MissingKeySkippedWithoutAbort(t *testing.T) {
	ing, flightRepo, _, _ := newTestIngestor(t)
	records := []entity.RawRecord{
		rawFlight("2025-05-05", "JFK", "LHR", "BA1508"),
		entity.RawRecord(`{"flight_date":"2025-05-05","departure":{},"arrival":{"iata":"LHR"},"flight":{"iata":"XX123"}}`),
		rawFlight("2025-05-05", "AMS", "NBO", "KQ117"),
	}

	result, err := ing.IngestFlights(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Applied)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, flightRepo.rows, 2)
}

func TestIngestFlights_CommitFailureReturnsError(t *testing.T) {
	ing, flightRepo, _, _ := newTestIngestor(t)
	flightRepo.failDates["2025-05-05"] = true

	result, err := ing.IngestFlights(context.Background(), []entity.RawRecord{
		rawFlight("2025-05-05", "JFK", "LHR", "BA1508"),
	})

	require.Error(t, err)
	assert.Zero(t, result.Applied)
	assert.Empty(t, flightRepo.rows)
}

func TestIngestAirlines_SkipsRecordsWithoutID(t *testing.T) {
	ing, _, airlineRepo, _ := newTestIngestor(t)
	records := []entity.RawRecord{
		entity.RawRecord(`{"id":"17","iata_code":"AA","airline_name":"American Airlines"}`),
		entity.RawRecord(`{"iata_code":"ZZ","airline_name":"No ID Air"}`),
	}

	result, err := ing.IngestAirlines(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Applied)
	assert.Equal(t, 1, result.Skipped)
	assert.Contains(t, airlineRepo.rows, "17")
}

func TestIngestRoutes_SharesOnePulledAtPerBatch(t *testing.T) {
	ing, _, _, routeRepo := newTestIngestor(t)
	records := []entity.RawRecord{
		entity.RawRecord(`{"airline":{"iata":"KQ"},"flight":{"number":"117"},"departure":{"iata":"AMS"},"arrival":{"iata":"NBO"}}`),
		entity.RawRecord(`{"airline":{"iata":"BA"},"flight":{"number":"1508"},"departure":{"iata":"JFK"},"arrival":{"iata":"LHR"}}`),
	}

	result, err := ing.IngestRoutes(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Applied)
	require.Len(t, routeRepo.rows, 2)

	want := testNow.UTC()
	for _, route := range routeRepo.rows {
		assert.True(t, route.PulledAt.Equal(want))
	}
}
