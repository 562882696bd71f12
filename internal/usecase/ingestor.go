package usecase

import (
	"context"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"
	"flightdata-etl/pkg/logger"
	"flightdata-etl/pkg/metrics"
)

// IngestResult summarizes one batch: rows committed and records
// skipped for missing natural-key fields.
type IngestResult struct {
	Applied int64
	Skipped int
}

// Ingestor maps raw API records into entities and applies them through
// the repositories, one all-or-nothing batch per call. Records missing
// natural-key fields are skipped, counted and logged; they never abort
// the batch.
type Ingestor struct {
	flightRepo  repository.FlightRepository
	airlineRepo repository.AirlineRepository
	airportRepo repository.AirportRepository
	routeRepo   repository.RouteRepository
	logger      logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewIngestor creates a new ingestor
func NewIngestor(
	flightRepo repository.FlightRepository,
	airlineRepo repository.AirlineRepository,
	airportRepo repository.AirportRepository,
	routeRepo repository.RouteRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *Ingestor {
	return &Ingestor{
		flightRepo:  flightRepo,
		airlineRepo: airlineRepo,
		airportRepo: airportRepo,
		routeRepo:   routeRepo,
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for batch timestamps. Tests use
// this to pin "now".
func (in *Ingestor) WithClock(now func() time.Time) *Ingestor {
	in.now = now
	return in
}

// IngestFlights maps and upserts one batch of flight records.
func (in *Ingestor) IngestFlights(ctx context.Context, records []entity.RawRecord) (IngestResult, error) {
	var flights []entity.Flight
	skipped := 0

	for _, raw := range records {
		flight, err := MapFlight(raw)
		if err != nil {
			skipped++
			in.metrics.RecordsSkipped.WithLabelValues("flight").Inc()
			in.logger.Warn("Skipping flight record", "error", err)
			continue
		}
		flights = append(flights, *flight)
	}

	applied, err := in.flightRepo.UpsertBatch(ctx, flights)
	if err != nil {
		in.metrics.ErrorsCount.WithLabelValues("upsert_flights").Inc()
		in.logger.Error("Error committing flights batch", "error", err)
		return IngestResult{Skipped: skipped}, err
	}

	in.metrics.RecordsUpserted.WithLabelValues("flight").Add(float64(applied))
	in.logger.Info("Committed flight records", "applied", applied, "skipped", skipped)
	return IngestResult{Applied: applied, Skipped: skipped}, nil
}

// IngestAirlines maps and upserts one batch of airline records.
func (in *Ingestor) IngestAirlines(ctx context.Context, records []entity.RawRecord) (IngestResult, error) {
	var airlines []entity.Airline
	skipped := 0

	for _, raw := range records {
		airline, err := MapAirline(raw)
		if err != nil {
			skipped++
			in.metrics.RecordsSkipped.WithLabelValues("airline").Inc()
			in.logger.Warn("Skipping airline record", "error", err)
			continue
		}
		airlines = append(airlines, *airline)
	}

	applied, err := in.airlineRepo.UpsertBatch(ctx, airlines)
	if err != nil {
		in.metrics.ErrorsCount.WithLabelValues("upsert_airlines").Inc()
		in.logger.Error("Error committing airlines batch", "error", err)
		return IngestResult{Skipped: skipped}, err
	}

	in.metrics.RecordsUpserted.WithLabelValues("airline").Add(float64(applied))
	in.logger.Info("Committed airline records", "applied", applied, "skipped", skipped)
	return IngestResult{Applied: applied, Skipped: skipped}, nil
}

// IngestAirports maps and upserts one batch of airport records.
func (in *Ingestor) IngestAirports(ctx context.Context, records []entity.RawRecord) (IngestResult, error) {
	var airports []entity.Airport
	skipped := 0

	for _, raw := range records {
		airport, err := MapAirport(raw)
		if err != nil {
			skipped++
			in.metrics.RecordsSkipped.WithLabelValues("airport").Inc()
			in.logger.Warn("Skipping airport record", "error", err)
			continue
		}
		airports = append(airports, *airport)
	}

	applied, err := in.airportRepo.UpsertBatch(ctx, airports)
	if err != nil {
		in.metrics.ErrorsCount.WithLabelValues("upsert_airports").Inc()
		in.logger.Error("Error committing airports batch", "error", err)
		return IngestResult{Skipped: skipped}, err
	}

	in.metrics.RecordsUpserted.WithLabelValues("airport").Add(float64(applied))
	in.logger.Info("Committed airport records", "applied", applied, "skipped", skipped)
	return IngestResult{Applied: applied, Skipped: skipped}, nil
}

// IngestRoutes maps and upserts one batch of route records. One
// pulled-at timestamp is fixed for the entire batch, so every row of a
// pull carries the same value.
func (in *Ingestor) IngestRoutes(ctx context.Context, records []entity.RawRecord) (IngestResult, error) {
	pulledAt := in.now().UTC()

	var routes []entity.Route
	skipped := 0
	missingAirlineIata := 0

	for _, raw := range records {
		route, err := MapRoute(raw, pulledAt)
		if err != nil {
			skipped++
			in.metrics.RecordsSkipped.WithLabelValues("route").Inc()
			in.logger.Warn("Skipping route record", "error", err)
			continue
		}
		if route.AirlineIata == "" {
			missingAirlineIata++
			in.logger.Info("Route with missing airline IATA code",
				"airline", route.AirlineName,
				"airline_icao", route.AirlineIcao,
				"flight_number", route.FlightNumber,
				"departure", route.DepartureIata,
				"arrival", route.ArrivalIata)
		}
		routes = append(routes, *route)
	}

	applied, err := in.routeRepo.UpsertBatch(ctx, routes)
	if err != nil {
		in.metrics.ErrorsCount.WithLabelValues("upsert_routes").Inc()
		in.logger.Error("Error committing routes batch", "error", err)
		return IngestResult{Skipped: skipped}, err
	}

	in.metrics.RecordsUpserted.WithLabelValues("route").Add(float64(applied))
	in.logger.Info("Committed route records",
		"applied", applied,
		"skipped", skipped,
		"missing_airline_iata", missingAirlineIata)
	return IngestResult{Applied: applied, Skipped: skipped}, nil
}

// FlightsExistForDate reports whether the store already holds flights
// for the given date.
func (in *Ingestor) FlightsExistForDate(ctx context.Context, date time.Time) (bool, error) {
	return in.flightRepo.ExistsForDate(ctx, date)
}
