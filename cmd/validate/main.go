package main

import (
	"context"
	"fmt"

	"flightdata-etl/internal/infrastructure/config"
	"flightdata-etl/internal/infrastructure/persistence"
	"flightdata-etl/pkg/logger"

	"gorm.io/gorm"
)

// expectation is one data-quality check against the stored tables.
type expectation struct {
	name string
	run  func(db *gorm.DB) (bool, string)
}

func main() {
	log := logger.NewLogger("")
	log.Info("Starting data-quality validation")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	ctx := context.Background()
	db, err := persistence.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	defer persistence.Close(db)

	expectations := []expectation{
		nonEmpty("flights"),
		nonEmpty("airlines"),
		nonEmpty("airports"),
		nonEmpty("routes"),
		noRows("flights.flight_date is never null",
			"SELECT COUNT(*) FROM flights WHERE flight_date IS NULL"),
		noRows("flights.departure_iata is never blank",
			"SELECT COUNT(*) FROM flights WHERE departure_iata IS NULL OR departure_iata = ''"),
		noRows("flights.arrival_iata is never blank",
			"SELECT COUNT(*) FROM flights WHERE arrival_iata IS NULL OR arrival_iata = ''"),
		noRows("flights natural key has no duplicates",
			`SELECT COUNT(*) FROM (
				SELECT 1 FROM flights
				GROUP BY flight_date, flight_iata, departure_iata, arrival_iata, departure_scheduled
				HAVING COUNT(*) > 1
			) d`),
		noRows("flights.flight_date is within the retention horizon",
			"SELECT COUNT(*) FROM flights WHERE flight_date < NOW() - INTERVAL '120 days'"),
		noRows("airlines.id is never blank",
			"SELECT COUNT(*) FROM airlines WHERE id IS NULL OR id = ''"),
		noRows("airports.iata_code is never blank",
			"SELECT COUNT(*) FROM airports WHERE iata_code IS NULL OR iata_code = ''"),
		noRows("routes.flight_number is never blank",
			"SELECT COUNT(*) FROM routes WHERE flight_number IS NULL OR flight_number = ''"),
		noRows("routes natural key has no duplicates",
			`SELECT COUNT(*) FROM (
				SELECT 1 FROM routes
				GROUP BY airline_iata, flight_number, departure_iata, arrival_iata
				HAVING COUNT(*) > 1
			) d`),
		noRows("routes.pulled_at is always set",
			"SELECT COUNT(*) FROM routes WHERE pulled_at IS NULL"),
		noRows("every row keeps its verbatim payload",
			`SELECT (SELECT COUNT(*) FROM flights WHERE raw_payload IS NULL)
			      + (SELECT COUNT(*) FROM airlines WHERE raw_payload IS NULL)
			      + (SELECT COUNT(*) FROM airports WHERE raw_payload IS NULL)
			      + (SELECT COUNT(*) FROM routes WHERE raw_payload IS NULL)`),
	}

	failed := 0
	for _, exp := range expectations {
		ok, detail := exp.run(db.WithContext(ctx))
		if ok {
			log.Info("PASS", "expectation", exp.name)
		} else {
			failed++
			log.Error("FAIL", "expectation", exp.name, "detail", detail)
		}
	}

	if failed > 0 {
		log.Fatal("Validation failed", "failed", failed, "total", len(expectations))
	}
	log.Info("All expectations passed", "total", len(expectations))
}

func nonEmpty(table string) expectation {
	return expectation{
		name: table + " is not empty",
		run: func(db *gorm.DB) (bool, string) {
			var count int64
			if err := db.Raw("SELECT COUNT(*) FROM " + table).Scan(&count).Error; err != nil {
				return false, err.Error()
			}
			return count > 0, fmt.Sprintf("%d rows", count)
		},
	}
}

func noRows(name, query string) expectation {
	return expectation{
		name: name,
		run: func(db *gorm.DB) (bool, string) {
			var count int64
			if err := db.Raw(query).Scan(&count).Error; err != nil {
				return false, err.Error()
			}
			return count == 0, fmt.Sprintf("%d offending rows", count)
		},
	}
}
