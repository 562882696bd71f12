package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"flightdata-etl/internal/infrastructure/config"
	"flightdata-etl/internal/infrastructure/persistence"
	"flightdata-etl/internal/interface/aviationstack"
	gormRepo "flightdata-etl/internal/interface/repository"
	"flightdata-etl/internal/usecase"
	"flightdata-etl/pkg/logger"
	"flightdata-etl/pkg/metrics"
	"flightdata-etl/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	daily := flag.Bool("daily", false, "Collect data for yesterday")
	historical := flag.Bool("historical", false, "Collect all available historical data (last 3 months)")
	resume := flag.Bool("resume", false, "Resume from last checkpoint")
	referenceOnly := flag.Bool("reference-only", false, "Fetch only reference data (airlines, airports, routes)")
	rangeStart := flag.String("start", "", "Range start date (YYYY-MM-DD), requires -end")
	rangeEnd := flag.String("end", "", "Range end date (YYYY-MM-DD), requires -start")
	skipReference := flag.Bool("skip-reference", false, "Skip fetching reference data")
	flag.Parse()

	// Load configuration first so the log file location is known.
	cfg, cfgErr := config.LoadConfig()

	logFile := ""
	if cfg != nil {
		logFile = cfg.LogFile
	}
	log := logger.NewLogger(logFile)
	log.Info("Starting flight data ingestion")

	if cfgErr != nil {
		log.Fatal("Failed to load config", "error", cfgErr)
	}

	dateRange := *rangeStart != "" || *rangeEnd != ""
	modes := 0
	for _, enabled := range []bool{*daily, *historical, *resume, *referenceOnly, dateRange} {
		if enabled {
			modes++
		}
	}
	if modes != 1 {
		log.Fatal("Exactly one of -daily, -historical, -resume, -reference-only or -start/-end is required")
	}

	var start, end time.Time
	if dateRange {
		var err error
		start, err = time.Parse(utils.DateFormat, *rangeStart)
		if err != nil {
			log.Fatal("Invalid -start date", "value", *rangeStart, "error", err)
		}
		end, err = time.Parse(utils.DateFormat, *rangeEnd)
		if err != nil {
			log.Fatal("Invalid -end date", "value", *rangeEnd, "error", err)
		}
	}

	ctx := context.Background()

	log.Info("Connecting to PostgreSQL")
	db, err := persistence.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up metrics and the optional metrics endpoint for long runs.
	m := metrics.NewMetrics("flightdata_etl", prometheus.DefaultRegisterer)
	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Healthy"))
		})
		go func() {
			log.Info("Starting metrics server", "port", cfg.MetricsPort)
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Set up repositories
	flightRepo := gormRepo.NewGormFlightRepository(db)
	airlineRepo := gormRepo.NewGormAirlineRepository(db)
	airportRepo := gormRepo.NewGormAirportRepository(db)
	routeRepo := gormRepo.NewGormRouteRepository(db)

	checkpointRepo := gormRepo.NewFileCheckpointRepository(cfg.CheckpointFile)
	if cfg.CheckpointBackend == config.CheckpointBackendPostgres {
		checkpointRepo = gormRepo.NewGormCheckpointRepository(db)
	}

	client := aviationstack.NewClient(cfg, log, m)
	ingestor := usecase.NewIngestor(flightRepo, airlineRepo, airportRepo, routeRepo, log, m)
	orchestrator := usecase.NewOrchestrator(client, ingestor, checkpointRepo, log, m, cfg.DateDelay)

	var runErr error
	switch {
	case *daily:
		runErr = orchestrator.RunDaily(ctx)
	case *historical:
		runErr = orchestrator.RunHistorical(ctx, !*skipReference)
	case *resume:
		runErr = orchestrator.Resume(ctx)
	case *referenceOnly:
		runErr = orchestrator.RunReferenceOnly(ctx)
	case dateRange:
		runErr = orchestrator.RunDateRange(ctx, start, end, !*skipReference)
	}

	if err := persistence.Close(db); err != nil {
		log.Error("Error closing database", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Fatal("Ingestion run failed", "error", runErr)
	}

	log.Info("Processing completed")
}
