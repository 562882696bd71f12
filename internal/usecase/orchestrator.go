package usecase

import (
	"context"
	"net/url"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"
	"flightdata-etl/internal/interface/aviationstack"
	"flightdata-etl/pkg/logger"
	"flightdata-etl/pkg/metrics"
	"flightdata-etl/pkg/utils"
)

// Fetcher is the paginated-fetch contract the orchestrator depends on.
// A zero date means the endpoint is not date-filtered. Implementations
// return accumulated records together with a terminal page error, if
// any; partial results are usable.
type Fetcher interface {
	FetchAll(ctx context.Context, endpoint string, date time.Time, extra url.Values) ([]entity.RawRecord, error)
}

// Orchestrator drives ingestion runs: it plans date windows, pulls
// reference data once per run, fetches flights per date, applies them
// through the ingestor and advances the checkpoint. A single date's
// failure is logged and never aborts the run; repeated runs converge
// through idempotent upserts and the resume cursor.
type Orchestrator struct {
	fetcher        Fetcher
	ingestor       *Ingestor
	checkpointRepo repository.CheckpointRepository
	logger         logger.Logger
	metrics        *metrics.Metrics
	dateDelay      time.Duration
	now            func() time.Time
}

// NewOrchestrator creates a new ingestion orchestrator
func NewOrchestrator(
	fetcher Fetcher,
	ingestor *Ingestor,
	checkpointRepo repository.CheckpointRepository,
	logger logger.Logger,
	metrics *metrics.Metrics,
	dateDelay time.Duration,
) *Orchestrator {
	return &Orchestrator{
		fetcher:        fetcher,
		ingestor:       ingestor,
		checkpointRepo: checkpointRepo,
		logger:         logger,
		metrics:        metrics,
		dateDelay:      dateDelay,
		now:            time.Now,
	}
}

// WithClock replaces the clock. Tests use this to pin "now".
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// RunDaily ingests yesterday's flights, the degenerate single-date
// pass meant for a daily schedule. The checkpoint is not touched.
func (o *Orchestrator) RunDaily(ctx context.Context) error {
	yesterday := o.now().AddDate(0, 0, -1)
	o.logger.Info("Collecting daily data", "date", yesterday.Format(utils.DateFormat))

	exists, err := o.ingestor.FlightsExistForDate(ctx, yesterday)
	if err != nil {
		return err
	}
	if exists {
		o.logger.Info("Already have data for date, skipping",
			"date", yesterday.Format(utils.DateFormat))
		return nil
	}

	records, err := o.fetcher.FetchAll(ctx, aviationstack.EndpointFlights, yesterday, nil)
	if err != nil {
		o.logger.Error("Fetch ended with error, ingesting partial results",
			"date", yesterday.Format(utils.DateFormat),
			"records", len(records),
			"error", err)
	}
	if len(records) == 0 {
		o.logger.Warn("No data available", "date", yesterday.Format(utils.DateFormat))
		return nil
	}

	result, err := o.ingestor.IngestFlights(ctx, records)
	if err != nil {
		return err
	}
	o.logger.Info("Daily collection complete",
		"date", yesterday.Format(utils.DateFormat),
		"applied", result.Applied,
		"skipped", result.Skipped)
	return nil
}

// RunHistorical ingests every date of the valid historical window,
// newest first, optionally preceded by a reference-data pass.
func (o *Orchestrator) RunHistorical(ctx context.Context, fetchReference bool) error {
	window := utils.ValidWindow(o.now())
	o.logger.Info("Processing historical data",
		"start", window.Start.Format(utils.DateFormat),
		"end", window.End.Format(utils.DateFormat))
	return o.runDatePass(ctx, window, fetchReference)
}

// RunDateRange ingests an explicit date range after clamping it into
// the valid window. A range that falls entirely outside the window is
// a logged no-op, not an error.
func (o *Orchestrator) RunDateRange(ctx context.Context, start, end time.Time, fetchReference bool) error {
	now := o.now()
	requested := utils.FetchWindow{Start: start, End: end}
	window := utils.ClampWindow(requested, now)

	if window.Start != requested.Start {
		o.logger.Warn("Start date adjusted to valid range start",
			"requested", requested.Start.Format(utils.DateFormat),
			"adjusted", window.Start.Format(utils.DateFormat))
	}
	if window.End != requested.End {
		o.logger.Warn("End date adjusted to valid range end",
			"requested", requested.End.Format(utils.DateFormat),
			"adjusted", window.End.Format(utils.DateFormat))
	}
	if !window.Valid() {
		o.logger.Error("Invalid date range after clamping, nothing to do",
			"start", window.Start.Format(utils.DateFormat),
			"end", window.End.Format(utils.DateFormat))
		return nil
	}

	o.logger.Info("Processing date range",
		"start", window.Start.Format(utils.DateFormat),
		"end", window.End.Format(utils.DateFormat))
	return o.runDatePass(ctx, window, fetchReference)
}

// Resume continues from the stored checkpoint, skipping reference
// data. Without a checkpoint it falls back to a full historical run.
func (o *Orchestrator) Resume(ctx context.Context) error {
	last, found, err := o.checkpointRepo.Load(ctx)
	if err != nil {
		return err
	}
	if !found {
		o.logger.Info("No checkpoint found, starting full historical run")
		return o.RunHistorical(ctx, true)
	}

	start := last.AddDate(0, 0, 1)
	o.logger.Info("Resuming from checkpoint",
		"checkpoint", last.Format(utils.DateFormat),
		"start", start.Format(utils.DateFormat))
	return o.RunDateRange(ctx, start, o.now(), false)
}

// RunReferenceOnly pulls only the reference entities (airlines,
// airports, routes), no flight dates.
func (o *Orchestrator) RunReferenceOnly(ctx context.Context) error {
	o.fetchReferenceData(ctx)
	return ctx.Err()
}

// fetchReferenceData pulls airlines, airports and routes in that
// order. A failure in one does not block the others.
func (o *Orchestrator) fetchReferenceData(ctx context.Context) {
	type referencePull struct {
		endpoint string
		ingest   func(context.Context, []entity.RawRecord) (IngestResult, error)
	}

	pulls := []referencePull{
		{aviationstack.EndpointAirlines, o.ingestor.IngestAirlines},
		{aviationstack.EndpointAirports, o.ingestor.IngestAirports},
		{aviationstack.EndpointRoutes, o.ingestor.IngestRoutes},
	}

	for _, pull := range pulls {
		if ctx.Err() != nil {
			return
		}

		o.logger.Info("Fetching reference data", "endpoint", pull.endpoint)
		records, err := o.fetcher.FetchAll(ctx, pull.endpoint, time.Time{}, nil)
		if err != nil {
			o.metrics.ErrorsCount.WithLabelValues("fetch_" + pull.endpoint).Inc()
			o.logger.Error("Fetch ended with error, ingesting partial results",
				"endpoint", pull.endpoint,
				"records", len(records),
				"error", err)
		}
		if len(records) == 0 {
			o.logger.Warn("No reference data fetched", "endpoint", pull.endpoint)
			continue
		}

		if _, err := pull.ingest(ctx, records); err != nil {
			o.logger.Error("Error ingesting reference data",
				"endpoint", pull.endpoint, "error", err)
		}
	}
}

// runDatePass walks the window newest-first, one date at a time. Each
// date is isolated: its failure is logged and the loop moves on.
func (o *Orchestrator) runDatePass(ctx context.Context, window utils.FetchWindow, fetchReference bool) error {
	if fetchReference {
		o.fetchReferenceData(ctx)
	}

	dates := utils.DateSequence(window, true)
	for i, date := range dates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o.processDate(ctx, date)

		// Respect API rate limits between dates.
		if i < len(dates)-1 && o.dateDelay > 0 {
			timer := time.NewTimer(o.dateDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	o.logger.Info("Date pass completed",
		"start", window.Start.Format(utils.DateFormat),
		"end", window.End.Format(utils.DateFormat),
		"dates", len(dates))
	return nil
}

// processDate ingests one flight date and advances the checkpoint on
// success. Errors are logged, never propagated: the outer loop decides
// nothing beyond moving to the next date, and resumability plus
// idempotent upserts make a retried run converge.
func (o *Orchestrator) processDate(ctx context.Context, date time.Time) {
	dateStr := date.Format(utils.DateFormat)

	exists, err := o.ingestor.FlightsExistForDate(ctx, date)
	if err != nil {
		o.metrics.ErrorsCount.WithLabelValues("exists_check").Inc()
		o.logger.Error("Error checking for existing data", "date", dateStr, "error", err)
		return
	}
	if exists {
		o.metrics.DatesSkipped.Inc()
		o.logger.Info("Already have data for date, skipping", "date", dateStr)
		return
	}

	o.logger.Info("Processing flights", "date", dateStr)
	records, fetchErr := o.fetcher.FetchAll(ctx, aviationstack.EndpointFlights, date, nil)
	if fetchErr != nil {
		o.logger.Error("Fetch ended with error, ingesting partial results",
			"date", dateStr,
			"records", len(records),
			"error", fetchErr)
	}

	if len(records) == 0 {
		o.logger.Warn("No data available", "date", dateStr)
	} else {
		result, err := o.ingestor.IngestFlights(ctx, records)
		if err != nil {
			o.logger.Error("Error processing flights for date", "date", dateStr, "error", err)
			return
		}
		o.logger.Info("Processed records for date",
			"date", dateStr,
			"applied", result.Applied,
			"skipped", result.Skipped)
	}

	if err := o.checkpointRepo.Save(ctx, date); err != nil {
		o.metrics.ErrorsCount.WithLabelValues("checkpoint_save").Inc()
		o.logger.Error("Error saving checkpoint", "date", dateStr, "error", err)
		return
	}
	o.metrics.DatesProcessed.Inc()
}
