package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/interface/aviationstack"
	"flightdata-etl/pkg/logger"
	"flightdata-etl/pkg/metrics"
	"flightdata-etl/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// fakeFetcher serves canned records and logs every fetch as
// "endpoint" or "endpoint:YYYY-MM-DD".
type fakeFetcher struct {
	flights   map[string][]entity.RawRecord
	reference map[string][]entity.RawRecord
	fetchErr  map[string]error
	calls     []string
}

func (f *fakeFetcher) FetchAll(ctx context.Context, endpoint string, date time.Time, extra url.Values) ([]entity.RawRecord, error) {
	key := endpoint
	if !date.IsZero() {
		key += ":" + date.Format(utils.DateFormat)
	}
	f.calls = append(f.calls, key)
	var records []entity.RawRecord
	if endpoint == aviationstack.EndpointFlights {
		records = f.flights[date.Format(utils.DateFormat)]
	} else {
		records = f.reference[endpoint]
	}
	// Like the real client, an error still carries the prefix fetched
	// before it.
	return records, f.fetchErr[key]
}

type fakeFlightRepo struct {
	rows      map[string]entity.Flight
	failDates map[string]bool
}

func newFakeFlightRepo() *fakeFlightRepo {
	return &fakeFlightRepo{rows: map[string]entity.Flight{}, failDates: map[string]bool{}}
}

func flightKey(f entity.Flight) string {
	sched := ""
	if f.DepartureScheduled != nil {
		sched = f.DepartureScheduled.UTC().Format(time.RFC3339)
	}
	return strings.Join([]string{
		f.FlightDate.Format(utils.DateFormat), f.FlightIata, f.DepartureIata, f.ArrivalIata, sched,
	}, "|")
}

func (r *fakeFlightRepo) UpsertBatch(ctx context.Context, flights []entity.Flight) (int64, error) {
	for _, f := range flights {
		if r.failDates[f.FlightDate.Format(utils.DateFormat)] {
			return 0, errors.New("commit failed")
		}
	}
	for _, f := range flights {
		r.rows[flightKey(f)] = f
	}
	return int64(len(flights)), nil
}

func (r *fakeFlightRepo) ExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	want := date.Format(utils.DateFormat)
	for _, f := range r.rows {
		if f.FlightDate.Format(utils.DateFormat) == want {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFlightRepo) seed(dateStr string) {
	d, _ := time.Parse(utils.DateFormat, dateStr)
	f := entity.Flight{FlightDate: d, FlightIata: "SEED", DepartureIata: "AAA", ArrivalIata: "BBB"}
	r.rows[flightKey(f)] = f
}

type fakeAirlineRepo struct {
	rows map[string]entity.Airline
	err  error
}

func (r *fakeAirlineRepo) UpsertBatch(ctx context.Context, airlines []entity.Airline) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	for _, a := range airlines {
		r.rows[a.ID] = a
	}
	return int64(len(airlines)), nil
}

type fakeAirportRepo struct {
	rows map[string]entity.Airport
}

func (r *fakeAirportRepo) UpsertBatch(ctx context.Context, airports []entity.Airport) (int64, error) {
	for _, a := range airports {
		r.rows[a.IataCode] = a
	}
	return int64(len(airports)), nil
}

type fakeRouteRepo struct {
	rows []entity.Route
}

func (r *fakeRouteRepo) UpsertBatch(ctx context.Context, routes []entity.Route) (int64, error) {
	r.rows = append(r.rows, routes...)
	return int64(len(routes)), nil
}

type fakeCheckpointRepo struct {
	date  time.Time
	found bool
	saves []string
}

func (r *fakeCheckpointRepo) Load(ctx context.Context) (time.Time, bool, error) {
	return r.date, r.found, nil
}

func (r *fakeCheckpointRepo) Save(ctx context.Context, date time.Time) error {
	r.date = date
	r.found = true
	r.saves = append(r.saves, date.Format(utils.DateFormat))
	return nil
}

type harness struct {
	fetcher      *fakeFetcher
	flightRepo   *fakeFlightRepo
	airlineRepo  *fakeAirlineRepo
	airportRepo  *fakeAirportRepo
	routeRepo    *fakeRouteRepo
	checkpoint   *fakeCheckpointRepo
	orchestrator *Orchestrator
}

func newHarness(fetcher *fakeFetcher) *harness {
	h := &harness{
		fetcher:     fetcher,
		flightRepo:  newFakeFlightRepo(),
		airlineRepo: &fakeAirlineRepo{rows: map[string]entity.Airline{}},
		airportRepo: &fakeAirportRepo{rows: map[string]entity.Airport{}},
		routeRepo:   &fakeRouteRepo{},
		checkpoint:  &fakeCheckpointRepo{},
	}
	log := logger.NewNopLogger()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	ingestor := NewIngestor(h.flightRepo, h.airlineRepo, h.airportRepo, h.routeRepo, log, m).WithClock(testClock)
	h.orchestrator = NewOrchestrator(fetcher, ingestor, h.checkpoint, log, m, 0).WithClock(testClock)
	return h
}

func rawFlight(date, dep, arr, iata string) entity.RawRecord {
	return entity.RawRecord(fmt.Sprintf(
		`{"flight_date":%q,"departure":{"iata":%q},"arrival":{"iata":%q},"flight":{"iata":%q}}`,
		date, dep, arr, iata))
}

func dateOf(s string) time.Time {
	d, err := time.Parse(utils.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRunDateRange_IngestsNewestFirstAndAdvancesCheckpoint(t *testing.T) {
	fetcher := &fakeFetcher{flights: map[string][]entity.RawRecord{
		"2025-05-03": {rawFlight("2025-05-03", "JFK", "LHR", "BA1508")},
		"2025-05-04": {rawFlight("2025-05-04", "JFK", "LHR", "BA1508")},
		"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
	}}
	h := newHarness(fetcher)

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2025-05-03"), dateOf("2025-05-05"), false)

	require.NoError(t, err)
	assert.Equal(t, []string{"flights:2025-05-05", "flights:2025-05-04", "flights:2025-05-03"}, fetcher.calls)
	assert.Len(t, h.flightRepo.rows, 3)
	assert.Equal(t, []string{"2025-05-05", "2025-05-04", "2025-05-03"}, h.checkpoint.saves)
}

func TestRunDateRange_SkipsDatesAlreadyPresent(t *testing.T) {
	fetcher := &fakeFetcher{flights: map[string][]entity.RawRecord{
		"2025-05-03": {rawFlight("2025-05-03", "JFK", "LHR", "BA1508")},
		"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
	}}
	h := newHarness(fetcher)
	h.flightRepo.seed("2025-05-04")

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2025-05-03"), dateOf("2025-05-05"), false)

	require.NoError(t, err)
	assert.NotContains(t, fetcher.calls, "flights:2025-05-04")
	assert.NotContains(t, h.checkpoint.saves, "2025-05-04")
}

func TestRunDateRange_CommitFailureDoesNotAbortRun(t *testing.T) {
	fetcher := &fakeFetcher{flights: map[string][]entity.RawRecord{
		"2025-05-03": {rawFlight("2025-05-03", "JFK", "LHR", "BA1508")},
		"2025-05-04": {rawFlight("2025-05-04", "JFK", "LHR", "BA1508")},
		"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
	}}
	h := newHarness(fetcher)
	h.flightRepo.failDates["2025-05-04"] = true

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2025-05-03"), dateOf("2025-05-05"), false)

	require.NoError(t, err)
	assert.Len(t, h.flightRepo.rows, 2)
	// The failed date neither advances the checkpoint nor stops the
	// older date behind it.
	assert.Equal(t, []string{"2025-05-05", "2025-05-03"}, h.checkpoint.saves)
}

func TestRunDateRange_NoDataDateLogsAndContinues(t *testing.T) {
	fetcher := &fakeFetcher{flights: map[string][]entity.RawRecord{
		"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
	}}
	h := newHarness(fetcher)

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2025-05-04"), dateOf("2025-05-05"), false)

	require.NoError(t, err)
	assert.Len(t, h.flightRepo.rows, 1)
	assert.Contains(t, fetcher.calls, "flights:2025-05-04")
}

func TestRunDateRange_EntirelyOutsideWindowIsNoOp(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := newHarness(fetcher)

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2024-01-01"), dateOf("2024-02-01"), true)

	require.NoError(t, err)
	assert.Empty(t, fetcher.calls)
	assert.Empty(t, h.checkpoint.saves)
}

func TestRunDateRange_ReferencePassPrecedesDates(t *testing.T) {
	fetcher := &fakeFetcher{
		flights: map[string][]entity.RawRecord{
			"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
		},
		reference: map[string][]entity.RawRecord{
			"airlines": {entity.RawRecord(`{"id":"17","iata_code":"AA"}`)},
			"airports": {entity.RawRecord(`{"iata_code":"JFK"}`)},
			"routes":   {entity.RawRecord(`{"airline":{"iata":"AA"},"flight":{"number":"100"},"departure":{"iata":"JFK"},"arrival":{"iata":"LAX"}}`)},
		},
	}
	h := newHarness(fetcher)

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2025-05-05"), dateOf("2025-05-05"), true)

	require.NoError(t, err)
	assert.Equal(t, []string{"airlines", "airports", "routes", "flights:2025-05-05"}, fetcher.calls)
	assert.Len(t, h.airlineRepo.rows, 1)
	assert.Len(t, h.airportRepo.rows, 1)
	assert.Len(t, h.routeRepo.rows, 1)
}

func TestReferencePass_FailureDoesNotBlockOthers(t *testing.T) {
	fetcher := &fakeFetcher{
		reference: map[string][]entity.RawRecord{
			"airlines": {entity.RawRecord(`{"id":"17"}`)},
			"airports": {entity.RawRecord(`{"iata_code":"JFK"}`)},
			"routes":   {entity.RawRecord(`{"flight":{"number":"100"},"departure":{"iata":"JFK"},"arrival":{"iata":"LAX"}}`)},
		},
	}
	h := newHarness(fetcher)
	h.airlineRepo.err = errors.New("commit failed")

	err := h.orchestrator.RunReferenceOnly(context.Background())

	require.NoError(t, err)
	assert.Empty(t, h.airlineRepo.rows)
	assert.Len(t, h.airportRepo.rows, 1)
	assert.Len(t, h.routeRepo.rows, 1)
}

func TestResume_WithoutCheckpointFallsBackToHistorical(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := newHarness(fetcher)

	err := h.orchestrator.Resume(context.Background())

	require.NoError(t, err)
	// Reference pass plus one fetch per day of the 91-day window.
	assert.Equal(t, "airlines", fetcher.calls[0])
	assert.Equal(t, "airports", fetcher.calls[1])
	assert.Equal(t, "routes", fetcher.calls[2])
	assert.Len(t, fetcher.calls, 3+91)
	assert.Equal(t, "flights:2025-05-06", fetcher.calls[3])
	assert.Equal(t, "flights:2025-02-05", fetcher.calls[len(fetcher.calls)-1])
}

func TestResume_StartsDayAfterCheckpoint(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := newHarness(fetcher)
	h.checkpoint.date = dateOf("2025-05-03")
	h.checkpoint.found = true

	err := h.orchestrator.Resume(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"flights:2025-05-06", "flights:2025-05-05", "flights:2025-05-04"}, fetcher.calls)
}

func TestResume_ConvergesToSameStateAsSingleRun(t *testing.T) {
	flights := map[string][]entity.RawRecord{
		"2025-05-01": {rawFlight("2025-05-01", "JFK", "LHR", "BA1508")},
		"2025-05-02": {rawFlight("2025-05-02", "JFK", "LHR", "BA1508")},
		"2025-05-03": {rawFlight("2025-05-03", "JFK", "LHR", "BA1508")},
		"2025-05-04": {rawFlight("2025-05-04", "JFK", "LHR", "BA1508")},
		"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
	}

	single := newHarness(&fakeFetcher{flights: flights})
	require.NoError(t, single.orchestrator.RunDateRange(
		context.Background(), dateOf("2025-05-01"), dateOf("2025-05-05"), false))

	interrupted := newHarness(&fakeFetcher{flights: flights})
	require.NoError(t, interrupted.orchestrator.RunDateRange(
		context.Background(), dateOf("2025-05-01"), dateOf("2025-05-03"), false))
	require.NoError(t, interrupted.orchestrator.Resume(context.Background()))

	assert.Equal(t, single.flightRepo.rows, interrupted.flightRepo.rows)
}

func TestRunDaily_IngestsYesterdayOnly(t *testing.T) {
	fetcher := &fakeFetcher{flights: map[string][]entity.RawRecord{
		"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
	}}
	h := newHarness(fetcher)

	err := h.orchestrator.RunDaily(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"flights:2025-05-05"}, fetcher.calls)
	assert.Len(t, h.flightRepo.rows, 1)
	// Daily collection never touches the resume cursor.
	assert.Empty(t, h.checkpoint.saves)
}

func TestRunDaily_SkipsWhenDataExists(t *testing.T) {
	fetcher := &fakeFetcher{}
	h := newHarness(fetcher)
	h.flightRepo.seed("2025-05-05")

	err := h.orchestrator.RunDaily(context.Background())

	require.NoError(t, err)
	assert.Empty(t, fetcher.calls)
}

func TestRunDateRange_FetchErrorStillIngestsPartial(t *testing.T) {
	fetcher := &fakeFetcher{
		flights: map[string][]entity.RawRecord{
			"2025-05-05": {rawFlight("2025-05-05", "JFK", "LHR", "BA1508")},
		},
		fetchErr: map[string]error{"flights:2025-05-05": errors.New("transport: connection reset")},
	}
	h := newHarness(fetcher)

	err := h.orchestrator.RunDateRange(context.Background(), dateOf("2025-05-05"), dateOf("2025-05-05"), false)

	require.NoError(t, err)
	assert.Len(t, h.flightRepo.rows, 1)
	assert.Equal(t, []string{"2025-05-05"}, h.checkpoint.saves)
}
