package aviationstack

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/pkg/utils"
)

const (
	// EndpointFlights is the only date-partitioned endpoint.
	EndpointFlights  = "flights"
	EndpointAirlines = "airlines"
	EndpointAirports = "airports"
	EndpointRoutes   = "routes"

	flightsPageLimit = 100
	defaultPageLimit = 1000
)

// FetchAll walks every page of an endpoint, optionally filtered to one
// flight date (zero date means no filter), and returns the accumulated
// records. On a terminal page error the records fetched so far are
// returned together with the error: the result is always either the
// complete set or a strict prefix of it, never with a duplicated or
// skipped page.
//
// A flights request for a date outside the valid historical window
// returns empty without any network call.
func (c *Client) FetchAll(ctx context.Context, endpoint string, date time.Time, extra url.Values) ([]entity.RawRecord, error) {
	if endpoint == EndpointFlights && !date.IsZero() {
		if !utils.InValidWindow(date, c.now()) {
			c.logger.Warn("Date is outside the valid historical window, skipping fetch",
				"date", date.Format(utils.DateFormat),
				"window_days", utils.HistoricalWindowDays)
			return nil, nil
		}
	}

	limit := defaultPageLimit
	if endpoint == EndpointFlights {
		limit = flightsPageLimit
	}

	params := url.Values{}
	for key, values := range extra {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	params.Set("limit", strconv.Itoa(limit))
	if endpoint == EndpointFlights && !date.IsZero() {
		params.Set("flight_date", date.Format(utils.DateFormat))
	}

	started := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(started).Seconds())
	}()

	var all []entity.RawRecord
	offset := 0

	for {
		params.Set("offset", strconv.Itoa(offset))

		c.logger.Info("Fetching page",
			"endpoint", endpoint,
			"date", formatDate(date),
			"offset", offset,
			"limit", limit)

		resp, err := c.Call(ctx, endpoint, params)
		if err != nil {
			if KindOf(err) == ErrorKindDateInvalid {
				c.logger.Warn("Date-related error, likely outside valid range", "error", err)
				return all, nil
			}
			c.logger.Error("Error fetching data", "endpoint", endpoint, "error", err)
			return all, err
		}

		c.metrics.PagesFetched.Inc()
		count := len(resp.Data)
		c.logger.Info("Received records", "endpoint", endpoint, "count", count)

		all = append(all, resp.Data...)

		total := resp.Pagination.Total
		if count == 0 || offset+count >= total {
			c.logger.Info("Completed fetch",
				"endpoint", endpoint,
				"date", formatDate(date),
				"fetched", len(all),
				"total", total)
			return all, nil
		}

		offset += limit

		// Pause between pages to respect external rate limits.
		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return all, err
		}
	}
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(utils.DateFormat)
}
