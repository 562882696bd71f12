package aviationstack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/infrastructure/config"
	"flightdata-etl/pkg/logger"
	"flightdata-etl/pkg/metrics"
)

// Pagination is the paging block of a successful API response.
type Pagination struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
}

// APIResponse is one successfully fetched page.
type APIResponse struct {
	Data       []entity.RawRecord
	Pagination Pagination
}

// envelope is the raw wire shape; Error is kept untyped because the
// API varies its error object and classification works on its text.
type envelope struct {
	Data       []json.RawMessage `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Error      json.RawMessage   `json:"error"`
}

// Client holds the shared HTTP client and config for all API calls.
// All calls are synchronous; the only waiting is explicit bounded
// sleeping for backoff and inter-page pacing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	maxRetries int
	retryDelay time.Duration
	pageDelay  time.Duration
	logger     logger.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewClient creates an API client from config.
func NewClient(cfg *config.Config, log logger.Logger, m *metrics.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		accessKey:  cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		pageDelay:  cfg.PageDelay,
		logger:     log,
		metrics:    m,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for valid-window checks. Tests use
// this to pin "now".
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Call performs one page request with retry. Transport failures and
// rate limits are retried with exponential backoff up to the attempt
// ceiling; date-range and other API errors are returned classified
// without retry.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (*APIResponse, error) {
	if params.Get("access_key") == "" {
		params.Set("access_key", c.accessKey)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		env, err := c.get(ctx, endpoint, params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &APIError{Kind: ErrorKindTransport, Detail: err.Error()}
			c.logger.Error("Request failed",
				"endpoint", endpoint,
				"attempt", attempt+1,
				"max_retries", c.maxRetries,
				"error", err)
			if attempt < c.maxRetries-1 {
				wait := c.backoff(attempt)
				c.metrics.APIRetries.WithLabelValues(string(ErrorKindTransport)).Inc()
				c.logger.Info("Retrying", "wait", wait.String())
				if serr := sleepCtx(ctx, wait); serr != nil {
					return nil, serr
				}
			}
			continue
		}

		if env.Error != nil {
			errText := strings.ToLower(string(env.Error))
			c.logger.Error("API error", "endpoint", endpoint, "error", string(env.Error))

			if strings.Contains(errText, "rate limit") {
				lastErr = &APIError{Kind: ErrorKindRateLimited, Detail: string(env.Error)}
				wait := c.backoff(attempt)
				c.metrics.APIRetries.WithLabelValues(string(ErrorKindRateLimited)).Inc()
				c.logger.Info("Rate limited, waiting before retry", "wait", wait.String())
				if serr := sleepCtx(ctx, wait); serr != nil {
					return nil, serr
				}
				continue
			}

			if strings.Contains(errText, "date") || strings.Contains(errText, "historical") {
				return nil, &APIError{Kind: ErrorKindDateInvalid, Detail: string(env.Error)}
			}

			return nil, &APIError{Kind: ErrorKindOther, Detail: string(env.Error)}
		}

		records := make([]entity.RawRecord, len(env.Data))
		for i, raw := range env.Data {
			records[i] = entity.RawRecord(raw)
		}
		return &APIResponse{Data: records, Pagination: env.Pagination}, nil
	}

	if lastErr == nil {
		lastErr = &APIError{Kind: ErrorKindTransport, Detail: "max retries exceeded"}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*envelope, error) {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &env, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	return c.retryDelay * (1 << attempt)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
