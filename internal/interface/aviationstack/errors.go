package aviationstack

import "fmt"

// ErrorKind classifies an API failure for the caller.
type ErrorKind string

const (
	// ErrorKindTransport is a network or HTTP-level failure that
	// survived the retry budget.
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindRateLimited is an API-reported rate limit that survived
	// the retry budget.
	ErrorKindRateLimited ErrorKind = "rate_limited"
	// ErrorKindDateInvalid is an API-reported date or historical-range
	// error. The retention window is a known boundary, so callers treat
	// this as "no data" rather than a failure.
	ErrorKindDateInvalid ErrorKind = "date_invalid"
	// ErrorKindOther is any other API-reported error.
	ErrorKindOther ErrorKind = "other"
)

// APIError is a classified failure of one page call.
type APIError struct {
	Kind   ErrorKind
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aviationstack: %s: %s", e.Kind, e.Detail)
}

// KindOf extracts the classification of err, or ErrorKindTransport for
// plain errors.
func KindOf(err error) ErrorKind {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Kind
	}
	return ErrorKindTransport
}
