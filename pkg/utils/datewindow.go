package utils

import "time"

// HistoricalWindowDays is how far back the AviationStack API serves
// flight data. Requests outside this window deterministically fail.
const HistoricalWindowDays = 90

// DateFormat is the wire format for flight dates and checkpoints.
const DateFormat = "2006-01-02"

// FetchWindow is an inclusive calendar date range.
type FetchWindow struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the window still describes at least one day.
func (w FetchWindow) Valid() bool {
	return !w.Start.After(w.End)
}

// ValidWindow returns the date range the API is willing to serve,
// [now-90d, now].
func ValidWindow(now time.Time) FetchWindow {
	return FetchWindow{
		Start: now.AddDate(0, 0, -HistoricalWindowDays),
		End:   now,
	}
}

// ClampWindow adjusts a requested window into the valid historical
// range. The result may be invalid (Start after End) when the request
// lies entirely outside the range; callers must treat that as a no-op.
func ClampWindow(requested FetchWindow, now time.Time) FetchWindow {
	valid := ValidWindow(now)
	clamped := requested
	if clamped.Start.Before(valid.Start) {
		clamped.Start = valid.Start
	}
	if clamped.End.After(valid.End) {
		clamped.End = valid.End
	}
	return clamped
}

// InValidWindow reports whether date falls inside the API's historical
// window. This is a local check, no network round trip.
func InValidWindow(date, now time.Time) bool {
	valid := ValidWindow(now)
	return !date.Before(valid.Start) && !date.After(valid.End)
}

// DateSequence returns every calendar day in the window inclusive,
// exactly once. With newestFirst the sequence is descending, so the
// freshest data is ingested before a rate or time budget runs out.
func DateSequence(window FetchWindow, newestFirst bool) []time.Time {
	if !window.Valid() {
		return nil
	}

	start := truncateToDay(window.Start)
	end := truncateToDay(window.End)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	if newestFirst {
		for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
			dates[i], dates[j] = dates[j], dates[i]
		}
	}

	return dates
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
