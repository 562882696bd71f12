package repository

import (
	"context"
	"time"
)

// CheckpointRepository stores the resume cursor: the last calendar
// date whose ingestion is known to have committed. The storage medium
// (file, table row) is an implementation detail; last writer wins and
// a failed date never moves the cursor backward.
type CheckpointRepository interface {
	// Load returns the stored date. found is false when no prior run
	// left a cursor behind, which is not an error.
	Load(ctx context.Context) (date time.Time, found bool, err error)

	// Save overwrites the cursor with date.
	Save(ctx context.Context, date time.Time) error
}
