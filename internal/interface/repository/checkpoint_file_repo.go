package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"flightdata-etl/internal/domain/repository"
	"flightdata-etl/pkg/utils"
)

// FileCheckpointRepository stores the resume cursor as a single
// YYYY-MM-DD line in a local file, surviving process restarts. A
// missing file means no prior run.
type FileCheckpointRepository struct {
	path string
}

// NewFileCheckpointRepository creates a file-backed checkpoint store
func NewFileCheckpointRepository(path string) repository.CheckpointRepository {
	return &FileCheckpointRepository{
		path: path,
	}
}

// Load reads the stored date; found is false when the file is absent.
func (r *FileCheckpointRepository) Load(ctx context.Context) (time.Time, bool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("reading checkpoint %s: %w", r.path, err)
	}

	raw := strings.TrimSpace(string(data))
	date, err := time.Parse(utils.DateFormat, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing checkpoint %q: %w", raw, err)
	}
	return date, true, nil
}

// Save overwrites the cursor; last writer wins.
func (r *FileCheckpointRepository) Save(ctx context.Context, date time.Time) error {
	if err := os.WriteFile(r.path, []byte(date.Format(utils.DateFormat)), 0o644); err != nil {
		return fmt.Errorf("writing checkpoint %s: %w", r.path, err)
	}
	return nil
}
