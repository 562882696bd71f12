package repository

import (
	"context"
	"errors"
	"time"

	"flightdata-etl/internal/domain/entity"
	"flightdata-etl/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// checkpointRowName identifies the single cursor row this ingester owns.
const checkpointRowName = "flights_ingest"

// GormCheckpointRepository stores the resume cursor as one named row in
// the ingest_checkpoints table, for deployments where the working
// directory is not durable.
type GormCheckpointRepository struct {
	db *gorm.DB
}

// NewGormCheckpointRepository creates a database-backed checkpoint store
func NewGormCheckpointRepository(db *gorm.DB) repository.CheckpointRepository {
	return &GormCheckpointRepository{
		db: db,
	}
}

// Load reads the stored date; found is false when the row is absent.
func (r *GormCheckpointRepository) Load(ctx context.Context) (time.Time, bool, error) {
	var checkpoint entity.IngestCheckpoint
	result := r.db.WithContext(ctx).
		Where("name = ?", checkpointRowName).
		First(&checkpoint)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, result.Error
	}
	return checkpoint.LastDate, true, nil
}

// Save overwrites the cursor row; last writer wins.
func (r *GormCheckpointRepository) Save(ctx context.Context, date time.Time) error {
	checkpoint := entity.IngestCheckpoint{
		Name:     checkpointRowName,
		LastDate: date,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&checkpoint).Error
}
