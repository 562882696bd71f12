package entity

import "time"

// IngestCheckpoint is the database-backed variant of the resume cursor:
// a single named row holding the last fully ingested flight date.
type IngestCheckpoint struct {
	Name      string    `gorm:"primaryKey;size:50"`
	LastDate  time.Time `gorm:"type:date;not null"`
	UpdatedAt time.Time ``
}

// TableName overrides the default table name
func (IngestCheckpoint) TableName() string {
	return "ingest_checkpoints"
}
